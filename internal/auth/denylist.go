package auth

import (
	"sync"
	"time"
)

// Denylist is an in-process set of revoked token IDs.
//
// A stateless JWT cannot be invalidated before its natural expiry, which
// means "logout" would be purely client-side. The denylist closes that gap
// for the single-server case: DELETE /sessions records the token's jti
// here, and Validate rejects anything on the list. Entries are kept only
// until the token would have expired anyway, so the map stays bounded by
// the number of logouts within one token lifetime.
type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti → token expiry
}

func NewDenylist() *Denylist {
	return &Denylist{entries: make(map[string]time.Time)}
}

// Add records a revoked token ID. Expired tokens are not stored — they
// already fail validation on their own.
func (d *Denylist) Add(jti string, expiresAt time.Time) {
	if jti == "" || !expiresAt.After(time.Now()) {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune()
	d.entries[jti] = expiresAt
}

// Contains reports whether the token ID has been revoked and is still
// inside its validity window.
func (d *Denylist) Contains(jti string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[jti]
	if !ok {
		return false
	}
	if !exp.After(time.Now()) {
		delete(d.entries, jti)
		return false
	}
	return true
}

// Len returns the number of live entries. Used by tests and metrics.
func (d *Denylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune()
	return len(d.entries)
}

// prune drops entries whose tokens have expired. Callers must hold mu.
func (d *Denylist) prune() {
	now := time.Now()
	for jti, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, jti)
		}
	}
}
