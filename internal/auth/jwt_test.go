package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// newTestTokenService creates a TokenService for testing.
// It uses a fixed, known secret so tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", 24*time.Hour)
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_NonPositiveTTL(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars", 0)
	if err == nil {
		t.Fatal("NewTokenService() should reject a zero TTL")
	}
}

// =========================================================================
// ISSUE TESTS
// =========================================================================

func TestIssue_ReturnsWellFormedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, expiresAt, err := ts.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Error("Issue() returned empty token")
	}

	// JWT tokens have 3 dot-separated parts: header.payload.signature
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("Issue() token has %d segments, want 3", len(parts))
	}

	// Expiry should land ~24h out
	want := time.Now().Add(24 * time.Hour)
	if diff := expiresAt.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("Issue() expiresAt = %v, want ~%v", expiresAt, want)
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	ts := newTestTokenService(t)

	// Same identity, two logins — the jti must differ so each session can
	// be revoked independently.
	token1, _, _ := ts.Issue("user-aaa")
	token2, _, _ := ts.Issue("user-aaa")

	if token1 == token2 {
		t.Error("Issue() returned identical tokens for two sessions")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	identityID := "user-abc-123"

	token, _, err := ts.Issue(identityID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != identityID {
		t.Errorf("Validate() identityID = %q, want %q", got, identityID)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _, err := ts.IssueWithDuration("user-123", -1*time.Second)
	if err != nil {
		t.Fatalf("IssueWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _, _ := ts.Issue("user-123")

	// Flip characters in the signature to simulate tampering
	tampered := token[:len(token)-3] + "xxx"

	_, err := ts.Validate(tampered)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("Validate() error = %v, want ErrTokenMalformed", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!", 24*time.Hour)
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", 24*time.Hour)

	token, _, _ := ts1.Issue("user-123")

	_, err := ts2.Validate(token)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("Validate() error = %v, want ErrTokenMalformed", err)
	}
}

func TestValidate_GarbageInput(t *testing.T) {
	ts := newTestTokenService(t)

	for _, input := range []string{"", "not.a.jwt", "a.b.c.d"} {
		if _, err := ts.Validate(input); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Validate(%q) error = %v, want ErrTokenMalformed", input, err)
		}
	}
}

// =========================================================================
// REVOCATION TESTS
// =========================================================================

func TestRevoke_TokenFailsBeforeNaturalExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	token, _, _ := ts.Issue("user-123")

	// Sanity: valid before revocation
	if _, err := ts.Validate(token); err != nil {
		t.Fatalf("Validate() before revoke error = %v", err)
	}

	ts.Revoke(token)

	_, err := ts.Validate(token)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("Validate() after revoke error = %v, want ErrTokenRevoked", err)
	}
}

func TestRevoke_OnlyAffectsThePresentedSession(t *testing.T) {
	ts := newTestTokenService(t)

	// Two sessions for the same identity; revoking one must not touch the
	// other.
	token1, _, _ := ts.Issue("user-123")
	token2, _, _ := ts.Issue("user-123")

	ts.Revoke(token1)

	if _, err := ts.Validate(token1); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Validate(token1) error = %v, want ErrTokenRevoked", err)
	}
	if _, err := ts.Validate(token2); err != nil {
		t.Errorf("Validate(token2) error = %v, want nil", err)
	}
}

func TestRevoke_IgnoresGarbage(t *testing.T) {
	ts := newTestTokenService(t)

	// Must not panic or grow the denylist
	ts.Revoke("")
	ts.Revoke("not.a.jwt")

	if n := ts.revoked.Len(); n != 0 {
		t.Errorf("denylist length = %d after revoking garbage, want 0", n)
	}
}

func TestDenylist_PrunesExpiredEntries(t *testing.T) {
	d := NewDenylist()

	d.Add("old", time.Now().Add(10*time.Millisecond))
	d.Add("live", time.Now().Add(time.Hour))

	if !d.Contains("old") {
		t.Fatal("Contains(old) = false before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if d.Contains("old") {
		t.Error("Contains(old) = true after expiry")
	}
	if n := d.Len(); n != 1 {
		t.Errorf("Len() = %d after prune, want 1", n)
	}
}
