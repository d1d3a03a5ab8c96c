package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the credential-endpoint rate limit settings.
// Signup and login are the only endpoints worth brute-forcing, so they get
// a per-IP token bucket; the data endpoints are already gated by a session.
type RateLimiterConfig struct {
	Rate  rate.Limit // refill rate in requests per second
	Burst int        // bucket size
	TTL   time.Duration // drop idle client entries after this long
}

// DefaultRateLimiterConfig allows 10 attempts per minute per IP with a
// burst of 10 — generous for a person, useless for a password sprayer.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:  rate.Limit(10.0 / 60.0),
		Burst: 10,
		TTL:   10 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps a token bucket per client IP.
type RateLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
	}
}

// Middleware rejects requests over the per-IP allowance with 429. The chi
// RealIP middleware runs earlier in the chain, so RemoteAddr holds the
// real client address even behind a proxy.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate_limited","message":"too many attempts, retry later"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cl, ok := rl.clients[ip]
	if !ok {
		// Opportunistic cleanup keeps the map bounded without a
		// background goroutine.
		for key, c := range rl.clients {
			if now.Sub(c.lastAccess) > rl.config.TTL {
				delete(rl.clients, key)
			}
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst)}
		rl.clients[ip] = cl
	}
	cl.lastAccess = now

	return cl.limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
