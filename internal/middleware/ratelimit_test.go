package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newLimitedHandler(cfg RateLimiterConfig) http.Handler {
	rl := NewRateLimiter(cfg)
	return rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(handler http.Handler, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimiter_RejectsPastBurst(t *testing.T) {
	handler := newLimitedHandler(RateLimiterConfig{
		Rate:  rate.Limit(0.001), // effectively no refill during the test
		Burst: 3,
		TTL:   time.Minute,
	})

	for i := 0; i < 3; i++ {
		if code := doRequest(handler, "10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, code)
		}
	}

	if code := doRequest(handler, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("request over burst status = %d, want 429", code)
	}
}

func TestRateLimiter_LimitsArePerIP(t *testing.T) {
	handler := newLimitedHandler(RateLimiterConfig{
		Rate:  rate.Limit(0.001),
		Burst: 1,
		TTL:   time.Minute,
	})

	if code := doRequest(handler, "10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first IP status = %d, want 200", code)
	}
	if code := doRequest(handler, "10.0.0.1:9999"); code != http.StatusTooManyRequests {
		t.Fatalf("same IP, different port status = %d, want 429", code)
	}
	if code := doRequest(handler, "10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("different IP status = %d, want 200", code)
	}
}
