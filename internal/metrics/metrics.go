// Package metrics provides Prometheus metric collection and exposure.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the service layer records events through.
// Keeping it an interface lets tests pass a no-op instead of a registry.
type Recorder interface {
	RecordSignup()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordAuthRejection()
}

// Collector implements Recorder backed by Prometheus metrics, and also
// owns the per-status HTTP response counter used by the middleware below.
type Collector struct {
	registry *prometheus.Registry

	signups       prometheus.Counter
	loginSuccess  prometheus.Counter
	loginFailure  prometheus.Counter
	authRejection prometheus.Counter
	httpStatus    *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry. Using a private
// registry (not prometheus.DefaultRegisterer) keeps repeated construction
// in tests from panicking on duplicate registration.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbox_signups_total",
			Help: "Total number of successful signups.",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbox_logins_success_total",
			Help: "Total number of successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbox_logins_failure_total",
			Help: "Total number of failed login attempts.",
		}),
		authRejection: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbox_auth_rejections_total",
			Help: "Total number of requests rejected for missing or invalid tokens.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskbox_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	c.registry.MustRegister(
		c.signups,
		c.loginSuccess,
		c.loginFailure,
		c.authRejection,
		c.httpStatus,
	)

	return c
}

func (c *Collector) RecordSignup()        { c.signups.Inc() }
func (c *Collector) RecordLoginSuccess()  { c.loginSuccess.Inc() }
func (c *Collector) RecordLoginFailure()  { c.loginFailure.Inc() }
func (c *Collector) RecordAuthRejection() { c.authRejection.Inc() }

// Handler returns the /metrics endpoint handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// statusWriter captures the response status for the middleware.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware counts every response by status code.
func (c *Collector) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			c.httpStatus.WithLabelValues(strconv.Itoa(sw.status)).Inc()
		})
	}
}

// Nop is a Recorder that does nothing. Handy in tests.
type Nop struct{}

func (Nop) RecordSignup()        {}
func (Nop) RecordLoginSuccess()  {}
func (Nop) RecordLoginFailure()  {}
func (Nop) RecordAuthRejection() {}
