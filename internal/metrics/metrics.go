// Package metrics exposes Prometheus collectors for the shell layer: HTTP
// traffic, remote load outcomes and boundary state transitions.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shell_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shell_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shell_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	remoteLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shell_layer",
			Subsystem: "loader",
			Name:      "remote_loads_total",
			Help:      "Total number of remote load attempts by outcome.",
		},
		[]string{"remote", "outcome"},
	)

	remoteLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shell_layer",
			Subsystem: "loader",
			Name:      "remote_load_duration_seconds",
			Help:      "Duration of remote manifest fetch and instantiation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"remote"},
	)

	boundaryTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shell_layer",
			Subsystem: "boundary",
			Name:      "transitions_total",
			Help:      "Total number of boundary state transitions.",
		},
		[]string{"remote", "state"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		remoteLoads,
		remoteLoadDuration,
		boundaryTransitions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordRemoteLoad records the outcome of one loader attempt. Outcome is
// "ready" when the remote instantiated or "fallback" when the substitute
// presentation was engaged.
func RecordRemoteLoad(remote, outcome string, duration time.Duration) {
	if remote == "" {
		remote = "unknown"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	remoteLoads.WithLabelValues(remote, outcome).Inc()
	remoteLoadDuration.WithLabelValues(remote).Observe(duration.Seconds())
}

// RecordBoundaryTransition records a boundary state transition.
func RecordBoundaryTransition(remote, state string) {
	if remote == "" {
		remote = "unknown"
	}
	boundaryTransitions.WithLabelValues(remote, state).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource IDs so the label set stays bounded.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/api"
	}
	if len(parts) == 2 {
		return "/api/" + parts[1]
	}
	// /api/users/42 -> /api/users/:id, /api/analytics/charts/line kept as-is
	if parts[1] == "analytics" || parts[1] == "auth" || parts[1] == "settings" {
		return "/" + strings.Join(parts, "/")
	}
	return "/api/" + parts[1] + "/:id"
}
