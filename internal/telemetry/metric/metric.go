// Package metric provides Prometheus metrics for the QuMail backend.
//
// The Registry implements the event-recorder interfaces of the service
// and entropy layers, so the rest of the code never imports the
// Prometheus client directly.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics behind one Prometheus
// registry.
type Registry struct {
	reg *prometheus.Registry

	sessionsInitiated *prometheus.CounterVec
	sessionsExpired   prometheus.Counter
	bufferBytesAdded  prometheus.Counter
	chunkBytes        *prometheus.CounterVec

	entropyBytes     *prometheus.CounterVec
	entropyFallbacks prometheus.Counter

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRegistry creates and registers all application metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		reg: reg,
		sessionsInitiated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qumail_sessions_initiated_total",
			Help: "Session initiations, split by whether a new session was created.",
		}, []string{"created"}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qumail_sessions_expired_total",
			Help: "Sessions removed by the expiry sweeper.",
		}),
		bufferBytesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qumail_buffer_bytes_added_total",
			Help: "Key material bytes appended to session buffers.",
		}),
		chunkBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qumail_chunk_bytes_total",
			Help: "Key material bytes reserved and consumed from session buffers.",
		}, []string{"op"}),
		entropyBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qumail_entropy_bytes_total",
			Help: "Random bytes served, by source.",
		}, []string{"source"}),
		entropyFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qumail_entropy_fallbacks_total",
			Help: "Primary entropy failures absorbed by the fallback source.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qumail_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qumail_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.sessionsInitiated,
		r.sessionsExpired,
		r.bufferBytesAdded,
		r.chunkBytes,
		r.entropyBytes,
		r.entropyFallbacks,
		r.requestsTotal,
		r.requestDuration,
	)
	return r
}

// ============================================================================
// service.Recorder
// ============================================================================

// SessionInitiated records an initiation outcome.
func (r *Registry) SessionInitiated(created bool) {
	label := "false"
	if created {
		label = "true"
	}
	r.sessionsInitiated.WithLabelValues(label).Inc()
}

// BufferRefilled records bytes appended by a refill.
func (r *Registry) BufferRefilled(added int) {
	r.bufferBytesAdded.Add(float64(added))
}

// ChunkReserved records a reservation.
func (r *Registry) ChunkReserved(length int) {
	r.chunkBytes.WithLabelValues("reserve").Add(float64(length))
}

// ChunkConsumed records a chunk read.
func (r *Registry) ChunkConsumed(length int) {
	r.chunkBytes.WithLabelValues("consume").Add(float64(length))
}

// SessionsExpired records a sweep.
func (r *Registry) SessionsExpired(n int) {
	r.sessionsExpired.Add(float64(n))
}

// ============================================================================
// entropy.Observer
// ============================================================================

// FetchServed records bytes served by an entropy source.
func (r *Registry) FetchServed(source string, n int) {
	r.entropyBytes.WithLabelValues(source).Add(float64(n))
}

// FallbackEngaged records an absorbed primary failure.
func (r *Registry) FallbackEngaged() {
	r.entropyFallbacks.Inc()
}

// ============================================================================
// HTTP instrumentation
// ============================================================================

// ObserveRequest records one handled HTTP request.
func (r *Registry) ObserveRequest(method, route, status string, seconds float64) {
	r.requestsTotal.WithLabelValues(method, route, status).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RegisterSessionGauge exports the live session count via a callback.
func (r *Registry) RegisterSessionGauge(count func() float64) {
	r.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "qumail_sessions_active",
		Help: "Sessions currently stored, expired but unswept ones included.",
	}, count))
}

// Handler returns the /metrics endpoint handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
