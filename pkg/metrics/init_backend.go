package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBackendMetrics() {
	r.BackendRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_backend_requests_total",
			Help: "Total requests to the LLM backend by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	r.BackendRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_backend_request_duration_seconds",
			Help:    "LLM backend request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	r.BackendFallbacksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_backend_fallbacks_total",
			Help: "Backend failures served from static fallback suggestions",
		},
		[]string{"operation"},
	)
}
