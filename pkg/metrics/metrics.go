package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordSessionOperation records a graph mutation with its duration
func (r *Registry) RecordSessionOperation(operation, status string, duration time.Duration) {
	r.SessionOperationsTotal.WithLabelValues(operation, status).Inc()
	r.SessionOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBackendRequest records a call to the LLM collaborator
func (r *Registry) RecordBackendRequest(operation, status string, duration time.Duration) {
	r.BackendRequestsTotal.WithLabelValues(operation, status).Inc()
	r.BackendRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBackendFallback records a failed backend call that was served
// from a static fallback instead
func (r *Registry) RecordBackendFallback(operation string) {
	r.BackendFallbacksTotal.WithLabelValues(operation).Inc()
}

// RecordStreamFrame records one received SSE frame by type
func (r *Registry) RecordStreamFrame(frameType string) {
	r.StreamFramesTotal.WithLabelValues(frameType).Inc()
}

// UpdateGraphSize sets the current node and edge totals across all
// open sessions
func (r *Registry) UpdateGraphSize(nodes, edges int) {
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// UpdateSystemMetrics refreshes the uptime gauge; the other process
// gauges sample themselves at scrape time
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
}

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initHTTPMetrics()
	r.initSessionMetrics()
	r.initBackendMetrics()
	r.initStreamMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
