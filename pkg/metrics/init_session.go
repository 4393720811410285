package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSessionMetrics() {
	r.SessionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_sessions_active",
			Help: "Number of open canvas sessions",
		},
	)

	r.SessionOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_session_operations_total",
			Help: "Total graph mutations by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	r.SessionOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_session_operation_duration_seconds",
			Help:    "Graph mutation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_graph_nodes_total",
			Help: "Current node count across all sessions",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_graph_edges_total",
			Help: "Current edge count across all sessions",
		},
	)
}
