package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStreamMetrics() {
	r.StreamsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_streams_active",
			Help: "Number of node-generation streams currently open",
		},
	)

	r.StreamFramesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_stream_frames_total",
			Help: "Total SSE frames received by frame type",
		},
		[]string{"type"},
	)

	r.StreamErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "atlas_stream_errors_total",
			Help: "Streams terminated by an error frame or transport failure",
		},
	)
}
