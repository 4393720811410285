package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process gauges. Goroutine and heap figures are sampled at scrape
// time; only uptime needs state and is refreshed by the server.
func (r *Registry) initSystemMetrics() {
	r.UptimeSeconds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atlas_uptime_seconds",
			Help: "Time since the server started in seconds",
		},
	)

	promauto.With(r.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "atlas_goroutines",
			Help: "Number of goroutines at scrape time",
		},
		func() float64 { return float64(runtime.NumGoroutine()) },
	)

	promauto.With(r.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "atlas_memory_alloc_bytes",
			Help: "Bytes of allocated heap objects at scrape time",
		},
		func() float64 {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return float64(m.Alloc)
		},
	)
}
