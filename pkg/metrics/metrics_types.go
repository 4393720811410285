package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Session Metrics
	SessionsActive           prometheus.Gauge
	SessionOperationsTotal   *prometheus.CounterVec
	SessionOperationDuration *prometheus.HistogramVec
	GraphNodesTotal          prometheus.Gauge
	GraphEdgesTotal          prometheus.Gauge

	// Backend Metrics
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	BackendFallbacksTotal  *prometheus.CounterVec

	// Stream Metrics
	StreamsActive     prometheus.Gauge
	StreamFramesTotal *prometheus.CounterVec
	StreamErrorsTotal prometheus.Counter

	// System Metrics. Goroutine and heap gauges self-sample at scrape
	// time and need no handle here.
	UptimeSeconds prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)
