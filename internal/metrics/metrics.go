// Package metrics exposes Prometheus counters for the conversion pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	EventsTracked  prometheus.Counter
	EventsDropped  prometheus.Counter
	SinkDeliveries *prometheus.CounterVec
	SinkFailures   *prometheus.CounterVec
	Assignments    *prometheus.CounterVec
}

// New creates and registers the service collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		EventsTracked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cro_events_tracked_total",
			Help: "Conversion events accepted for dispatch.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cro_events_dropped_total",
			Help: "Conversion events dropped before dispatch (validation or full archive buffer).",
		}),
		SinkDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cro_sink_deliveries_total",
			Help: "Successful sink deliveries by sink.",
		}, []string{"sink"}),
		SinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cro_sink_failures_total",
			Help: "Failed sink deliveries by sink.",
		}, []string{"sink"}),
		Assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cro_experiment_assignments_total",
			Help: "New experiment assignments by experiment and variant.",
		}, []string{"experiment", "variant"}),
	}

	registry.MustRegister(
		m.EventsTracked,
		m.EventsDropped,
		m.SinkDeliveries,
		m.SinkFailures,
		m.Assignments,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
