// Package metrics exposes Prometheus counters for the tracking pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignite/mailtrace/internal/domain"
)

// Metrics owns a private registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	eventsRecorded *prometheus.CounterVec
	geoResolutions *prometheus.CounterVec
	appendFailures prometheus.Counter
}

// New creates and registers the pipeline counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "mailtrace", Subsystem: "events", Name: "recorded_total",
				Help: "Tracking events recorded, by event type."},
			[]string{"type"},
		),
		geoResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "mailtrace", Subsystem: "geo", Name: "resolutions_total",
				Help: "Geolocation provider stage attempts, by provider and outcome."},
			[]string{"provider", "outcome"},
		),
		appendFailures: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: "mailtrace", Subsystem: "store", Name: "append_failures_total",
				Help: "Durable event-log append failures."},
		),
	}
	m.registry.MustRegister(m.eventsRecorded, m.geoResolutions, m.appendFailures)
	return m
}

// RecordEvent counts a recorded event of the given type.
func (m *Metrics) RecordEvent(t domain.EventType) {
	m.eventsRecorded.WithLabelValues(string(t)).Inc()
}

// GeoResolution counts one provider stage attempt.
func (m *Metrics) GeoResolution(provider, outcome string) {
	m.geoResolutions.WithLabelValues(provider, outcome).Inc()
}

// AppendFailure counts a failed durable append.
func (m *Metrics) AppendFailure() {
	m.appendFailures.Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
