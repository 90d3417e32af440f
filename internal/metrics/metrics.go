// Package metrics holds the Prometheus collectors of the billing API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the API records into
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthEvents      *prometheus.CounterVec
	BillEvents      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billing",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "auth_events_total",
			Help:      "Authentication outcomes by event and result.",
		}, []string{"event", "result"}),
		BillEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billing",
			Name:      "bill_events_total",
			Help:      "Bill mutations by kind.",
		}, []string{"event"}),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AuthEvents,
		m.BillEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// AuthEvent counts one register/login/guard outcome
func (m *Metrics) AuthEvent(event, result string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, result).Inc()
}

// BillEvent counts one created/deleted bill
func (m *Metrics) BillEvent(event string) {
	if m == nil {
		return
	}
	m.BillEvents.WithLabelValues(event).Inc()
}
