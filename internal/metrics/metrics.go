package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	BillingEvents   *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	AccountEventErr prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BillingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogo_billing_events_total",
			Help: "Billing webhook events by type and reconciliation outcome.",
		}, []string{"type", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogo_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalogo_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AccountEventErr: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalogo_account_event_publish_failures_total",
			Help: "Account lifecycle events that could not be published.",
		}),
	}
	reg.MustRegister(m.BillingEvents, m.HTTPRequests, m.HTTPDuration, m.AccountEventErr)
	return m
}

// ObserveBillingEvent counts one reconciled billing event. Safe on a nil receiver.
func (m *Metrics) ObserveBillingEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.BillingEvents.WithLabelValues(eventType, outcome).Inc()
}

// PublishFailed counts one dropped account event. Safe on a nil receiver.
func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.AccountEventErr.Inc()
}
