// Package metrics holds the prometheus collectors of the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "domon"

// Metrics groups every collector. A nil *Metrics is valid and records nothing,
// so CLI runs and tests can skip the registry entirely.
type Metrics struct {
	registry *prometheus.Registry

	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec

	Reloads        *prometheus.CounterVec
	ReloadDuration prometheus.Histogram
	DomainsTotal   prometheus.Gauge
	DomainsDown    prometheus.Gauge
	SSLExpiring    prometheus.Gauge
	LastReload     prometheus.Gauge

	Mutations *prometheus.CounterVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.GatewayRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Backend requests by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
	m.GatewayDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	m.Reloads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reloads_total",
			Help:      "Store reloads by outcome",
		},
		[]string{"outcome"},
	)
	m.ReloadDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reload_duration_seconds",
			Help:      "Time spent fetching and replacing the store",
			Buckets:   prometheus.DefBuckets,
		},
	)
	m.DomainsTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "domains",
		Help:      "Monitored domains currently held",
	})
	m.DomainsDown = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "domains_down",
		Help:      "Monitored domains reported down",
	})
	m.SSLExpiring = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "ssl_expiring_soon",
		Help:      "Certificates expiring within the warning window",
	})
	m.LastReload = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "last_reload_timestamp_seconds",
		Help:      "Unix time of the last successful reload",
	})

	m.Mutations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "mutations_total",
			Help:      "Add/remove/bulk operations by outcome",
		},
		[]string{"op", "outcome"},
	)

	return m
}

// Handler exposes the registry for /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (tests use it to gather).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveGateway records one backend call
func (m *Metrics) ObserveGateway(op, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(op, outcome).Inc()
	m.GatewayDuration.WithLabelValues(op).Observe(took.Seconds())
}

// ObserveReload records a store reload and, on success, the fleet gauges.
func (m *Metrics) ObserveReload(ok bool, took time.Duration, total, down, expiring int) {
	if m == nil {
		return
	}
	m.ReloadDuration.Observe(took.Seconds())
	if !ok {
		m.Reloads.WithLabelValues("error").Inc()
		return
	}
	m.Reloads.WithLabelValues("ok").Inc()
	m.DomainsTotal.Set(float64(total))
	m.DomainsDown.Set(float64(down))
	m.SSLExpiring.Set(float64(expiring))
	m.LastReload.SetToCurrentTime()
}

// ObserveMutation records an add/remove/bulk outcome
func (m *Metrics) ObserveMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, outcome).Inc()
}
