// Package metrics holds the bridge's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the bridge collectors. A nil *Metrics is valid and records
// nothing, so components can be wired without observability in tests.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	OutstandingCalls prometheus.Gauge
	RelayConnected   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nanobridge",
			Name:      "requests_total",
			Help:      "Capability requests by action and outcome.",
		}, []string{"action", "outcome"}),
		OutstandingCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nanobridge",
			Name:      "outstanding_calls",
			Help:      "HTTP calls currently awaiting a relay response.",
		}),
		RelayConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nanobridge",
			Name:      "relay_connected",
			Help:      "Whether an executor is attached to the relay (0 or 1).",
		}),
	}

	reg.MustRegister(m.RequestsTotal, m.OutstandingCalls, m.RelayConnected)
	return m
}

// ObserveRequest records one finished capability request.
func (m *Metrics) ObserveRequest(action, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(action, outcome).Inc()
}

// CallStarted records registration of a correlation id.
func (m *Metrics) CallStarted() {
	if m == nil {
		return
	}
	m.OutstandingCalls.Inc()
}

// CallFinished records removal of a correlation id.
func (m *Metrics) CallFinished() {
	if m == nil {
		return
	}
	m.OutstandingCalls.Dec()
}

// SetRelayConnected records executor attachment state.
func (m *Metrics) SetRelayConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.RelayConnected.Set(1)
	} else {
		m.RelayConnected.Set(0)
	}
}
