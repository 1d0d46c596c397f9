// Package metrics exposes prometheus counters for the dialog engine. All
// methods are nil-safe so tests can run without a registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's counters.
type Metrics struct {
	exchanges     *prometheus.CounterVec
	generation    *prometheus.CounterVec
	continuations *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
}

// New creates and registers the engine metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_exchanges_total",
				Help: "USSD exchanges handled, by top-level branch",
			},
			[]string{"branch"},
		),
		generation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_generation_outcomes_total",
				Help: "Generation call outcomes, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		continuations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_background_continuations_total",
				Help: "Background continuations after interactive timeout, by result",
			},
			[]string{"result"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_sms_deliveries_total",
				Help: "Out-of-band deliveries attempted, by kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.exchanges, m.generation, m.continuations, m.deliveries)
	return m
}

// Exchange counts one handled exchange.
func (m *Metrics) Exchange(branch string) {
	if m == nil {
		return
	}
	m.exchanges.WithLabelValues(branch).Inc()
}

// Generation counts one generation call outcome.
func (m *Metrics) Generation(kind, outcome string) {
	if m == nil {
		return
	}
	m.generation.WithLabelValues(kind, outcome).Inc()
}

// Continuation counts one background continuation result.
func (m *Metrics) Continuation(result string) {
	if m == nil {
		return
	}
	m.continuations.WithLabelValues(result).Inc()
}

// Delivery counts one out-of-band delivery attempt.
func (m *Metrics) Delivery(kind string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(kind).Inc()
}
