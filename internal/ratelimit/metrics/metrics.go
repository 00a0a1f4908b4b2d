package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DecisionAllowed  = "allowed"
	DecisionDenied   = "denied"
	DecisionFailOpen = "fail_open"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors prometheus.Counter
	CircuitOpen prometheus.Gauge
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_ratelimit_decisions_total",
			Help: "Rate limit decisions by scope and decision",
		}, []string{"scope", "decision"}),
		StoreErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_ratelimit_store_errors_total",
			Help: "Primary rate limit store failures",
		}),
		CircuitOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "academy_ratelimit_circuit_open",
			Help: "1 while the limiter is serving from its in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementDecision(scope, decision string) {
	m.Decisions.WithLabelValues(scope, decision).Inc()
}

func (m *Metrics) IncrementStoreError() {
	m.StoreErrors.Inc()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.CircuitOpen.Set(1)
		return
	}
	m.CircuitOpen.Set(0)
}
