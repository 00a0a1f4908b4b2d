package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks catalog mutations and public read latency.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	CascadeDeleted  *prometheus.CounterVec
	ListDuration    prometheus.Histogram
	ReorderRejected prometheus.Counter
}

// New registers catalog metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers catalog metrics on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_catalog_mutations_total",
			Help: "Catalog writes by entity and operation",
		}, []string{"entity", "operation"}),
		CascadeDeleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_catalog_cascade_deleted_total",
			Help: "Records removed as a consequence of a parent delete",
		}, []string{"entity"}),
		ListDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "academy_catalog_list_duration_seconds",
			Help:    "Duration of course listing including filter and pagination",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		ReorderRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_catalog_reorder_rejected_total",
			Help: "Reorder requests rejected for naming ids outside their scope",
		}),
	}
}

// IncrementMutation records a successful write.
func (m *Metrics) IncrementMutation(entity, operation string) {
	m.Mutations.WithLabelValues(entity, operation).Inc()
}

// AddCascadeDeleted records n child records removed with their parent.
func (m *Metrics) AddCascadeDeleted(entity string, n int) {
	if n > 0 {
		m.CascadeDeleted.WithLabelValues(entity).Add(float64(n))
	}
}

// ObserveList records listing latency. Call with time.Now() at the start.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementReorderRejected() {
	m.ReorderRejected.Inc()
}
