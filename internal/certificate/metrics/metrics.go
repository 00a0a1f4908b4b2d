package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks certificate issuance and code generation.
type Metrics struct {
	Issued              prometheus.Counter
	Mutations           *prometheus.CounterVec
	CodeCollisions      prometheus.Counter
	GenerationExhausted prometheus.Counter
	ImportedRows        *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Issued: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_certificates_issued_total",
			Help: "Certificates issued",
		}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_certificate_mutations_total",
			Help: "Certificate writes other than issuance, by operation",
		}, []string{"operation"}),
		CodeCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_certificate_code_collisions_total",
			Help: "Generated codes rejected because they were in use or retired",
		}),
		GenerationExhausted: f.NewCounter(prometheus.CounterOpts{
			Name: "academy_certificate_code_generation_exhausted_total",
			Help: "Issuances or regenerations that ran out of code attempts",
		}),
		ImportedRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_certificate_import_rows_total",
			Help: "Bulk issuance rows by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.Issued.Inc()
}

func (m *Metrics) IncrementMutation(operation string) {
	m.Mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementCollision() {
	m.CodeCollisions.Inc()
}

func (m *Metrics) IncrementExhausted() {
	m.GenerationExhausted.Inc()
}

// ObserveImport records the outcome counts of one bulk upload.
func (m *Metrics) ObserveImport(issued, failed int) {
	m.ImportedRows.WithLabelValues("issued").Add(float64(issued))
	m.ImportedRows.WithLabelValues("failed").Add(float64(failed))
}
