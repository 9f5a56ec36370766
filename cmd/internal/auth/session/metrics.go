package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds session counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	created     prometheus.Counter
	validations *prometheus.CounterVec
	claims      *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
}

// NewMetrics registers the session counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		created: f.NewCounter(prometheus.CounterOpts{
			Name: "tessera_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		validations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_session_validations_total",
				Help: "Session token validations by outcome",
			},
			[]string{"outcome"},
		),
		claims: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_claim_verifications_total",
				Help: "Signed claim verifications by outcome",
			},
			[]string{"outcome"},
		),
		storeErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tessera_session_store_errors_total",
				Help: "Session store failures by operation",
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) sessionCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Metrics) validation(outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) claim(outcome string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(outcome).Inc()
}

func (m *Metrics) storeError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}
