package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics counts inbound orders by source and outcome.
type IntakeMetrics struct {
	processed *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	if reg == nil {
		return &IntakeMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_orders_total",
		Help: "Inbound order payloads by source and outcome.",
	}, []string{"source", "outcome"})
	reg.MustRegister(processed)
	return &IntakeMetrics{processed: processed}
}

func (m *IntakeMetrics) Observe(source string, success bool) {
	if m == nil || m.processed == nil {
		return
	}
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	m.processed.WithLabelValues(normalizeLabel(source), outcome).Inc()
}
