package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CarrierMetrics counts outbound carrier calls and their latency.
type CarrierMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCarrierMetrics(reg prometheus.Registerer) *CarrierMetrics {
	if reg == nil {
		return &CarrierMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carrier_requests_total",
		Help: "Carrier adapter calls by carrier, operation and outcome.",
	}, []string{"carrier", "operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carrier_request_duration_seconds",
		Help:    "Carrier adapter call latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"carrier", "operation"})
	reg.MustRegister(requests, duration)
	return &CarrierMetrics{requests: requests, duration: duration}
}

// Observe records one call. success reflects the adapter result, not transport.
func (m *CarrierMetrics) Observe(carrier, operation string, success bool, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	carrier = normalizeLabel(carrier)
	operation = normalizeLabel(operation)
	m.requests.WithLabelValues(carrier, operation, outcome).Inc()
	m.duration.WithLabelValues(carrier, operation).Observe(elapsed.Seconds())
}
