package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIntakeMetricsCountsBySource(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)
	m.Observe("Webhook", true)
	m.Observe("Webhook", true)
	m.Observe("Sheet", false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "intake_orders_total", map[string]string{"source": normalizeLabel("Webhook"), "outcome": OutcomeSuccess})
	if err != nil || got != 2 {
		t.Fatalf("expected 2 webhook successes, got %v (%v)", got, err)
	}
	got, err = fetchCounterValue(mfs, "intake_orders_total", map[string]string{"source": normalizeLabel("Sheet"), "outcome": OutcomeFailure})
	if err != nil || got != 1 {
		t.Fatalf("expected 1 sheet failure, got %v (%v)", got, err)
	}
}

func TestIntakeMetricsNilSafe(t *testing.T) {
	var m *IntakeMetrics
	m.Observe("Webhook", true)
	NewIntakeMetrics(nil).Observe("Webhook", false)
}
