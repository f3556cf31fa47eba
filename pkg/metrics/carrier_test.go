package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCarrierMetricsSplitsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCarrierMetrics(reg)
	m.Observe("yalidine", "create_shipment", true, 120*time.Millisecond)
	m.Observe("yalidine", "create_shipment", false, 80*time.Millisecond)
	m.Observe("", "track", false, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, outcome := range []string{OutcomeSuccess, OutcomeFailure} {
		got, err := fetchCounterValue(mfs, "carrier_requests_total", map[string]string{
			"carrier": "yalidine", "operation": "create_shipment", "outcome": outcome,
		})
		if err != nil {
			t.Fatalf("fetch %s: %v", outcome, err)
		}
		if got != 1 {
			t.Fatalf("expected %s=1, got %f", outcome, got)
		}
	}

	if _, err := fetchCounterValue(mfs, "carrier_requests_total", map[string]string{"carrier": "unknown", "operation": "track"}); err != nil {
		t.Fatalf("expected empty carrier to be normalized: %v", err)
	}

	sum, err := fetchHistogramSum(mfs, "carrier_request_duration_seconds", map[string]string{"carrier": "yalidine", "operation": "create_shipment"})
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if sum < 0.19 || sum > 0.21 {
		t.Fatalf("expected duration sum around 0.2, got %f", sum)
	}
}

func TestIntakeMetricsCountsBySourceRawLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)
	m.Observe("Webhook", true)
	m.Observe("Webhook", true)
	m.Observe("Google Sheet", false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "intake_orders_total", map[string]string{"source": "Webhook", "outcome": OutcomeSuccess})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2, got %f", got)
	}
}
