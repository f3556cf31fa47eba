package intake

import (
	"context"
	"io"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
)

type stubOrderCreator struct {
	records []Record
	errs    map[string]error
}

func (s *stubOrderCreator) CreateFromIntake(ctx context.Context, record Record) (uuid.UUID, error) {
	s.records = append(s.records, record)
	if err, ok := s.errs[record.ProductSKU]; ok {
		return uuid.Nil, err
	}
	return uuid.New(), nil
}

type stubMetrics struct {
	success, failure int
}

func (m *stubMetrics) Observe(source string, success bool) {
	if success {
		m.success++
		return
	}
	m.failure++
}

func newTestProcessor(t *testing.T, creator OrderCreator, metrics intakeMetrics) *Processor {
	t.Helper()
	p, err := NewProcessor(ProcessorParams{
		Orders:  creator,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return p
}

func validPayload(sku string) map[string]any {
	return map[string]any{
		"customer_name":    "Amine",
		"customer_phone":   "0550123456",
		"customer_address": "Oran",
		"product_sku":      sku,
		"quantity":         "2",
	}
}

func TestProcessNormalizesPhoneBeforeCreate(t *testing.T) {
	creator := &stubOrderCreator{}
	p := newTestProcessor(t, creator, nil)

	res := p.Process(context.Background(), SourceWebhook, validPayload("P1"))
	if !res.Success || res.OrderID == nil {
		t.Fatalf("expected success, got %+v", res)
	}
	if len(creator.records) != 1 {
		t.Fatalf("expected one create call, got %d", len(creator.records))
	}
	if creator.records[0].CustomerPhone != "+213550123456" {
		t.Fatalf("expected normalized phone, got %q", creator.records[0].CustomerPhone)
	}
}

func TestProcessReportsUnknownSKU(t *testing.T) {
	creator := &stubOrderCreator{errs: map[string]error{
		"NOPE": pkgerrors.New(pkgerrors.CodeNotFound, "product not found"),
	}}
	p := newTestProcessor(t, creator, nil)

	res := p.Process(context.Background(), SourceWebhook, validPayload("NOPE"))
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Message, "NOPE") {
		t.Fatalf("expected sku in message, got %q", res.Message)
	}
}

func TestProcessReportsInsufficientStock(t *testing.T) {
	creator := &stubOrderCreator{errs: map[string]error{
		"LOW": pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"available": 1, "requested": 2}),
	}}
	p := newTestProcessor(t, creator, nil)

	res := p.Process(context.Background(), SourceWebhook, validPayload("LOW"))
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Message, "available 1") || !strings.Contains(res.Message, "requested 2") {
		t.Fatalf("expected availability in message, got %q", res.Message)
	}
}

func TestProcessCarriesFailureCode(t *testing.T) {
	creator := &stubOrderCreator{errs: map[string]error{
		"DOWN": pkgerrors.Wrap(pkgerrors.CodeDependency, context.DeadlineExceeded, "load product by sku"),
		"RAW":  context.Canceled,
	}}
	p := newTestProcessor(t, creator, nil)

	cases := []struct {
		raw  map[string]any
		want pkgerrors.Code
	}{
		{validPayload("DOWN"), pkgerrors.CodeDependency},
		{validPayload("RAW"), pkgerrors.CodeInternal},
		{map[string]any{"customer_name": "Amine"}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		res := p.Process(context.Background(), SourceWebhook, tc.raw)
		if res.Success {
			t.Fatalf("expected failure for %v", tc.raw)
		}
		if res.Code != tc.want {
			t.Fatalf("expected code %s, got %s", tc.want, res.Code)
		}
	}
}

func TestProcessValidationFailureSkipsCreate(t *testing.T) {
	creator := &stubOrderCreator{}
	p := newTestProcessor(t, creator, nil)

	raw := validPayload("P1")
	raw["customer_phone"] = "abc"
	res := p.Process(context.Background(), SourceWebhook, raw)
	if res.Success {
		t.Fatal("expected failure")
	}
	if len(creator.records) != 0 {
		t.Fatal("create must not be called for invalid payloads")
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	creator := &stubOrderCreator{errs: map[string]error{
		"BAD": pkgerrors.New(pkgerrors.CodeNotFound, "product not found"),
	}}
	metrics := &stubMetrics{}
	p := newTestProcessor(t, creator, metrics)

	out := p.ProcessBatch(context.Background(), SourceWebhook, []map[string]any{
		validPayload("P1"),
		validPayload("BAD"),
		validPayload("P2"),
	})
	if out.Total != 3 || out.Successful != 2 || out.Failed != 1 {
		t.Fatalf("unexpected batch counts %+v", out)
	}
	if len(out.Results) != 3 || out.Results[1].Success {
		t.Fatalf("unexpected per-item results %+v", out.Results)
	}
	if metrics.success != 2 || metrics.failure != 1 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestNewProcessorRequiresDependencies(t *testing.T) {
	if _, err := NewProcessor(ProcessorParams{}); err == nil {
		t.Fatal("expected error without order creator")
	}
}
