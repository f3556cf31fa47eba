package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/dzorders-backend/internal/intake"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
)

type stubIntake struct {
	gotSource intake.Source
	gotRaw    map[string]any
	gotBatch  []map[string]any
	result    intake.Result
}

func (s *stubIntake) Process(ctx context.Context, source intake.Source, raw map[string]any) intake.Result {
	s.gotSource = source
	s.gotRaw = raw
	return s.result
}

func (s *stubIntake) ProcessBatch(ctx context.Context, source intake.Source, raws []map[string]any) intake.BatchResult {
	s.gotSource = source
	s.gotBatch = raws
	out := intake.BatchResult{Total: len(raws)}
	for i := range raws {
		if i%2 == 0 {
			out.Successful++
			out.Results = append(out.Results, intake.Result{Success: true, Message: "order created"})
			continue
		}
		out.Failed++
		out.Results = append(out.Results, intake.Result{Success: false, Message: "missing required field: product_sku"})
	}
	return out
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "webhooks-test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestOrdersCreatesFromWebhookSource(t *testing.T) {
	orderID := uuid.New()
	proc := &stubIntake{result: intake.Result{Success: true, Message: "order created", OrderID: &orderID}}

	body := `{"name":"Karim","phone":"0555000000","address":"Blida","sku":"TSH-01","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Orders(proc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if proc.gotSource != intake.SourceWebhook {
		t.Fatalf("unexpected source %q", proc.gotSource)
	}
	if qty, ok := proc.gotRaw["quantity"].(json.Number); !ok || qty.String() != "2" {
		t.Fatalf("expected numbers decoded as json.Number, got %#v", proc.gotRaw["quantity"])
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var data orderCreated
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.OrderID != orderID.String() {
		t.Fatalf("unexpected order id %q", data.OrderID)
	}
}

func TestOrdersRejectedPayloadIs400(t *testing.T) {
	proc := &stubIntake{result: intake.Result{Success: false, Message: "product with SKU X not found"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/orders", strings.NewReader(`{"sku":"X"}`))
	rec := httptest.NewRecorder()
	Orders(proc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Message != "product with SKU X not found" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

type failingCreator struct {
	err error
}

func (f failingCreator) CreateFromIntake(ctx context.Context, record intake.Record) (uuid.UUID, error) {
	return uuid.Nil, f.err
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestOrdersKeepsServerFailureStatus(t *testing.T) {
	body := `{"name":"Karim","phone":"0550123456","address":"Blida","sku":"TSH-01","quantity":1}`
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   pkgerrors.Code
	}{
		{"database down", pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"), http.StatusServiceUnavailable, pkgerrors.CodeDependency},
		{"unknown sku", pkgerrors.New(pkgerrors.CodeNotFound, "product not found"), http.StatusBadRequest, pkgerrors.CodeValidation},
		{"short stock", pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock"), http.StatusBadRequest, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc, err := intake.NewProcessor(intake.ProcessorParams{
				Orders: failingCreator{err: tc.err},
				Logger: testLogger(),
			})
			if err != nil {
				t.Fatalf("new processor: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/orders", strings.NewReader(body))
			rec := httptest.NewRecorder()
			Orders(proc, testLogger()).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			var env errorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Success || env.Error.Code != string(tc.wantCode) {
				t.Fatalf("unexpected envelope %+v", env)
			}
		})
	}
}

func TestOrdersRejectsNonObject(t *testing.T) {
	for _, body := range []string{"", "[1,2]", "null", "{broken"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Orders(&stubIntake{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestOrdersBatchReportsCounts(t *testing.T) {
	proc := &stubIntake{}
	body := `{"orders":[{"sku":"A"},{"name":"no sku"},{"sku":"B"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/orders/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	OrdersBatch(proc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(proc.gotBatch) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(proc.gotBatch))
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var result intake.BatchResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if result.Total != 3 || result.Successful != 2 || result.Failed != 1 {
		t.Fatalf("unexpected counts %+v", result)
	}
}

func TestOrdersBatchRequiresOrders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/orders/batch", strings.NewReader(`{"orders":[]}`))
	rec := httptest.NewRecorder()
	OrdersBatch(&stubIntake{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEchoAcceptsEmptyPost(t *testing.T) {
	for _, tc := range []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPost, ""},
		{http.MethodPost, `{"ping":true}`},
	} {
		req := httptest.NewRequest(tc.method, "/api/v1/webhook/test", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		Test(testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %q: expected 200, got %d", tc.method, tc.body, rec.Code)
		}
	}
}
