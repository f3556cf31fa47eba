package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	inventorysvc "github.com/angelmondragon/dzorders-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
)

type stubInventoryService struct {
	inventorysvc.Service

	status   func(ctx context.Context, threshold int) (*inventorysvc.StatusReport, error)
	movement func(ctx context.Context, days int) (*inventorysvc.MovementReport, error)
	restock  func(ctx context.Context, input inventorysvc.RestockInput) (*inventorysvc.RestockResult, error)
	adjust   func(ctx context.Context, input inventorysvc.AdjustInput) (*inventorysvc.AdjustResult, error)
	history  func(ctx context.Context, productID uuid.UUID, limit int) ([]inventorysvc.MovementDTO, error)
}

func (s *stubInventoryService) Status(ctx context.Context, threshold int) (*inventorysvc.StatusReport, error) {
	return s.status(ctx, threshold)
}

func (s *stubInventoryService) Movement(ctx context.Context, days int) (*inventorysvc.MovementReport, error) {
	return s.movement(ctx, days)
}

func (s *stubInventoryService) Restock(ctx context.Context, input inventorysvc.RestockInput) (*inventorysvc.RestockResult, error) {
	return s.restock(ctx, input)
}

func (s *stubInventoryService) Adjust(ctx context.Context, input inventorysvc.AdjustInput) (*inventorysvc.AdjustResult, error) {
	return s.adjust(ctx, input)
}

func (s *stubInventoryService) History(ctx context.Context, productID uuid.UUID, limit int) ([]inventorysvc.MovementDTO, error) {
	return s.history(ctx, productID, limit)
}

func TestInventoryStatusThreshold(t *testing.T) {
	var got int
	svc := &stubInventoryService{
		status: func(ctx context.Context, threshold int) (*inventorysvc.StatusReport, error) {
			got = threshold
			return &inventorysvc.StatusReport{}, nil
		},
	}

	rec := httptest.NewRecorder()
	InventoryStatus(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/status", nil))
	if rec.Code != http.StatusOK || got != inventorysvc.DefaultLowStockThreshold {
		t.Fatalf("expected default threshold, got %d (status %d)", got, rec.Code)
	}

	rec = httptest.NewRecorder()
	InventoryStatus(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/status?low_stock_threshold=3", nil))
	if rec.Code != http.StatusOK || got != 3 {
		t.Fatalf("expected threshold 3, got %d (status %d)", got, rec.Code)
	}

	rec = httptest.NewRecorder()
	InventoryStatus(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/status?low_stock_threshold=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad threshold, got %d", rec.Code)
	}
}

func TestInventoryMovementDaysBounds(t *testing.T) {
	svc := &stubInventoryService{
		movement: func(ctx context.Context, days int) (*inventorysvc.MovementReport, error) {
			return &inventorysvc.MovementReport{}, nil
		},
	}
	rec := httptest.NewRecorder()
	InventoryMovement(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/movement?days=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for days=0, got %d", rec.Code)
	}
}

func TestInventoryRestock(t *testing.T) {
	productID := uuid.New()
	var got inventorysvc.RestockInput
	svc := &stubInventoryService{
		restock: func(ctx context.Context, input inventorysvc.RestockInput) (*inventorysvc.RestockResult, error) {
			got = input
			return &inventorysvc.RestockResult{ProductID: input.ProductID, OldStock: 2, AddedQuantity: input.Quantity, NewStock: 2 + input.Quantity}, nil
		},
	}
	body := `{"product_id":"` + productID.String() + `","quantity":8,"notes":"supplier delivery"}`
	rec := httptest.NewRecorder()
	InventoryRestock(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/inventory/restock", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.ProductID != productID || got.Quantity != 8 || got.Note != "supplier delivery" {
		t.Fatalf("unexpected input %+v", got)
	}
	var result inventorysvc.RestockResult
	decodeData(t, rec, &result)
	if result.NewStock != 10 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestInventoryRestockRejectsZeroQuantity(t *testing.T) {
	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	rec := httptest.NewRecorder()
	InventoryRestock(&stubInventoryService{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInventoryAdjustNegativeStock(t *testing.T) {
	svc := &stubInventoryService{
		adjust: func(ctx context.Context, input inventorysvc.AdjustInput) (*inventorysvc.AdjustResult, error) {
			if input.Adjustment != -50 {
				t.Fatalf("unexpected adjustment %d", input.Adjustment)
			}
			return nil, pkgerrors.New(pkgerrors.CodeNegativeStock, "stock cannot go negative").
				WithDetails(map[string]any{"current_stock": 5, "adjustment": -50})
		},
	}
	body := `{"product_id":"` + uuid.NewString() + `","adjustment":-50,"reason":"breakage"}`
	rec := httptest.NewRecorder()
	InventoryAdjust(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Code != string(pkgerrors.CodeNegativeStock) {
		t.Fatalf("unexpected code %q", env.Error.Code)
	}
}

func TestInventoryHistory(t *testing.T) {
	productID := uuid.New()
	svc := &stubInventoryService{
		history: func(ctx context.Context, id uuid.UUID, limit int) ([]inventorysvc.MovementDTO, error) {
			if id != productID || limit != 5 {
				t.Fatalf("unexpected args %s %d", id, limit)
			}
			return []inventorysvc.MovementDTO{}, nil
		},
	}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/?limit=5", nil), "productId", productID.String())
	rec := httptest.NewRecorder()
	InventoryHistory(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
