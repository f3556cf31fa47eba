package carriers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubAdapter struct {
	name        string
	trackStatus string
	fail        bool
	lastCreate  ShipmentRequest
	lastQuote   QuoteRequest
	trackCalls  int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) CreateShipment(ctx context.Context, req ShipmentRequest) ShipmentResult {
	s.lastCreate = req
	if s.fail {
		return ShipmentResult{Result: Failure("rejected by carrier")}
	}
	return ShipmentResult{Result: Result{Success: true}, TrackingNumber: "TRK-" + s.name}
}

func (s *stubAdapter) TrackShipment(ctx context.Context, trackingID string) TrackingResult {
	s.trackCalls++
	if s.fail {
		return TrackingResult{Result: Failure("unknown parcel")}
	}
	return TrackingResult{Result: Result{Success: true}, TrackingNumber: trackingID, Status: s.trackStatus}
}

func (s *stubAdapter) CancelShipment(ctx context.Context, trackingID string) Result {
	return Result{Success: true}
}

func (s *stubAdapter) GetShippingCost(ctx context.Context, req QuoteRequest) CostResult {
	s.lastQuote = req
	return CostResult{Result: Result{Success: true}, TotalCost: decimal.NewFromInt(600)}
}

type recordedCall struct {
	carrier, op string
	success     bool
}

type stubMetrics struct {
	calls []recordedCall
}

func (m *stubMetrics) Observe(carrier, operation string, success bool, elapsed time.Duration) {
	m.calls = append(m.calls, recordedCall{carrier, operation, success})
}

type stubOrders struct {
	byTracking map[string]*orders.OrderDTO
	updates    []orders.StatusUpdate
	shipped    map[uuid.UUID]string
	setErr     error
	markErr    error
}

func (s *stubOrders) FindByTrackingID(ctx context.Context, trackingID string) (*orders.OrderDTO, error) {
	if o, ok := s.byTracking[trackingID]; ok {
		return o, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrders) SetStatus(ctx context.Context, orderID uuid.UUID, update orders.StatusUpdate) (*orders.OrderDTO, error) {
	if s.setErr != nil {
		return nil, s.setErr
	}
	s.updates = append(s.updates, update)
	return &orders.OrderDTO{ID: orderID, OrderStatus: enums.OrderStatus(update.Status)}, nil
}

func (s *stubOrders) Get(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	for _, o := range s.byTracking {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrders) CanTransition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) error {
	_, err := s.Get(ctx, orderID)
	return err
}

func (s *stubOrders) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingID string, companyID *uuid.UUID) (*orders.OrderDTO, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	if s.shipped == nil {
		s.shipped = map[uuid.UUID]string{}
	}
	s.shipped[orderID] = trackingID
	return &orders.OrderDTO{ID: orderID, OrderStatus: enums.OrderStatusShipped}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func strPtr(s string) *string { return &s }

func TestRegistryRegisterResolveNames(t *testing.T) {
	reg := NewRegistry()
	first := &stubAdapter{name: "yalidine"}
	second := &stubAdapter{name: "yalidine"}
	reg.Register("Yalidine", first)
	reg.Register("aramex", &stubAdapter{name: "aramex"})
	reg.Register("yalidine", second)

	got, ok := reg.Resolve("YALIDINE")
	if !ok || got != second {
		t.Fatal("expected re-registration to replace the adapter")
	}
	if _, ok := reg.Resolve("zr-express"); ok {
		t.Fatal("expected unknown carrier to be missing")
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "aramex" || names[1] != "yalidine" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestManagerServiceNotAvailable(t *testing.T) {
	m := NewManager(NewRegistry(), nil)

	res := m.CreateShipmentVia(context.Background(), "ghost", ShipmentRequest{})
	if res.Success {
		t.Fatal("expected failure for unregistered carrier")
	}
	if res.Message != MessageServiceNotAvailable {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if res.ServiceName != "ghost" {
		t.Fatalf("expected service name in result, got %q", res.ServiceName)
	}
	if tr := m.TrackVia(context.Background(), "ghost", "X"); tr.Success || tr.Message != MessageServiceNotAvailable {
		t.Fatalf("unexpected track result %+v", tr)
	}
	if cr := m.CancelVia(context.Background(), "ghost", "X"); cr.Success {
		t.Fatal("expected cancel failure")
	}
	if qr := m.QuoteVia(context.Background(), "ghost", QuoteRequest{}); qr.Success {
		t.Fatal("expected quote failure")
	}
}

func TestManagerAppliesDefaultsAndRecordsMetrics(t *testing.T) {
	reg := NewRegistry()
	adapter := &stubAdapter{name: "yalidine"}
	reg.Register("yalidine", adapter)
	metrics := &stubMetrics{}
	m := NewManager(reg, metrics)

	res := m.CreateShipmentVia(context.Background(), "Yalidine", ShipmentRequest{CustomerName: "Ali"})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if adapter.lastCreate.Weight != DefaultWeightKG || adapter.lastCreate.Length != DefaultDimensionC {
		t.Fatalf("expected defaults, got %+v", adapter.lastCreate)
	}
	if adapter.lastCreate.FromWilaya != DefaultFromWilaya {
		t.Fatalf("expected default origin, got %q", adapter.lastCreate.FromWilaya)
	}

	m.QuoteVia(context.Background(), "yalidine", QuoteRequest{Weight: 3})
	if adapter.lastQuote.Weight != 3 || adapter.lastQuote.Height != DefaultDimensionC {
		t.Fatalf("unexpected quote request %+v", adapter.lastQuote)
	}

	if len(metrics.calls) != 2 {
		t.Fatalf("expected 2 metric observations, got %d", len(metrics.calls))
	}
	if metrics.calls[0] != (recordedCall{"yalidine", opCreate, true}) {
		t.Fatalf("unexpected metric %+v", metrics.calls[0])
	}
}

func TestMapStatus(t *testing.T) {
	if got, ok := MapStatus(" Delivered "); !ok || got != enums.OrderStatusDelivered {
		t.Fatalf("unexpected mapping %v %v", got, ok)
	}
	if got, ok := MapStatus("OUT_FOR_DELIVERY"); !ok || got != enums.OrderStatusOutForDelivery {
		t.Fatalf("unexpected mapping %v %v", got, ok)
	}
	if _, ok := MapStatus("lost"); ok {
		t.Fatal("expected unknown carrier status to be unmapped")
	}
}

func TestBulkTrackIsolatesFailures(t *testing.T) {
	reg := NewRegistry()
	reg.Register("yalidine", &stubAdapter{name: "yalidine", trackStatus: "in_transit"})
	orderSvc := &stubOrders{byTracking: map[string]*orders.OrderDTO{
		"A": {ID: uuid.New(), OrderStatus: enums.OrderStatusShipped, DeliveryCompanyName: strPtr("Yalidine")},
		"B": {ID: uuid.New(), OrderStatus: enums.OrderStatusShipped, DeliveryCompanyName: strPtr("Maystro")},
		"C": {ID: uuid.New(), OrderStatus: enums.OrderStatusShipped, DeliveryCompanyName: strPtr("yalidine")},
	}}
	tracker := NewTracker(NewManager(reg, nil), orderSvc, testLogger())

	res := tracker.BulkTrack(context.Background(), []string{"A", "B", "C"}, "")
	if res.Total != 3 || len(res.Results) != 3 {
		t.Fatalf("expected 3 results, got %+v", res)
	}
	if res.Successful != 2 || res.Failed != 1 {
		t.Fatalf("expected 2 successes and 1 failure, got %d/%d", res.Successful, res.Failed)
	}
	if res.Results[1].Result.Message != MessageServiceNotAvailable {
		t.Fatalf("unexpected failure message %q", res.Results[1].Result.Message)
	}
	if len(orderSvc.updates) != 2 {
		t.Fatalf("expected 2 order updates, got %d", len(orderSvc.updates))
	}
	if orderSvc.updates[0].Status != enums.OrderStatusInTransit.String() {
		t.Fatalf("unexpected status %q", orderSvc.updates[0].Status)
	}
}

func TestTrackSkipsUpdateWhenStatusUnchangedOrUnknown(t *testing.T) {
	reg := NewRegistry()
	adapter := &stubAdapter{name: "yalidine", trackStatus: "delivered"}
	reg.Register("yalidine", adapter)
	orderSvc := &stubOrders{byTracking: map[string]*orders.OrderDTO{
		"A": {ID: uuid.New(), OrderStatus: enums.OrderStatusDelivered},
	}}
	tracker := NewTracker(NewManager(reg, nil), orderSvc, testLogger())

	out := tracker.Track(context.Background(), "A", "yalidine")
	if !out.Result.Success || out.OrderUpdated {
		t.Fatalf("expected success without update, got %+v", out)
	}

	adapter.trackStatus = "at_hub"
	orderSvc.byTracking["A"].OrderStatus = enums.OrderStatusShipped
	out = tracker.Track(context.Background(), "A", "yalidine")
	if out.OrderUpdated {
		t.Fatal("expected unknown carrier status to leave the order alone")
	}
	if len(orderSvc.updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(orderSvc.updates))
	}
}

func TestTrackWithoutServiceFails(t *testing.T) {
	tracker := NewTracker(NewManager(NewRegistry(), nil), &stubOrders{}, testLogger())
	out := tracker.Track(context.Background(), "UNKNOWN", "")
	if out.Result.Success {
		t.Fatal("expected failure without service")
	}
	if out.Result.Message != messageServiceUnknown {
		t.Fatalf("unexpected message %q", out.Result.Message)
	}
}

func TestCreateForOrder(t *testing.T) {
	reg := NewRegistry()
	adapter := &stubAdapter{name: "yalidine"}
	reg.Register("yalidine", adapter)
	order := &orders.OrderDTO{
		ID:              uuid.New(),
		CustomerName:    "Yacine",
		CustomerPhone:   "+213770000000",
		CustomerAddress: "Setif",
		TotalAmount:     decimal.NewFromInt(3200),
		OrderStatus:     enums.OrderStatusConfirmed,
	}
	orderSvc := &stubOrders{byTracking: map[string]*orders.OrderDTO{"": order}}
	svc, err := NewShipmentService(NewManager(reg, nil), orderSvc, testLogger())
	if err != nil {
		t.Fatalf("NewShipmentService: %v", err)
	}

	out, err := svc.CreateForOrder(context.Background(), "yalidine", order.ID, ShipmentOptions{ToWilaya: "Sétif"})
	if err != nil {
		t.Fatalf("CreateForOrder: %v", err)
	}
	if !out.Shipment.Success || out.TrackingNumber != "TRK-yalidine" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if orderSvc.shipped[order.ID] != "TRK-yalidine" {
		t.Fatal("expected order to be marked shipped")
	}
	if !adapter.lastCreate.DeclaredValue.Equal(order.TotalAmount) {
		t.Fatal("expected declared value from order total")
	}

	adapter.fail = true
	other := uuid.New()
	orderSvc.byTracking["x"] = &orders.OrderDTO{ID: other}
	out, err = svc.CreateForOrder(context.Background(), "yalidine", other, ShipmentOptions{})
	if err != nil {
		t.Fatalf("carrier rejection must not be an error: %v", err)
	}
	if out.Shipment.Success {
		t.Fatal("expected failed shipment")
	}
	if _, ok := orderSvc.shipped[other]; ok {
		t.Fatal("failed shipment must not mark the order shipped")
	}

	if _, err := svc.CreateForOrder(context.Background(), "yalidine", uuid.New(), ShipmentOptions{}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
