package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	companysvc "github.com/angelmondragon/dzorders-backend/internal/deliverycompanies"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
)

type stubGateway struct {
	registry   *carriers.Registry
	cancelled  []string
	quoteReq   carriers.QuoteRequest
	quoteReply carriers.CostResult
	cancelOK   bool
}

func (g *stubGateway) Registry() *carriers.Registry { return g.registry }

func (g *stubGateway) CancelVia(ctx context.Context, name, trackingID string) carriers.Result {
	g.cancelled = append(g.cancelled, name+":"+trackingID)
	if !g.cancelOK {
		return carriers.Failure("cannot cancel a delivered parcel")
	}
	return carriers.Result{Success: true, Message: "cancelled", ServiceName: name}
}

func (g *stubGateway) QuoteVia(ctx context.Context, name string, req carriers.QuoteRequest) carriers.CostResult {
	g.quoteReq = req
	return g.quoteReply
}

type namedAdapter struct {
	carriers.Adapter
	name string
}

func (a namedAdapter) Name() string { return a.name }

type stubCompanies struct {
	active []companysvc.CompanyDTO
}

func (s stubCompanies) ListActive(ctx context.Context) ([]companysvc.CompanyDTO, error) {
	return s.active, nil
}

type stubShipments struct {
	outcome *carriers.ShipmentOutcome
	err     error
	service string
	opts    carriers.ShipmentOptions
}

func (s *stubShipments) CreateForOrder(ctx context.Context, service string, orderID uuid.UUID, opts carriers.ShipmentOptions) (*carriers.ShipmentOutcome, error) {
	s.service = service
	s.opts = opts
	return s.outcome, s.err
}

type stubTracker struct {
	outcome carriers.TrackOutcome
	ids     []string
}

func (s *stubTracker) Track(ctx context.Context, trackingID, serviceOverride string) carriers.TrackOutcome {
	return s.outcome
}

func (s *stubTracker) BulkTrack(ctx context.Context, trackingIDs []string, serviceOverride string) carriers.BulkTrackResult {
	s.ids = trackingIDs
	return carriers.BulkTrackResult{Total: len(trackingIDs), Successful: len(trackingIDs)}
}

func TestDeliveryServicesJoinsCompanies(t *testing.T) {
	registry := carriers.NewRegistry()
	registry.Register("yalidine", namedAdapter{name: "yalidine"})
	registry.Register("aramex", namedAdapter{name: "aramex"})
	yalidineID := uuid.New()
	companies := stubCompanies{active: []companysvc.CompanyDTO{
		{ID: yalidineID, CompanyName: "Yalidine"},
		{ID: uuid.New(), CompanyName: "Local Courier"},
	}}

	rec := httptest.NewRecorder()
	DeliveryServices(&stubGateway{registry: registry}, companies, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out deliveryServices
	decodeData(t, rec, &out)
	if len(out.Available) != 2 || out.Available[0] != "aramex" || out.Available[1] != "yalidine" {
		t.Fatalf("unexpected available services %v", out.Available)
	}
	if len(out.Services) != 3 {
		t.Fatalf("expected 3 entries, got %+v", out.Services)
	}
	byName := map[string]deliveryService{}
	for _, s := range out.Services {
		byName[s.Name] = s
	}
	if y := byName["yalidine"]; !y.Registered || y.CompanyID == nil || *y.CompanyID != yalidineID {
		t.Fatalf("expected yalidine linked to its company, got %+v", y)
	}
	if l := byName["local courier"]; l.Registered {
		t.Fatalf("expected local courier unregistered, got %+v", l)
	}
}

func TestCreateShipmentRefusedByCarrier(t *testing.T) {
	orderID := uuid.New()
	shipments := &stubShipments{outcome: &carriers.ShipmentOutcome{
		OrderID:  orderID,
		Shipment: carriers.ShipmentResult{Result: carriers.Result{Success: false, Message: "wilaya not served", StatusCode: 422}},
	}}
	body := `{"order_id":"` + orderID.String() + `","service_name":"yalidine","to_wilaya":"Tamanrasset","stop_desk":true}`
	rec := httptest.NewRecorder()
	CreateShipment(shipments, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Message != "wilaya not served" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
	if env.Error.Details["status_code"] != float64(422) {
		t.Fatalf("expected carrier status in details, got %+v", env.Error.Details)
	}
	if shipments.service != "yalidine" || !shipments.opts.StopDesk || shipments.opts.ToWilaya != "Tamanrasset" {
		t.Fatalf("unexpected forwarded options %q %+v", shipments.service, shipments.opts)
	}
}

func TestCreateShipmentSuccess(t *testing.T) {
	orderID := uuid.New()
	shipments := &stubShipments{outcome: &carriers.ShipmentOutcome{
		OrderID:        orderID,
		TrackingNumber: "YAL-123",
		Shipment:       carriers.ShipmentResult{Result: carriers.Result{Success: true}, TrackingNumber: "YAL-123"},
	}}
	body := `{"order_id":"` + orderID.String() + `","service_name":"yalidine"}`
	rec := httptest.NewRecorder()
	CreateShipment(shipments, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out carriers.ShipmentOutcome
	decodeData(t, rec, &out)
	if out.TrackingNumber != "YAL-123" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestCreateShipmentUnknownOrder(t *testing.T) {
	shipments := &stubShipments{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	body := `{"order_id":"` + uuid.NewString() + `","service_name":"yalidine"}`
	rec := httptest.NewRecorder()
	CreateShipment(shipments, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTrackShipmentFailure(t *testing.T) {
	tracker := &stubTracker{outcome: carriers.TrackOutcome{
		TrackingNumber: "X1",
		Result:         carriers.TrackingResult{Result: carriers.Failure(carriers.MessageServiceNotAvailable)},
	}}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/?service_name=ghost", nil), "tracking", "X1")
	rec := httptest.NewRecorder()
	TrackShipment(tracker, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBulkTrackLimit(t *testing.T) {
	tracker := &stubTracker{}
	ids := make([]string, maxBulkTracking+1)
	for i := range ids {
		ids[i] = `"T` + uuid.NewString()[:8] + `"`
	}
	body := `{"tracking_numbers":[` + strings.Join(ids, ",") + `]}`
	rec := httptest.NewRecorder()
	BulkTrackShipments(tracker, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 over the limit, got %d", rec.Code)
	}

	body = `{"tracking_numbers":[" A1 ","B2"],"service_name":"yalidine"}`
	rec = httptest.NewRecorder()
	BulkTrackShipments(tracker, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(tracker.ids) != 2 || tracker.ids[0] != "A1" {
		t.Fatalf("unexpected ids %v", tracker.ids)
	}
}

func TestCancelShipmentRequiresServiceName(t *testing.T) {
	gateway := &stubGateway{registry: carriers.NewRegistry(), cancelOK: true}

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), "tracking", "T1")
	rec := httptest.NewRecorder()
	CancelShipment(gateway, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without service_name, got %d", rec.Code)
	}

	req = withURLParams(httptest.NewRequest(http.MethodPost, "/?service_name=aramex", nil), "tracking", "T1")
	rec = httptest.NewRecorder()
	CancelShipment(gateway, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(gateway.cancelled) != 1 || gateway.cancelled[0] != "aramex:T1" {
		t.Fatalf("unexpected cancel calls %v", gateway.cancelled)
	}
}

func TestCalculateShippingCost(t *testing.T) {
	gateway := &stubGateway{quoteReply: carriers.CostResult{Result: carriers.Result{Success: true}, Currency: "DZD"}}
	body := `{"service_name":"yalidine","to_wilaya":"Oran","weight":2.5,"declared_value":"4000"}`
	rec := httptest.NewRecorder()
	CalculateShippingCost(gateway, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gateway.quoteReq.ToWilaya != "Oran" || gateway.quoteReq.Weight != 2.5 || gateway.quoteReq.DeclaredValue.String() != "4000" {
		t.Fatalf("unexpected quote request %+v", gateway.quoteReq)
	}
}
