package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	companysvc "github.com/angelmondragon/dzorders-backend/internal/deliverycompanies"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxBulkTracking   = 100
	maxTrackingLen    = 128
	serviceNameParam  = "service_name"
	trackingPathParam = "tracking"
)

// CarrierGateway is the slice of *carriers.Manager the delivery routes call
// directly.
type CarrierGateway interface {
	Registry() *carriers.Registry
	CancelVia(ctx context.Context, name, trackingID string) carriers.Result
	QuoteVia(ctx context.Context, name string, req carriers.QuoteRequest) carriers.CostResult
}

type ShipmentCreator interface {
	CreateForOrder(ctx context.Context, service string, orderID uuid.UUID, opts carriers.ShipmentOptions) (*carriers.ShipmentOutcome, error)
}

type ShipmentTracker interface {
	Track(ctx context.Context, trackingID, serviceOverride string) carriers.TrackOutcome
	BulkTrack(ctx context.Context, trackingIDs []string, serviceOverride string) carriers.BulkTrackResult
}

type activeCompanyLister interface {
	ListActive(ctx context.Context) ([]companysvc.CompanyDTO, error)
}

type deliveryService struct {
	Name        string     `json:"service_name"`
	Registered  bool       `json:"registered"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	CompanyName string     `json:"company_name,omitempty"`
}

type deliveryServices struct {
	Available []string          `json:"available_services"`
	Services  []deliveryService `json:"services"`
}

// DeliveryServices lists the registered carriers joined to the active
// delivery companies by lowercased name. Active companies without a carrier
// integration are listed as unregistered.
func DeliveryServices(gateway CarrierGateway, companies activeCompanyLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil || companies == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery"))
			return
		}
		names := gateway.Registry().Names()
		active, err := companies.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		byName := make(map[string]companysvc.CompanyDTO, len(active))
		for _, c := range active {
			byName[strings.ToLower(strings.TrimSpace(c.CompanyName))] = c
		}

		out := deliveryServices{Available: names, Services: make([]deliveryService, 0, len(names)+len(active))}
		seen := make(map[string]struct{}, len(names))
		for _, name := range names {
			entry := deliveryService{Name: name, Registered: true}
			if c, ok := byName[name]; ok {
				id := c.ID
				entry.CompanyID = &id
				entry.CompanyName = c.CompanyName
			}
			seen[name] = struct{}{}
			out.Services = append(out.Services, entry)
		}
		for _, c := range active {
			key := strings.ToLower(strings.TrimSpace(c.CompanyName))
			if _, ok := seen[key]; ok {
				continue
			}
			id := c.ID
			out.Services = append(out.Services, deliveryService{Name: key, CompanyID: &id, CompanyName: c.CompanyName})
		}
		responses.WriteSuccess(w, out)
	}
}

type createShipmentRequest struct {
	OrderID           string  `json:"order_id" validate:"required"`
	ServiceName       string  `json:"service_name" validate:"required"`
	DeliveryCompanyID *string `json:"delivery_company_id,omitempty"`
	Weight            float64 `json:"weight,omitempty" validate:"gte=0"`
	Length            float64 `json:"length,omitempty" validate:"gte=0"`
	Width             float64 `json:"width,omitempty" validate:"gte=0"`
	Height            float64 `json:"height,omitempty" validate:"gte=0"`
	Insurance         bool    `json:"insurance,omitempty"`
	FreeShipping      bool    `json:"free_shipping,omitempty"`
	StopDesk          bool    `json:"stop_desk,omitempty"`
	FromWilaya        string  `json:"from_wilaya,omitempty"`
	ToWilaya          string  `json:"to_wilaya,omitempty"`
	ToCommune         string  `json:"to_commune,omitempty"`
	CustomerCity      string  `json:"customer_city,omitempty"`
	CustomerEmail     string  `json:"customer_email,omitempty"`
	SenderName        string  `json:"sender_name,omitempty"`
	SenderCompany     string  `json:"sender_company,omitempty"`
	SenderPhone       string  `json:"sender_phone,omitempty"`
	SenderAddress     string  `json:"sender_address,omitempty"`
	SenderCity        string  `json:"sender_city,omitempty"`
	SenderEmail       string  `json:"sender_email,omitempty"`
	Comments          string  `json:"comments,omitempty"`
}

func (p createShipmentRequest) options() (carriers.ShipmentOptions, error) {
	companyID, err := parseOptionalUUID("delivery_company_id", p.DeliveryCompanyID)
	if err != nil {
		return carriers.ShipmentOptions{}, err
	}
	if companyID != nil && *companyID == uuid.Nil {
		companyID = nil
	}
	return carriers.ShipmentOptions{
		DeliveryCompanyID: companyID,
		Weight:            p.Weight,
		Length:            p.Length,
		Width:             p.Width,
		Height:            p.Height,
		Insurance:         p.Insurance,
		FreeShipping:      p.FreeShipping,
		StopDesk:          p.StopDesk,
		FromWilaya:        validators.SanitizeString(p.FromWilaya, maxNameLen),
		ToWilaya:          validators.SanitizeString(p.ToWilaya, maxNameLen),
		ToCommune:         validators.SanitizeString(p.ToCommune, maxNameLen),
		CustomerCity:      validators.SanitizeString(p.CustomerCity, maxNameLen),
		CustomerEmail:     validators.SanitizeString(p.CustomerEmail, maxNameLen),
		SenderName:        validators.SanitizeString(p.SenderName, maxNameLen),
		SenderCompany:     validators.SanitizeString(p.SenderCompany, maxNameLen),
		SenderPhone:       validators.SanitizeString(p.SenderPhone, maxPhoneLen),
		SenderAddress:     validators.SanitizeString(p.SenderAddress, maxNoteLen),
		SenderCity:        validators.SanitizeString(p.SenderCity, maxNameLen),
		SenderEmail:       validators.SanitizeString(p.SenderEmail, maxNameLen),
		Comments:          validators.SanitizeString(p.Comments, maxNoteLen),
	}, nil
}

// CreateShipment books a parcel for an existing order. A carrier refusal is
// answered with 400 and nothing about the order changes.
func CreateShipment(svc ShipmentCreator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("shipment"))
			return
		}
		var payload createShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDField("order_id", payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := payload.options()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcome, err := svc.CreateForOrder(r.Context(), strings.TrimSpace(payload.ServiceName), orderID, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !outcome.Shipment.Success {
			responses.WriteError(r.Context(), logg, w, carrierFailure(outcome.Shipment.Result, map[string]any{
				"order_id":      orderID.String(),
				"shipment_data": outcome.Shipment,
			}))
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "shipment created", outcome)
	}
}

func TrackShipment(svc ShipmentTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("tracking"))
			return
		}
		tracking, err := validators.ParseStringParam(r, trackingPathParam, maxTrackingLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		service := validators.SanitizeString(r.URL.Query().Get(serviceNameParam), maxNameLen)
		outcome := svc.Track(r.Context(), tracking, service)
		if !outcome.Result.Success {
			responses.WriteError(r.Context(), logg, w, carrierFailure(outcome.Result.Result, map[string]any{
				"tracking_number": tracking,
				"service_name":    outcome.ServiceName,
			}))
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

type bulkTrackRequest struct {
	TrackingNumbers []string `json:"tracking_numbers" validate:"required,min=1"`
	ServiceName     string   `json:"service_name,omitempty"`
}

// BulkTrackShipments always answers 200; per shipment failures are inside
// the result.
func BulkTrackShipments(svc ShipmentTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("tracking"))
			return
		}
		var payload bulkTrackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(payload.TrackingNumbers) > maxBulkTracking {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many tracking numbers in one request").
				WithDetails(map[string]any{"field": "tracking_numbers", "max": maxBulkTracking}))
			return
		}
		ids := make([]string, 0, len(payload.TrackingNumbers))
		for _, id := range payload.TrackingNumbers {
			ids = append(ids, validators.SanitizeString(id, maxTrackingLen))
		}
		result := svc.BulkTrack(r.Context(), ids, validators.SanitizeString(payload.ServiceName, maxNameLen))
		responses.WriteSuccess(w, result)
	}
}

type calculateCostRequest struct {
	ServiceName        string           `json:"service_name" validate:"required"`
	FromWilaya         string           `json:"from_wilaya,omitempty"`
	ToWilaya           string           `json:"to_wilaya,omitempty"`
	Weight             float64          `json:"weight,omitempty" validate:"gte=0"`
	Length             float64          `json:"length,omitempty" validate:"gte=0"`
	Width              float64          `json:"width,omitempty" validate:"gte=0"`
	Height             float64          `json:"height,omitempty" validate:"gte=0"`
	DeclaredValue      *decimal.Decimal `json:"declared_value,omitempty"`
	SenderAddress      string           `json:"sender_address,omitempty"`
	SenderCity         string           `json:"sender_city,omitempty"`
	CustomerAddress    string           `json:"customer_address,omitempty"`
	CustomerCity       string           `json:"customer_city,omitempty"`
	ProductDescription string           `json:"product_description,omitempty"`
}

func CalculateShippingCost(gateway CarrierGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery"))
			return
		}
		var payload calculateCostRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req := carriers.QuoteRequest{
			FromWilaya:         validators.SanitizeString(payload.FromWilaya, maxNameLen),
			ToWilaya:           validators.SanitizeString(payload.ToWilaya, maxNameLen),
			Weight:             payload.Weight,
			Length:             payload.Length,
			Width:              payload.Width,
			Height:             payload.Height,
			SenderAddress:      validators.SanitizeString(payload.SenderAddress, maxNoteLen),
			SenderCity:         validators.SanitizeString(payload.SenderCity, maxNameLen),
			CustomerAddress:    validators.SanitizeString(payload.CustomerAddress, maxNoteLen),
			CustomerCity:       validators.SanitizeString(payload.CustomerCity, maxNameLen),
			ProductDescription: validators.SanitizeString(payload.ProductDescription, maxNoteLen),
		}
		if payload.DeclaredValue != nil {
			req.DeclaredValue = *payload.DeclaredValue
		}
		service := strings.TrimSpace(payload.ServiceName)
		result := gateway.QuoteVia(r.Context(), service, req)
		if !result.Success {
			responses.WriteError(r.Context(), logg, w, carrierFailure(result.Result, map[string]any{"service_name": service}))
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CancelShipment cancels a parcel at the named carrier. The order itself is
// left alone; cancelling the order is a separate status change.
func CancelShipment(gateway CarrierGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery"))
			return
		}
		tracking, err := validators.ParseStringParam(r, trackingPathParam, maxTrackingLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		service := validators.SanitizeString(r.URL.Query().Get(serviceNameParam), maxNameLen)
		if service == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "service_name is required").
				WithDetails(map[string]any{"field": serviceNameParam}))
			return
		}
		result := gateway.CancelVia(r.Context(), service, tracking)
		if !result.Success {
			responses.WriteError(r.Context(), logg, w, carrierFailure(result, map[string]any{
				"tracking_number": tracking,
				"service_name":    service,
			}))
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "shipment cancelled", result)
	}
}

func carrierFailure(res carriers.Result, details map[string]any) error {
	msg := strings.TrimSpace(res.Message)
	if msg == "" {
		msg = "carrier request failed"
	}
	if res.StatusCode != 0 {
		details["status_code"] = res.StatusCode
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}
