// Package carriers defines the delivery carrier contract and the pieces that
// route calls to a registered carrier by name.
package carriers

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	DefaultWeightKG   = 1.0
	DefaultDimensionC = 10.0
	DefaultFromWilaya = "الجزائر"
	DefaultSenderCity = "Algiers"

	MessageServiceNotAvailable = "service not available"
)

// Adapter is implemented once per carrier. Every method reports failures in
// its result, including transport faults, and never returns a Go error.
type Adapter interface {
	Name() string
	CreateShipment(ctx context.Context, req ShipmentRequest) ShipmentResult
	TrackShipment(ctx context.Context, trackingID string) TrackingResult
	CancelShipment(ctx context.Context, trackingID string) Result
	GetShippingCost(ctx context.Context, req QuoteRequest) CostResult
}

// Result is embedded in every carrier answer.
type Result struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}

// Failure builds an unsuccessful result.
func Failure(message string) Result {
	return Result{Success: false, Message: message}
}

// ShipmentRequest is the carrier-neutral shipment description.
type ShipmentRequest struct {
	OrderID            string          `json:"order_id"`
	CustomerName       string          `json:"customer_name"`
	CustomerPhone      string          `json:"customer_phone"`
	CustomerAddress    string          `json:"customer_address"`
	CustomerCity       string          `json:"customer_city,omitempty"`
	CustomerEmail      string          `json:"customer_email,omitempty"`
	ProductDescription string          `json:"product_description,omitempty"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	DeclaredValue      decimal.Decimal `json:"declared_value"`
	Weight             float64         `json:"weight"`
	Length             float64         `json:"length"`
	Width              float64         `json:"width"`
	Height             float64         `json:"height"`
	Insurance          bool            `json:"insurance"`
	FreeShipping       bool            `json:"free_shipping"`
	StopDesk           bool            `json:"stop_desk"`
	FromWilaya         string          `json:"from_wilaya"`
	ToWilaya           string          `json:"to_wilaya,omitempty"`
	ToCommune          string          `json:"to_commune,omitempty"`
	SenderName         string          `json:"sender_name,omitempty"`
	SenderCompany      string          `json:"sender_company,omitempty"`
	SenderPhone        string          `json:"sender_phone,omitempty"`
	SenderAddress      string          `json:"sender_address,omitempty"`
	SenderCity         string          `json:"sender_city,omitempty"`
	SenderEmail        string          `json:"sender_email,omitempty"`
	Comments           string          `json:"comments,omitempty"`
}

// WithDefaults fills the package size and origin when they were not given.
func (r ShipmentRequest) WithDefaults() ShipmentRequest {
	r.Weight = orDefault(r.Weight, DefaultWeightKG)
	r.Length = orDefault(r.Length, DefaultDimensionC)
	r.Width = orDefault(r.Width, DefaultDimensionC)
	r.Height = orDefault(r.Height, DefaultDimensionC)
	if r.FromWilaya == "" {
		r.FromWilaya = DefaultFromWilaya
	}
	if r.SenderCity == "" {
		r.SenderCity = DefaultSenderCity
	}
	return r
}

type ShipmentResult struct {
	Result
	TrackingNumber string          `json:"tracking_number,omitempty"`
	ShipmentID     string          `json:"shipment_id,omitempty"`
	Reference      string          `json:"reference,omitempty"`
	LabelURL       string          `json:"label_url,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

type TrackingResult struct {
	Result
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Status         string          `json:"status,omitempty"`
	LastUpdate     string          `json:"last_update,omitempty"`
	Location       string          `json:"location,omitempty"`
	History        json.RawMessage `json:"tracking_history,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// QuoteRequest asks a carrier for the price of a prospective shipment.
type QuoteRequest struct {
	FromWilaya         string          `json:"from_wilaya"`
	ToWilaya           string          `json:"to_wilaya,omitempty"`
	Weight             float64         `json:"weight"`
	Length             float64         `json:"length"`
	Width              float64         `json:"width"`
	Height             float64         `json:"height"`
	DeclaredValue      decimal.Decimal `json:"declared_value"`
	SenderAddress      string          `json:"sender_address,omitempty"`
	SenderCity         string          `json:"sender_city,omitempty"`
	CustomerAddress    string          `json:"customer_address,omitempty"`
	CustomerCity       string          `json:"customer_city,omitempty"`
	ProductDescription string          `json:"product_description,omitempty"`
}

func (r QuoteRequest) WithDefaults() QuoteRequest {
	r.Weight = orDefault(r.Weight, DefaultWeightKG)
	r.Length = orDefault(r.Length, DefaultDimensionC)
	r.Width = orDefault(r.Width, DefaultDimensionC)
	r.Height = orDefault(r.Height, DefaultDimensionC)
	if r.FromWilaya == "" {
		r.FromWilaya = DefaultFromWilaya
	}
	if r.SenderCity == "" {
		r.SenderCity = DefaultSenderCity
	}
	return r
}

type CostResult struct {
	Result
	Currency     string          `json:"currency,omitempty"`
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	ReturnCost   decimal.Decimal `json:"return_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Data         json.RawMessage `json:"data,omitempty"`
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
