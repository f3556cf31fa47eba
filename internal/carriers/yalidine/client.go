// Package yalidine talks to the Yalidine Express parcel API.
package yalidine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	"github.com/shopspring/decimal"
)

const (
	Name = "yalidine"

	defaultBaseURL              = "https://api.yalidine.app/v1"
	defaultTimeout              = 30 * time.Second
	responseBodyReadLimit int64 = 4096
)

var errAPIKeyRequired = errors.New("yalidine api key is required")

// Client implements carriers.Adapter against Yalidine.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}
	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) Name() string { return Name }

type parcelRequest struct {
	FromWilayaName   string  `json:"from_wilaya_name"`
	ToWilayaName     string  `json:"to_wilaya_name"`
	ToCommuneName    string  `json:"to_commune_name"`
	RecipientName    string  `json:"recipient_name"`
	RecipientPhone   string  `json:"recipient_phone"`
	RecipientAddress string  `json:"recipient_address"`
	ProductList      string  `json:"product_list"`
	Price            float64 `json:"price"`
	DoInsurance      bool    `json:"do_insurance"`
	DeclaredValue    float64 `json:"declared_value"`
	Height           float64 `json:"height"`
	Width            float64 `json:"width"`
	Length           float64 `json:"length"`
	Weight           float64 `json:"weight"`
	FreeShipping     bool    `json:"freeshipping"`
	IsStopDesk       bool    `json:"is_stopdesk"`
}

type parcelResponse struct {
	Tracking string          `json:"tracking"`
	ID       json.RawMessage `json:"id"`
}

type trackingResponse struct {
	Status          string          `json:"status"`
	LastUpdate      string          `json:"last_update"`
	TrackingHistory json.RawMessage `json:"tracking_history"`
}

type feesRequest struct {
	FromWilayaName string  `json:"from_wilaya_name"`
	ToWilayaName   string  `json:"to_wilaya_name"`
	Weight         float64 `json:"weight"`
	DeclaredValue  float64 `json:"declared_value"`
}

type feesResponse struct {
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	ReturnCost   decimal.Decimal `json:"return_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

func (c *Client) CreateShipment(ctx context.Context, req carriers.ShipmentRequest) carriers.ShipmentResult {
	payload := parcelRequest{
		FromWilayaName:   req.FromWilaya,
		ToWilayaName:     req.ToWilaya,
		ToCommuneName:    req.ToCommune,
		RecipientName:    req.CustomerName,
		RecipientPhone:   req.CustomerPhone,
		RecipientAddress: req.CustomerAddress,
		ProductList:      req.ProductDescription,
		Price:            req.TotalAmount.InexactFloat64(),
		DoInsurance:      req.Insurance,
		DeclaredValue:    req.DeclaredValue.InexactFloat64(),
		Height:           req.Height,
		Width:            req.Width,
		Length:           req.Length,
		Weight:           req.Weight,
		FreeShipping:     req.FreeShipping,
		IsStopDesk:       req.StopDesk,
	}
	status, body, err := c.do(ctx, http.MethodPost, "/parcels/", payload)
	if err != nil {
		return carriers.ShipmentResult{Result: carriers.Failure(fmt.Sprintf("create shipment: %v", err))}
	}
	if status != http.StatusCreated {
		return carriers.ShipmentResult{Result: httpFailure("create shipment", status, body)}
	}

	var decoded parcelResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return carriers.ShipmentResult{Result: carriers.Failure(fmt.Sprintf("decode shipment response: %v", err))}
	}
	return carriers.ShipmentResult{
		Result:         carriers.Result{Success: true, Message: "shipment created", StatusCode: status},
		TrackingNumber: decoded.Tracking,
		ShipmentID:     rawID(decoded.ID),
		Data:           json.RawMessage(body),
	}
}

func (c *Client) TrackShipment(ctx context.Context, trackingID string) carriers.TrackingResult {
	path := "/parcels/" + url.PathEscape(trackingID) + "/tracking"
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return carriers.TrackingResult{Result: carriers.Failure(fmt.Sprintf("track shipment: %v", err)), TrackingNumber: trackingID}
	}
	if status != http.StatusOK {
		return carriers.TrackingResult{Result: httpFailure("track shipment", status, body), TrackingNumber: trackingID}
	}

	var decoded trackingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return carriers.TrackingResult{Result: carriers.Failure(fmt.Sprintf("decode tracking response: %v", err)), TrackingNumber: trackingID}
	}
	history := decoded.TrackingHistory
	if len(history) == 0 || string(history) == "null" {
		history = json.RawMessage("[]")
	}
	return carriers.TrackingResult{
		Result:         carriers.Result{Success: true, StatusCode: status},
		TrackingNumber: trackingID,
		Status:         decoded.Status,
		LastUpdate:     decoded.LastUpdate,
		History:        history,
		Data:           json.RawMessage(body),
	}
}

func (c *Client) CancelShipment(ctx context.Context, trackingID string) carriers.Result {
	status, body, err := c.do(ctx, http.MethodDelete, "/parcels/"+url.PathEscape(trackingID), nil)
	if err != nil {
		return carriers.Failure(fmt.Sprintf("cancel shipment: %v", err))
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return httpFailure("cancel shipment", status, body)
	}
	return carriers.Result{Success: true, Message: "shipment cancelled", StatusCode: status}
}

func (c *Client) GetShippingCost(ctx context.Context, req carriers.QuoteRequest) carriers.CostResult {
	payload := feesRequest{
		FromWilayaName: req.FromWilaya,
		ToWilayaName:   req.ToWilaya,
		Weight:         req.Weight,
		DeclaredValue:  req.DeclaredValue.InexactFloat64(),
	}
	status, body, err := c.do(ctx, http.MethodPost, "/deliveryfees/", payload)
	if err != nil {
		return carriers.CostResult{Result: carriers.Failure(fmt.Sprintf("shipping cost: %v", err))}
	}
	if status != http.StatusOK {
		return carriers.CostResult{Result: httpFailure("shipping cost", status, body)}
	}

	var decoded feesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return carriers.CostResult{Result: carriers.Failure(fmt.Sprintf("decode fees response: %v", err))}
	}
	return carriers.CostResult{
		Result:       carriers.Result{Success: true, StatusCode: status},
		Currency:     "DZD",
		DeliveryCost: decoded.DeliveryCost,
		ReturnCost:   decoded.ReturnCost,
		TotalCost:    decoded.TotalCost,
		Data:         json.RawMessage(body),
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func httpFailure(op string, status int, body []byte) carriers.Result {
	snippet := body
	if int64(len(snippet)) > responseBodyReadLimit {
		snippet = snippet[:responseBodyReadLimit]
	}
	return carriers.Result{
		Success:    false,
		Message:    fmt.Sprintf("%s failed: %s", op, strings.TrimSpace(string(snippet))),
		StatusCode: status,
	}
}

// rawID accepts both numeric and string ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
