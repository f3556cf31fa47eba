// Package aramex talks to the Aramex JSON shipping service.
package aramex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/internal/carriers"
	"github.com/shopspring/decimal"
)

const (
	Name = "aramex"

	defaultBaseURL              = "https://ws.aramex.net/ShippingAPI.V2/Shipping/Service_1_0.svc"
	defaultTimeout              = 60 * time.Second
	defaultCurrency             = "DZD"
	clientVersion               = "v1.0"
	clientSource                = 24
	labelReportID               = 9201
	responseBodyReadLimit int64 = 4096
)

var errCredentialsRequired = errors.New("aramex username and password are required")

// Credentials identify the shipper account.
type Credentials struct {
	UserName           string
	Password           string
	AccountNumber      string
	AccountPin         string
	AccountEntity      string
	AccountCountryCode string
}

// Client implements carriers.Adapter against Aramex.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if strings.TrimSpace(creds.UserName) == "" || strings.TrimSpace(creds.Password) == "" {
		return nil, errCredentialsRequired
	}
	if creds.AccountEntity == "" {
		creds.AccountEntity = "ALG"
	}
	if creds.AccountCountryCode == "" {
		creds.AccountCountryCode = "DZ"
	}
	client := &Client{
		creds:      creds,
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

type clientInfo struct {
	UserName           string `json:"UserName"`
	Password           string `json:"Password"`
	Version            string `json:"Version"`
	AccountNumber      string `json:"AccountNumber"`
	AccountPin         string `json:"AccountPin"`
	AccountEntity      string `json:"AccountEntity"`
	AccountCountryCode string `json:"AccountCountryCode"`
	Source             int    `json:"Source"`
}

type address struct {
	Line1       string `json:"Line1"`
	City        string `json:"City"`
	CountryCode string `json:"CountryCode"`
}

type contact struct {
	PersonName   string `json:"PersonName"`
	CompanyName  string `json:"CompanyName"`
	PhoneNumber1 string `json:"PhoneNumber1"`
	CellPhone    string `json:"CellPhone"`
	EmailAddress string `json:"EmailAddress"`
}

type party struct {
	AccountNumber string  `json:"AccountNumber"`
	PartyAddress  address `json:"PartyAddress"`
	Contact       contact `json:"Contact"`
}

type dimensions struct {
	Length float64 `json:"Length"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
	Unit   string  `json:"Unit"`
}

type weight struct {
	Value float64 `json:"Value"`
	Unit  string  `json:"Unit"`
}

type shipmentDetails struct {
	Dimensions         dimensions `json:"Dimensions"`
	ActualWeight       weight     `json:"ActualWeight"`
	ProductGroup       string     `json:"ProductGroup"`
	ProductType        string     `json:"ProductType"`
	PaymentType        string     `json:"PaymentType"`
	NumberOfPieces     int        `json:"NumberOfPieces"`
	DescriptionOfGoods string     `json:"DescriptionOfGoods"`
	GoodsOriginCountry string     `json:"GoodsOriginCountry"`
}

type shipment struct {
	Reference1     string          `json:"Reference1"`
	Shipper        party           `json:"Shipper"`
	Consignee      party           `json:"Consignee"`
	Comments       string          `json:"Comments"`
	PickupLocation string          `json:"PickupLocation"`
	Details        shipmentDetails `json:"Details"`
}

type labelInfo struct {
	ReportID   int    `json:"ReportID"`
	ReportType string `json:"ReportType"`
}

type createRequest struct {
	ClientInfo clientInfo `json:"ClientInfo"`
	Shipments  []shipment `json:"Shipments"`
	LabelInfo  labelInfo  `json:"LabelInfo"`
}

type trackRequest struct {
	ClientInfo                clientInfo `json:"ClientInfo"`
	Shipments                 []string   `json:"Shipments"`
	GetLastTrackingUpdateOnly bool       `json:"GetLastTrackingUpdateOnly"`
}

type rateRequest struct {
	ClientInfo         clientInfo      `json:"ClientInfo"`
	OriginAddress      address         `json:"OriginAddress"`
	DestinationAddress address         `json:"DestinationAddress"`
	ShipmentDetails    shipmentDetails `json:"ShipmentDetails"`
}

type notification struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// envelope is the part every Aramex answer shares. A missing HasErrors is
// treated as an error.
type envelope struct {
	HasErrors     *bool          `json:"HasErrors"`
	Notifications []notification `json:"Notifications"`
}

func (e envelope) failed() bool {
	return e.HasErrors == nil || *e.HasErrors
}

func (e envelope) message(op string) string {
	parts := make([]string, 0, len(e.Notifications))
	for _, n := range e.Notifications {
		text := strings.TrimSpace(n.Message)
		if n.Code != "" {
			text = n.Code + ": " + text
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return op + " rejected by aramex"
	}
	return op + " rejected by aramex: " + strings.Join(parts, "; ")
}

type createResponse struct {
	envelope
	Shipments []struct {
		ID         string `json:"ID"`
		Reference1 string `json:"Reference1"`
	} `json:"Shipments"`
	LabelURL string `json:"LabelURL"`
}

type trackResponse struct {
	envelope
	TrackingResults []struct {
		UpdateDescription string `json:"UpdateDescription"`
		UpdateDateTime    string `json:"UpdateDateTime"`
		UpdateLocation    string `json:"UpdateLocation"`
	} `json:"TrackingResults"`
}

type rateResponse struct {
	envelope
	TotalAmount struct {
		CurrencyCode string          `json:"CurrencyCode"`
		Value        decimal.Decimal `json:"Value"`
	} `json:"TotalAmount"`
}

func (c *Client) CreateShipment(ctx context.Context, req carriers.ShipmentRequest) carriers.ShipmentResult {
	payload := createRequest{
		ClientInfo: c.clientInfo(),
		Shipments: []shipment{{
			Reference1: req.OrderID,
			Shipper: party{
				AccountNumber: c.creds.AccountNumber,
				PartyAddress:  address{Line1: req.SenderAddress, City: req.SenderCity, CountryCode: c.creds.AccountCountryCode},
				Contact: contact{
					PersonName:   req.SenderName,
					CompanyName:  req.SenderCompany,
					PhoneNumber1: req.SenderPhone,
					CellPhone:    req.SenderPhone,
					EmailAddress: req.SenderEmail,
				},
			},
			Consignee: party{
				PartyAddress: address{Line1: req.CustomerAddress, City: req.CustomerCity, CountryCode: c.creds.AccountCountryCode},
				Contact: contact{
					PersonName:   req.CustomerName,
					PhoneNumber1: req.CustomerPhone,
					CellPhone:    req.CustomerPhone,
					EmailAddress: req.CustomerEmail,
				},
			},
			Comments:       req.Comments,
			PickupLocation: "Reception",
			Details:        c.details(req.Length, req.Width, req.Height, req.Weight, req.ProductDescription),
		}},
		LabelInfo: labelInfo{ReportID: labelReportID, ReportType: "URL"},
	}

	status, body, err := c.post(ctx, "/json/CreateShipments", payload)
	if err != nil {
		return carriers.ShipmentResult{Result: carriers.Failure(fmt.Sprintf("create shipment: %v", err))}
	}
	if status != http.StatusOK {
		return carriers.ShipmentResult{Result: httpFailure("create shipment", status, body)}
	}

	var decoded createResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return carriers.ShipmentResult{Result: carriers.Failure(fmt.Sprintf("decode shipment response: %v", err))}
	}
	if decoded.failed() {
		return carriers.ShipmentResult{
			Result: carriers.Result{Success: false, Message: decoded.message("create shipment"), StatusCode: status},
			Data:   json.RawMessage(body),
		}
	}

	out := carriers.ShipmentResult{
		Result:   carriers.Result{Success: true, Message: "shipment created", StatusCode: status},
		LabelURL: decoded.LabelURL,
		Data:     json.RawMessage(body),
	}
	if len(decoded.Shipments) > 0 {
		out.TrackingNumber = decoded.Shipments[0].ID
		out.ShipmentID = decoded.Shipments[0].ID
		out.Reference = decoded.Shipments[0].Reference1
	}
	return out
}

func (c *Client) TrackShipment(ctx context.Context, trackingID string) carriers.TrackingResult {
	payload := trackRequest{ClientInfo: c.clientInfo(), Shipments: []string{trackingID}}
	status, body, err := c.post(ctx, "/json/TrackShipments", payload)
	if err != nil {
		return carriers.TrackingResult{Result: carriers.Failure(fmt.Sprintf("track shipment: %v", err)), TrackingNumber: trackingID}
	}
	if status != http.StatusOK {
		return carriers.TrackingResult{Result: httpFailure("track shipment", status, body), TrackingNumber: trackingID}
	}

	var decoded trackResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return carriers.TrackingResult{Result: carriers.Failure(fmt.Sprintf("decode tracking response: %v", err)), TrackingNumber: trackingID}
	}
	if decoded.failed() || len(decoded.TrackingResults) == 0 {
		return carriers.TrackingResult{
			Result:         carriers.Result{Success: false, Message: decoded.message("track shipment"), StatusCode: status},
			TrackingNumber: trackingID,
			Data:           json.RawMessage(body),
		}
	}

	latest := decoded.TrackingResults[0]
	history, _ := json.Marshal(decoded.TrackingResults)
	return carriers.TrackingResult{
		Result:         carriers.Result{Success: true, StatusCode: status},
		TrackingNumber: trackingID,
		Status:         latest.UpdateDescription,
		LastUpdate:     latest.UpdateDateTime,
		Location:       latest.UpdateLocation,
		History:        history,
		Data:           json.RawMessage(body),
	}
}

// CancelShipment is not offered by the public Aramex API.
func (c *Client) CancelShipment(ctx context.Context, trackingID string) carriers.Result {
	return carriers.Failure("shipment cancellation is not available through the aramex api")
}

func (c *Client) GetShippingCost(ctx context.Context, req carriers.QuoteRequest) carriers.CostResult {
	payload := rateRequest{
		ClientInfo:         c.clientInfo(),
		OriginAddress:      address{Line1: req.SenderAddress, City: req.SenderCity, CountryCode: c.creds.AccountCountryCode},
		DestinationAddress: address{Line1: req.CustomerAddress, City: req.CustomerCity, CountryCode: c.creds.AccountCountryCode},
		ShipmentDetails:    c.details(req.Length, req.Width, req.Height, req.Weight, req.ProductDescription),
	}
	status, body, err := c.post(ctx, "/json/CalculateRate", payload)
	if err != nil {
		return carriers.CostResult{Result: carriers.Failure(fmt.Sprintf("shipping cost: %v", err))}
	}
	if status != http.StatusOK {
		return carriers.CostResult{Result: httpFailure("shipping cost", status, body)}
	}

	var decoded rateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return carriers.CostResult{Result: carriers.Failure(fmt.Sprintf("decode rate response: %v", err))}
	}
	if decoded.failed() {
		return carriers.CostResult{
			Result: carriers.Result{Success: false, Message: decoded.message("shipping cost"), StatusCode: status},
			Data:   json.RawMessage(body),
		}
	}

	currency := decoded.TotalAmount.CurrencyCode
	if currency == "" {
		currency = defaultCurrency
	}
	return carriers.CostResult{
		Result:    carriers.Result{Success: true, StatusCode: status},
		Currency:  currency,
		TotalCost: decoded.TotalAmount.Value,
		Data:      json.RawMessage(body),
	}
}

func (c *Client) clientInfo() clientInfo {
	return clientInfo{
		UserName:           c.creds.UserName,
		Password:           c.creds.Password,
		Version:            clientVersion,
		AccountNumber:      c.creds.AccountNumber,
		AccountPin:         c.creds.AccountPin,
		AccountEntity:      c.creds.AccountEntity,
		AccountCountryCode: c.creds.AccountCountryCode,
		Source:             clientSource,
	}
}

func (c *Client) details(length, width, height, kg float64, description string) shipmentDetails {
	return shipmentDetails{
		Dimensions:         dimensions{Length: length, Width: width, Height: height, Unit: "CM"},
		ActualWeight:       weight{Value: kg, Unit: "KG"},
		ProductGroup:       "EXP",
		ProductType:        "PDX",
		PaymentType:        "P",
		NumberOfPieces:     1,
		DescriptionOfGoods: description,
		GoodsOriginCountry: c.creds.AccountCountryCode,
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

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
