package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/dzorders-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const valueInputRaw = "RAW"

var (
	errSpreadsheetIDRequired = errors.New("google sheets spreadsheet id is required")
	errCredentialsRequired   = errors.New("google sheets api key or credentials json is required")
)

// Client reads order rows from one spreadsheet and writes back row markers.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// Option configures optional client behavior.
type Option func(*settings)

type settings struct {
	httpClient *http.Client
	endpoint   string
}

// WithHTTPClient overrides the transport. Credentials are ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithEndpoint overrides the Sheets API base URL.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			s.endpoint = trimmed
		}
	}
}

// NewClient builds a Sheets client. Service-account JSON wins over an API key
// because only it can write the processed marker back.
func NewClient(ctx context.Context, cfg config.GoogleSheetsConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errSpreadsheetIDRequired
	}

	s := &settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	clientOpts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	switch {
	case s.httpClient != nil:
		clientOpts = append(clientOpts, option.WithHTTPClient(s.httpClient))
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.APIKey) != "":
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, errCredentialsRequired
	}
	if s.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(s.endpoint))
	}

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "spreadsheet_id", spreadsheetID), "google sheets client initialized")
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// SpreadsheetID returns the configured spreadsheet.
func (c *Client) SpreadsheetID() string {
	if c == nil {
		return ""
	}
	return c.spreadsheetID
}

// Values returns the cells in rangeA1 as strings. Short rows are returned as
// is; callers pad them.
func (c *Client) Values(ctx context.Context, rangeA1 string) ([][]string, error) {
	if c == nil || c.svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google sheets client not configured")
	}
	if strings.TrimSpace(rangeA1) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range is required")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rangeA1).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err, "read sheet values")
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateCell writes one raw value into cellA1.
func (c *Client) UpdateCell(ctx context.Context, cellA1, value string) error {
	if c == nil || c.svc == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "google sheets client not configured")
	}
	body := &gsheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, cellA1, body).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError(err, "update sheet cell")
	}
	return nil
}

// Ping reads the top-left cell to confirm access.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Values(ctx, "Sheet1!A1:A1")
	return err
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprint(v)
	}
}

func wrapAPIError(err error, action string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "spreadsheet or range not found")
		case http.StatusBadRequest:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, action).WithDetails(map[string]any{"reason": apiErr.Message})
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
