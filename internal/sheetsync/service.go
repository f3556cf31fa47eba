// Package sheetsync imports order rows from a Google Sheet. The first row of
// the range holds the headers. Imported rows are marked in column Z so a
// later sync skips them, so a range must not start right of Z.
package sheetsync

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/dzorders-backend/internal/intake"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
)

const (
	DefaultRange      = "Sheet1!A:Z"
	DefaultPreviewMax = 10
	ProcessedMarker   = "معالج"
	markerColumn      = "Z"
	markerIndex       = 25
	defaultSheetName  = "Sheet1"
)

var cellRangePattern = regexp.MustCompile(`^([A-Za-z]*)(\d*)(?::([A-Za-z]*)(\d*))?$`)

type sheetClient interface {
	Values(ctx context.Context, rangeA1 string) ([][]string, error)
	UpdateCell(ctx context.Context, cellA1, value string) error
	Ping(ctx context.Context) error
}

type orderProcessor interface {
	Process(ctx context.Context, source intake.Source, raw map[string]any) intake.Result
}

type SyncResult struct {
	Total      int             `json:"total_orders"`
	Successful int             `json:"successful_orders"`
	Failed     int             `json:"failed_orders"`
	Skipped    int             `json:"skipped_rows"`
	Results    []intake.Result `json:"results"`
}

type PreviewRecord struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	ProductSKU      string `json:"product_sku"`
	Quantity        int    `json:"quantity"`
	Notes           string `json:"notes,omitempty"`
}

type PreviewRow struct {
	Row               int            `json:"row"`
	RawData           map[string]any `json:"raw_data"`
	ProcessedData     *PreviewRecord `json:"processed_data"`
	IsValid           bool           `json:"is_valid"`
	ValidationMessage string         `json:"validation_message"`
}

type Preview struct {
	TotalRows   int          `json:"total_rows"`
	PreviewRows int          `json:"preview_rows"`
	Rows        []PreviewRow `json:"data"`
}

type ConnectionStatus struct {
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	Connected     bool   `json:"connected"`
}

type Service struct {
	sheets        sheetClient
	processor     orderProcessor
	logg          *logger.Logger
	defaultRange  string
	spreadsheetID string
}

type ServiceParams struct {
	Sheets        sheetClient
	Processor     orderProcessor
	Logger        *logger.Logger
	DefaultRange  string
	SpreadsheetID string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Sheets == nil {
		return nil, fmt.Errorf("sheets client required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("intake processor required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	rng := strings.TrimSpace(params.DefaultRange)
	if rng == "" {
		rng = DefaultRange
	}
	return &Service{
		sheets:        params.Sheets,
		processor:     params.Processor,
		logg:          params.Logger,
		defaultRange:  rng,
		spreadsheetID: params.SpreadsheetID,
	}, nil
}

// Sync creates an order for every unmarked row. Row failures are reported and
// do not stop the sync.
func (s *Service) Sync(ctx context.Context, rangeA1 string) (*SyncResult, error) {
	rangeA1 = s.rangeOrDefault(rangeA1)
	rng, err := parseRange(rangeA1)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, rangeA1, rng)
	if err != nil {
		return nil, err
	}

	out := &SyncResult{Results: []intake.Result{}}
	for _, r := range rows {
		if r.processed {
			out.Skipped++
			continue
		}
		out.Total++
		res := s.processor.Process(ctx, intake.SourceSheet, r.values)
		res.Row = r.number
		if res.Success {
			out.Successful++
			s.markProcessed(ctx, rng.sheet, r.number)
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, res)
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"range":      rangeA1,
		"successful": out.Successful,
		"failed":     out.Failed,
		"skipped":    out.Skipped,
	})
	s.logg.Info(ctx, "sheets.sync_completed")
	return out, nil
}

// Preview normalizes up to maxRows rows without writing anything.
func (s *Service) Preview(ctx context.Context, rangeA1 string, maxRows int) (*Preview, error) {
	if maxRows <= 0 {
		maxRows = DefaultPreviewMax
	}
	rangeA1 = s.rangeOrDefault(rangeA1)
	rng, err := parseRange(rangeA1)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, rangeA1, rng)
	if err != nil {
		return nil, err
	}

	limit := len(rows)
	if limit > maxRows {
		limit = maxRows
	}
	out := &Preview{TotalRows: len(rows), PreviewRows: limit, Rows: make([]PreviewRow, 0, limit)}
	for _, r := range rows[:limit] {
		row := PreviewRow{Row: r.number, RawData: r.values}
		record, ok, msg := intake.Normalize(intake.SourceSheet, r.values)
		row.IsValid = ok
		row.ValidationMessage = msg
		if ok {
			row.ValidationMessage = "valid"
			row.ProcessedData = &PreviewRecord{
				CustomerName:    record.CustomerName,
				CustomerPhone:   record.CustomerPhone,
				CustomerAddress: record.CustomerAddress,
				ProductSKU:      record.ProductSKU,
				Quantity:        record.Quantity,
				Notes:           record.Notes,
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (s *Service) TestConnection(ctx context.Context) (*ConnectionStatus, error) {
	if err := s.sheets.Ping(ctx); err != nil {
		return nil, err
	}
	return &ConnectionStatus{SpreadsheetID: s.spreadsheetID, Connected: true}, nil
}

type sheetRow struct {
	number    int
	values    map[string]any
	processed bool
}

// rows pairs every data row with the header row. Blank rows are dropped.
// Row numbers are absolute sheet rows.
func (s *Service) rows(ctx context.Context, rangeA1 string, rng sheetRange) ([]sheetRow, error) {
	values, err := s.sheets.Values(ctx, rangeA1)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []sheetRow{}, nil
	}

	headers := values[0]
	if len(headers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet header row is empty").
			WithDetails(map[string]any{"range": rangeA1})
	}

	marker := markerIndex - rng.startCol
	out := make([]sheetRow, 0, len(values)-1)
	for i, cells := range values[1:] {
		if blank(cells) {
			continue
		}
		row := sheetRow{number: rng.startRow + 1 + i, values: make(map[string]any, len(headers))}
		for col, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			value := ""
			if col < len(cells) {
				value = strings.TrimSpace(cells[col])
			}
			row.values[header] = value
		}
		if len(cells) > marker && strings.TrimSpace(cells[marker]) == ProcessedMarker {
			row.processed = true
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Service) markProcessed(ctx context.Context, sheetName string, row int) {
	cell := fmt.Sprintf("%s!%s%d", quoteSheet(sheetName), markerColumn, row)
	if err := s.sheets.UpdateCell(ctx, cell, ProcessedMarker); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"cell": cell, "error": err.Error()})
		s.logg.Warn(ctx, "sheets.mark_failed")
	}
}

func (s *Service) rangeOrDefault(rangeA1 string) string {
	if trimmed := strings.TrimSpace(rangeA1); trimmed != "" {
		return trimmed
	}
	return s.defaultRange
}

// sheetRange is the parsed start of an A1 range. startCol is zero based and
// startRow is the one based sheet row holding the headers.
type sheetRange struct {
	sheet    string
	startCol int
	startRow int
}

func parseRange(rangeA1 string) (sheetRange, error) {
	out := sheetRange{sheet: defaultSheetName, startRow: 1}
	cells := rangeA1
	if idx := strings.LastIndex(rangeA1, "!"); idx >= 0 {
		out.sheet = unquoteSheet(rangeA1[:idx])
		cells = rangeA1[idx+1:]
	}
	if out.sheet == "" {
		return sheetRange{}, invalidRange(rangeA1, "sheet name is empty")
	}

	m := cellRangePattern.FindStringSubmatch(strings.TrimSpace(cells))
	if m == nil {
		return sheetRange{}, invalidRange(rangeA1, "range is not in A1 notation")
	}
	if m[1] != "" {
		out.startCol = columnIndex(m[1])
	}
	if m[2] != "" {
		row, err := strconv.Atoi(m[2])
		if err != nil || row < 1 {
			return sheetRange{}, invalidRange(rangeA1, "start row must be at least 1")
		}
		out.startRow = row
	}
	if out.startCol > markerIndex {
		return sheetRange{}, invalidRange(rangeA1, "range must start at or before column "+markerColumn)
	}
	return out, nil
}

func invalidRange(rangeA1, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).
		WithDetails(map[string]any{"field": "range", "range": rangeA1})
}

// columnIndex turns column letters into a zero based index, A=0 and AA=26.
func columnIndex(letters string) int {
	n := 0
	for _, r := range strings.ToUpper(letters) {
		n = n*26 + int(r-'A'+1)
	}
	return n - 1
}

func unquoteSheet(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}

// quoteSheet wraps names that are not plain identifiers in single quotes,
// doubling any quote inside.
func quoteSheet(name string) string {
	plain := name != ""
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
