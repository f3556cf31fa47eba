package sheetsync

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/dzorders-backend/internal/intake"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
)

type stubSheets struct {
	values    [][]string
	readErr   error
	updates   map[string]string
	updateErr error
	lastRange string
	pinged    bool
}

func (s *stubSheets) Values(ctx context.Context, rangeA1 string) ([][]string, error) {
	s.lastRange = rangeA1
	return s.values, s.readErr
}

func (s *stubSheets) UpdateCell(ctx context.Context, cellA1, value string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.updates == nil {
		s.updates = map[string]string{}
	}
	s.updates[cellA1] = value
	return nil
}

func (s *stubSheets) Ping(ctx context.Context) error {
	s.pinged = true
	return s.readErr
}

type stubProcessor struct {
	seen []map[string]any
}

func (p *stubProcessor) Process(ctx context.Context, source intake.Source, raw map[string]any) intake.Result {
	p.seen = append(p.seen, raw)
	if _, ok, msg := intake.Normalize(source, raw); !ok {
		return intake.Result{Success: false, Message: msg}
	}
	id := uuid.New()
	return intake.Result{Success: true, Message: "order created", OrderID: &id}
}

var header = []string{"اسم العميل", "رقم الهاتف", "العنوان", "رمز المنتج", "الكمية"}

func markedRow(cells ...string) []string {
	row := make([]string, markerIndex+1)
	copy(row, cells)
	row[markerIndex] = ProcessedMarker
	return row
}

func newTestService(t *testing.T, sheets *stubSheets, proc *stubProcessor) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Sheets:        sheets,
		Processor:     proc,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		SpreadsheetID: "sheet-1",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSyncMarksSuccessfulRowsAndSkipsProcessed(t *testing.T) {
	sheets := &stubSheets{values: [][]string{
		header,
		{"Amine", "0550123456", "Oran", "P1", "2"},
		{"Sara", "", "Blida", "P1"},
		{"", "", ""},
		markedRow("Nadia", "0661000000", "Alger", "P2", "1"),
		{"Yacine", "0770111222", "Setif", "P2"},
	}}
	proc := &stubProcessor{}
	svc := newTestService(t, sheets, proc)

	res, err := svc.Sync(context.Background(), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sheets.lastRange != DefaultRange {
		t.Fatalf("expected default range, got %q", sheets.lastRange)
	}
	if res.Total != 3 || res.Successful != 2 || res.Failed != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if res.Results[0].Row != 2 || res.Results[1].Row != 3 || res.Results[2].Row != 6 {
		t.Fatalf("unexpected row numbers %+v", res.Results)
	}
	if sheets.updates["Sheet1!Z2"] != ProcessedMarker || sheets.updates["Sheet1!Z6"] != ProcessedMarker {
		t.Fatalf("expected processed markers, got %v", sheets.updates)
	}
	if _, ok := sheets.updates["Sheet1!Z3"]; ok {
		t.Fatal("failed row must not be marked")
	}
	if len(proc.seen) != 3 {
		t.Fatalf("expected 3 rows processed, got %d", len(proc.seen))
	}
}

func TestSyncUsesSheetNameFromRange(t *testing.T) {
	sheets := &stubSheets{values: [][]string{
		header,
		{"Amine", "0550123456", "Oran", "P1", "1"},
	}}
	svc := newTestService(t, sheets, &stubProcessor{})

	if _, err := svc.Sync(context.Background(), "'Orders'!A:Z"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sheets.updates["Orders!Z2"] != ProcessedMarker {
		t.Fatalf("expected marker on Orders sheet, got %v", sheets.updates)
	}
}

func TestSyncHonoursRangeOffset(t *testing.T) {
	marked := make([]string, markerIndex-2+1)
	copy(marked, []string{"Nadia", "0661000000", "Alger", "P2", "1"})
	marked[len(marked)-1] = ProcessedMarker

	sheets := &stubSheets{values: [][]string{
		header,
		{"Amine", "0550123456", "Oran", "P1", "1"},
		marked,
	}}
	svc := newTestService(t, sheets, &stubProcessor{})

	res, err := svc.Sync(context.Background(), "Data!C5:Z")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Successful != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if res.Results[0].Row != 6 {
		t.Fatalf("expected absolute row 6, got %d", res.Results[0].Row)
	}
	if sheets.updates["Data!Z6"] != ProcessedMarker || len(sheets.updates) != 1 {
		t.Fatalf("expected a single marker at Data!Z6, got %v", sheets.updates)
	}
}

func TestSyncQuotesSheetNamesWithSpaces(t *testing.T) {
	sheets := &stubSheets{values: [][]string{
		header,
		{"Amine", "0550123456", "Oran", "P1", "1"},
	}}
	svc := newTestService(t, sheets, &stubProcessor{})

	if _, err := svc.Sync(context.Background(), "'My Sheet'!A:Z"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sheets.updates["'My Sheet'!Z2"] != ProcessedMarker {
		t.Fatalf("expected quoted marker cell, got %v", sheets.updates)
	}
}

func TestSyncRejectsRangePastMarkerColumn(t *testing.T) {
	sheets := &stubSheets{values: [][]string{header}}
	svc := newTestService(t, sheets, &stubProcessor{})

	for _, rng := range []string{"Sheet1!AB1:AC", "Sheet1!A0:Z", "Sheet1!A1:Z:Q", "!A:Z"} {
		_, err := svc.Sync(context.Background(), rng)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", rng, err)
		}
	}
	if sheets.lastRange != "" {
		t.Fatalf("sheet must not be read for an invalid range, read %q", sheets.lastRange)
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		want sheetRange
	}{
		{"Sheet1!A:Z", sheetRange{sheet: "Sheet1", startCol: 0, startRow: 1}},
		{"A2:Z", sheetRange{sheet: defaultSheetName, startCol: 0, startRow: 2}},
		{"'It''s'!b3:z", sheetRange{sheet: "It's", startCol: 1, startRow: 3}},
	}
	for _, tc := range cases {
		got, err := parseRange(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
	if quoteSheet("It's") != "'It''s'" {
		t.Fatalf("unexpected quoting %q", quoteSheet("It's"))
	}
}

func TestSyncKeepsSuccessWhenMarkerWriteFails(t *testing.T) {
	sheets := &stubSheets{
		values:    [][]string{header, {"Amine", "0550123456", "Oran", "P1", "1"}},
		updateErr: errors.New("read only key"),
	}
	svc := newTestService(t, sheets, &stubProcessor{})

	res, err := svc.Sync(context.Background(), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Successful != 1 {
		t.Fatalf("expected success despite marker failure, got %+v", res)
	}
}

func TestSyncPropagatesReadError(t *testing.T) {
	sheets := &stubSheets{readErr: errors.New("forbidden")}
	svc := newTestService(t, sheets, &stubProcessor{})
	if _, err := svc.Sync(context.Background(), ""); err == nil {
		t.Fatal("expected read error")
	}
}

func TestPreviewLimitsRowsAndWritesNothing(t *testing.T) {
	values := [][]string{header}
	for i := 0; i < 12; i++ {
		values = append(values, []string{"Amine", "0550123456", "Oran", "P1", "1"})
	}
	values = append(values, []string{"Broken", "12", "Oran", "P1"})
	sheets := &stubSheets{values: values}
	proc := &stubProcessor{}
	svc := newTestService(t, sheets, proc)

	preview, err := svc.Preview(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.TotalRows != 13 || preview.PreviewRows != DefaultPreviewMax || len(preview.Rows) != DefaultPreviewMax {
		t.Fatalf("unexpected preview sizes %+v", preview)
	}
	if !preview.Rows[0].IsValid || preview.Rows[0].ProcessedData == nil || preview.Rows[0].ProcessedData.Quantity != 1 {
		t.Fatalf("expected valid first row, got %+v", preview.Rows[0])
	}
	if len(proc.seen) != 0 || len(sheets.updates) != 0 {
		t.Fatal("preview must not create orders or write markers")
	}

	full, err := svc.Preview(context.Background(), "", 20)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	last := full.Rows[len(full.Rows)-1]
	if last.IsValid || last.ProcessedData != nil || last.ValidationMessage == "" {
		t.Fatalf("expected invalid last row, got %+v", last)
	}
}

func TestTestConnection(t *testing.T) {
	sheets := &stubSheets{}
	svc := newTestService(t, sheets, &stubProcessor{})
	status, err := svc.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("test connection: %v", err)
	}
	if !sheets.pinged || !status.Connected || status.SpreadsheetID != "sheet-1" {
		t.Fatalf("unexpected status %+v", status)
	}
}
