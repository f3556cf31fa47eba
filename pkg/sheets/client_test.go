package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/dzorders-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), config.GoogleSheetsConfig{SpreadsheetID: "sheet-1"}, nil,
		WithHTTPClient(srv.Client()),
		WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestValuesStringifiesCells(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-1/values/") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"range":"Sheet1!A1:C2","values":[["Amine","0555123456",2],["Sara",1.5]]}`)
	})

	rows, err := client.Values(context.Background(), "Sheet1!A:Z")
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if len(rows) != 2 || rows[0][2] != "2" || rows[1][1] != "1.5" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestUpdateCellWritesRawValue(t *testing.T) {
	var body struct {
		Values [][]string `json:"values"`
	}
	var inputOption string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		inputOption = r.URL.Query().Get("valueInputOption")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	})

	if err := client.UpdateCell(context.Background(), "Sheet1!Z3", "معالج"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if inputOption != valueInputRaw {
		t.Fatalf("expected RAW input, got %q", inputOption)
	}
	if len(body.Values) != 1 || body.Values[0][0] != "معالج" {
		t.Fatalf("unexpected body %v", body.Values)
	}
}

func TestAPIErrorsMapToCodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Requested entity was not found."}}`)
	})

	err := client.Ping(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GoogleSheetsConfig{}, nil); err == nil {
		t.Fatal("expected missing spreadsheet id error")
	}
	if _, err := NewClient(context.Background(), config.GoogleSheetsConfig{SpreadsheetID: "x"}, nil); err == nil {
		t.Fatal("expected missing credentials error")
	}
	var nilClient *Client
	if _, err := nilClient.Values(context.Background(), "A1"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
