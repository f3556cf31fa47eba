package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	"github.com/angelmondragon/dzorders-backend/internal/sheetsync"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
)

const maxPreviewRows = 100

// SheetSyncer is implemented by *sheetsync.Service. A nil SheetSyncer means
// Google Sheets is not configured.
type SheetSyncer interface {
	Sync(ctx context.Context, rangeA1 string) (*sheetsync.SyncResult, error)
	Preview(ctx context.Context, rangeA1 string, maxRows int) (*sheetsync.Preview, error)
	TestConnection(ctx context.Context) (*sheetsync.ConnectionStatus, error)
}

func sheetsNotConfigured() error {
	return pkgerrors.New(pkgerrors.CodeDependency, "google sheets not configured")
}

type sheetSyncRequest struct {
	Range   string `json:"range,omitempty"`
	MaxRows *int   `json:"max_rows,omitempty" validate:"omitempty,min=1"`
}

// decodeOptionalBody treats an empty body as the zero request.
func decodeOptionalBody(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := validators.DecodeJSONBody(r, dest)
	if err != nil && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func SyncGoogleSheet(svc SheetSyncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, sheetsNotConfigured())
			return
		}
		var payload sheetSyncRequest
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Sync(r.Context(), validators.SanitizeString(payload.Range, maxNameLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "sheet synced", result)
	}
}

func PreviewGoogleSheet(svc SheetSyncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, sheetsNotConfigured())
			return
		}
		var payload sheetSyncRequest
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxRows := sheetsync.DefaultPreviewMax
		if payload.MaxRows != nil {
			maxRows = *payload.MaxRows
		}
		if maxRows > maxPreviewRows {
			maxRows = maxPreviewRows
		}
		preview, err := svc.Preview(r.Context(), validators.SanitizeString(payload.Range, maxNameLen), maxRows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

func GoogleSheetConnection(svc SheetSyncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, sheetsNotConfigured())
			return
		}
		status, err := svc.TestConnection(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
