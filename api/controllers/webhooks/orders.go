// Package webhooks receives orders pushed by storefronts and form builders.
package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/internal/intake"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
)

const (
	maxPayloadBytes = 1 << 20
	maxBatchOrders  = 500
)

// OrderIntake is satisfied by *intake.Processor.
type OrderIntake interface {
	Process(ctx context.Context, source intake.Source, raw map[string]any) intake.Result
	ProcessBatch(ctx context.Context, source intake.Source, raws []map[string]any) intake.BatchResult
}

type orderCreated struct {
	OrderID string `json:"order_id"`
}

// Orders accepts one order payload. Field names are matched loosely, so
// storefront exports can be posted as is.
func Orders(proc OrderIntake, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if proc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order intake unavailable"))
			return
		}

		var raw map[string]any
		if err := decodePayload(w, r, &raw); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if raw == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order payload must be a JSON object"))
			return
		}

		result := proc.Process(ctx, intake.SourceWebhook, raw)
		if !result.Success {
			responses.WriteError(ctx, logg, w, intakeFailure(result))
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, result.Message, orderCreated{OrderID: result.OrderID.String()})
	}
}

// intakeFailure answers 400 for anything the caller can fix by changing the
// payload, unknown SKUs and stock shortfalls included. Server side failures
// keep their code so the response is 5xx and never cached as final.
func intakeFailure(result intake.Result) error {
	if result.Code != "" && pkgerrors.MetadataFor(result.Code).HTTPStatus >= http.StatusInternalServerError {
		return pkgerrors.New(result.Code, result.Message)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, result.Message)
}

type batchRequest struct {
	Orders []map[string]any `json:"orders"`
}

// OrdersBatch processes every payload independently. One bad order never
// fails the others, and the response is 200 whenever the envelope parses.
func OrdersBatch(proc OrderIntake, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if proc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order intake unavailable"))
			return
		}

		var payload batchRequest
		if err := decodePayload(w, r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if len(payload.Orders) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orders must be a non-empty list").
				WithDetails(map[string]any{"field": "orders"}))
			return
		}
		if len(payload.Orders) > maxBatchOrders {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many orders in one batch").
				WithDetails(map[string]any{"field": "orders", "max": maxBatchOrders}))
			return
		}

		result := proc.ProcessBatch(ctx, intake.SourceWebhook, payload.Orders)
		logg.Info(logg.WithFields(ctx, map[string]any{
			"total":      result.Total,
			"successful": result.Successful,
			"failed":     result.Failed,
		}), "webhook.batch_processed")
		responses.WriteSuccessMessage(w, http.StatusOK, "batch processed", result)
	}
}

type echoResponse struct {
	Method     string         `json:"method"`
	ReceivedAt time.Time      `json:"received_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Test echoes what it received so integrators can check connectivity and
// the shared secret without creating an order.
func Test(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := echoResponse{Method: r.Method, ReceivedAt: time.Now().UTC()}
		if r.Method == http.MethodPost {
			var raw map[string]any
			if err := decodePayload(w, r, &raw); err != nil && !errors.Is(err, io.EOF) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			out.Payload = raw
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "webhook endpoint reachable", out)
	}
}

func decodePayload(w http.ResponseWriter, r *http.Request, dest any) error {
	body := http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	defer io.Copy(io.Discard, body)

	decoder := json.NewDecoder(body)
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payload too large").
				WithDetails(map[string]any{"max_bytes": maxPayloadBytes})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid JSON payload")
	}
	return nil
}
