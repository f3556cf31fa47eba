package intake

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
)

// OrderCreator persists a normalized record as a new order.
type OrderCreator interface {
	CreateFromIntake(ctx context.Context, record Record) (uuid.UUID, error)
}

type intakeMetrics interface {
	Observe(source string, success bool)
}

// Result is the per-payload outcome reported back to webhook and sheet callers.
// Code classifies a failure: VALIDATION_ERROR for rejected payloads, otherwise
// the code returned by the order service.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	OrderID *uuid.UUID     `json:"order_id,omitempty"`
	Row     int            `json:"row,omitempty"`
	Code    pkgerrors.Code `json:"-"`
}

// BatchResult aggregates a batch. Individual failures never abort the batch.
type BatchResult struct {
	Total      int      `json:"total_orders"`
	Successful int      `json:"successful_orders"`
	Failed     int      `json:"failed_orders"`
	Results    []Result `json:"results"`
}

// Processor normalizes raw payloads and hands them to the order service.
type Processor struct {
	orders      OrderCreator
	logg        *logger.Logger
	metrics     intakeMetrics
	countryCode string
}

type ProcessorParams struct {
	Orders      OrderCreator
	Logger      *logger.Logger
	Metrics     intakeMetrics
	CountryCode string
}

func NewProcessor(params ProcessorParams) (*Processor, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	country := params.CountryCode
	if country == "" {
		country = DefaultCountryCode
	}
	return &Processor{
		orders:      params.Orders,
		logg:        params.Logger,
		metrics:     params.Metrics,
		countryCode: country,
	}, nil
}

// Process validates and persists one payload.
func (p *Processor) Process(ctx context.Context, source Source, raw map[string]any) Result {
	result := p.process(ctx, source, raw)
	if p.metrics != nil {
		p.metrics.Observe(source.OrderSource().String(), result.Success)
	}
	return result
}

func (p *Processor) process(ctx context.Context, source Source, raw map[string]any) Result {
	record, ok, msg := Normalize(source, raw)
	if !ok {
		return Result{Success: false, Message: msg, Code: pkgerrors.CodeValidation}
	}
	record.CustomerPhone = NormalizePhone(record.CustomerPhone, p.countryCode)

	orderID, err := p.orders.CreateFromIntake(ctx, *record)
	if err != nil {
		return Result{Success: false, Message: failureMessage(record, err), Code: failureCode(err)}
	}

	ctx = p.logg.WithFields(ctx, map[string]any{
		"order_id": orderID.String(),
		"source":   record.OrderSource.String(),
		"sku":      record.ProductSKU,
	})
	p.logg.Info(ctx, "intake.order_created")

	id := orderID
	return Result{Success: true, Message: "order created", OrderID: &id}
}

// ProcessBatch runs Process for every payload in order.
func (p *Processor) ProcessBatch(ctx context.Context, source Source, raws []map[string]any) BatchResult {
	out := BatchResult{Total: len(raws), Results: make([]Result, 0, len(raws))}
	for _, raw := range raws {
		res := p.Process(ctx, source, raw)
		if res.Success {
			out.Successful++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, res)
	}
	return out
}

func failureCode(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}

func failureMessage(record *Record, err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return fmt.Sprintf("failed to create order: %v", err)
	}
	switch typed.Code() {
	case pkgerrors.CodeNotFound:
		return fmt.Sprintf("product with SKU %s not found", record.ProductSKU)
	case pkgerrors.CodeInsufficientStock:
		if details, ok := typed.Details().(map[string]any); ok {
			return fmt.Sprintf("insufficient stock: available %v, requested %v", details["available"], details["requested"])
		}
		return "insufficient stock"
	default:
		return typed.Message()
	}
}
