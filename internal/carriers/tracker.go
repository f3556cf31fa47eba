package carriers

import (
	"context"
	"strings"

	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
)

const messageServiceUnknown = "cannot determine delivery service"

// OrderStatusUpdater is the slice of the order service tracking needs.
type OrderStatusUpdater interface {
	FindByTrackingID(ctx context.Context, trackingID string) (*orders.OrderDTO, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, update orders.StatusUpdate) (*orders.OrderDTO, error)
}

// TrackOutcome is the result of tracking one shipment.
type TrackOutcome struct {
	TrackingNumber string             `json:"tracking_number"`
	ServiceName    string             `json:"service_name,omitempty"`
	Result         TrackingResult     `json:"result"`
	OrderID        *uuid.UUID         `json:"order_id,omitempty"`
	OrderUpdated   bool               `json:"order_updated"`
	NewStatus      *enums.OrderStatus `json:"new_status,omitempty"`
}

// BulkTrackResult aggregates a batch of tracking calls.
type BulkTrackResult struct {
	Total      int            `json:"total_shipments"`
	Successful int            `json:"successful_tracks"`
	Failed     int            `json:"failed_tracks"`
	Results    []TrackOutcome `json:"results"`
}

// Tracker tracks shipments and moves the matching orders along.
type Tracker struct {
	manager *Manager
	orders  OrderStatusUpdater
	logg    *logger.Logger
}

func NewTracker(manager *Manager, orders OrderStatusUpdater, logg *logger.Logger) *Tracker {
	return &Tracker{manager: manager, orders: orders, logg: logg}
}

// Track picks the carrier from serviceOverride, or else from the delivery
// company of the order holding trackingID. A mapped carrier status that
// differs from the order's status is applied through the order service.
func (t *Tracker) Track(ctx context.Context, trackingID, serviceOverride string) TrackOutcome {
	trackingID = strings.TrimSpace(trackingID)
	out := TrackOutcome{TrackingNumber: trackingID}
	if trackingID == "" {
		out.Result = TrackingResult{Result: Failure("tracking number is required")}
		return out
	}

	order := t.lookupOrder(ctx, trackingID)
	service := normalizeName(serviceOverride)
	if service == "" && order != nil && order.DeliveryCompanyName != nil {
		service = normalizeName(*order.DeliveryCompanyName)
	}
	if service == "" {
		out.Result = TrackingResult{Result: Failure(messageServiceUnknown), TrackingNumber: trackingID}
		return out
	}
	out.ServiceName = service

	out.Result = t.manager.TrackVia(ctx, service, trackingID)
	if !out.Result.Success {
		t.logFailure(ctx, service, trackingID, out.Result.Message)
		return out
	}
	if order == nil {
		return out
	}

	id := order.ID
	out.OrderID = &id
	mapped, ok := MapStatus(out.Result.Status)
	if !ok || mapped == order.OrderStatus {
		return out
	}

	if _, err := t.orders.SetStatus(ctx, order.ID, orders.StatusUpdate{Status: mapped.String()}); err != nil {
		if t.logg != nil {
			logCtx := t.logg.WithOrderID(t.logg.WithCarrier(ctx, service), order.ID.String())
			t.logg.Error(logCtx, "carrier.track.order_update_failed", err)
		}
		return out
	}
	out.OrderUpdated = true
	out.NewStatus = &mapped
	return out
}

// BulkTrack tracks every id in turn. A failed id is recorded and the batch
// continues.
func (t *Tracker) BulkTrack(ctx context.Context, trackingIDs []string, serviceOverride string) BulkTrackResult {
	res := BulkTrackResult{Total: len(trackingIDs), Results: make([]TrackOutcome, 0, len(trackingIDs))}
	for _, id := range trackingIDs {
		outcome := t.Track(ctx, id, serviceOverride)
		if outcome.Result.Success {
			res.Successful++
		} else {
			res.Failed++
		}
		res.Results = append(res.Results, outcome)
	}
	return res
}

func (t *Tracker) lookupOrder(ctx context.Context, trackingID string) *orders.OrderDTO {
	if t.orders == nil {
		return nil
	}
	order, err := t.orders.FindByTrackingID(ctx, trackingID)
	if err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) && t.logg != nil {
			t.logg.Error(t.logg.WithField(ctx, "tracking_number", trackingID), "carrier.track.order_lookup_failed", err)
		}
		return nil
	}
	return order
}

func (t *Tracker) logFailure(ctx context.Context, service, trackingID, message string) {
	if t.logg == nil {
		return
	}
	ctx = t.logg.WithCarrier(ctx, service)
	ctx = t.logg.WithFields(ctx, map[string]any{
		"tracking_number": trackingID,
		"message":         message,
	})
	t.logg.Warn(ctx, "carrier.track.failed")
}
