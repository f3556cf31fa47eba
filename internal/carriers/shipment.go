package carriers

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
)

// OrderShipper is the slice of the order service shipment creation needs.
type OrderShipper interface {
	Get(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error)
	CanTransition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) error
	MarkShipped(ctx context.Context, orderID uuid.UUID, trackingID string, companyID *uuid.UUID) (*orders.OrderDTO, error)
}

// ShipmentOptions carries the caller supplied parcel and address details.
type ShipmentOptions struct {
	DeliveryCompanyID *uuid.UUID
	Weight            float64
	Length            float64
	Width             float64
	Height            float64
	Insurance         bool
	FreeShipping      bool
	StopDesk          bool
	FromWilaya        string
	ToWilaya          string
	ToCommune         string
	CustomerCity      string
	CustomerEmail     string
	SenderName        string
	SenderCompany     string
	SenderPhone       string
	SenderAddress     string
	SenderCity        string
	SenderEmail       string
	Comments          string
}

type ShipmentOutcome struct {
	OrderID        uuid.UUID        `json:"order_id"`
	TrackingNumber string           `json:"tracking_number,omitempty"`
	Shipment       ShipmentResult   `json:"shipment_data"`
	Order          *orders.OrderDTO `json:"order,omitempty"`
}

// ShipmentService books a parcel for an order and marks the order shipped.
type ShipmentService struct {
	manager *Manager
	orders  OrderShipper
	logg    *logger.Logger
}

func NewShipmentService(manager *Manager, orders OrderShipper, logg *logger.Logger) (*ShipmentService, error) {
	if manager == nil {
		return nil, fmt.Errorf("carrier manager required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	return &ShipmentService{manager: manager, orders: orders, logg: logg}, nil
}

// CreateForOrder returns a non-nil outcome with Shipment.Success false when
// the carrier refuses the parcel. Nothing is written in that case.
//
// The order must be allowed to move to shipped before the carrier is called.
// If the order update still fails after booking, the outcome carries the
// tracking number alongside the error.
func (s *ShipmentService) CreateForOrder(ctx context.Context, service string, orderID uuid.UUID, opts ShipmentOptions) (*ShipmentOutcome, error) {
	if strings.TrimSpace(service) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_name is required").
			WithDetails(map[string]any{"field": "service_name"})
	}
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CanTransition(ctx, order.ID, enums.OrderStatusShipped); err != nil {
		return nil, err
	}

	req := buildShipmentRequest(order, opts)
	res := s.manager.CreateShipmentVia(ctx, service, req)
	out := &ShipmentOutcome{OrderID: order.ID, Shipment: res}
	if !res.Success {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(s.logg.WithCarrier(ctx, service), order.ID.String())
			logCtx = s.logg.WithField(logCtx, "message", res.Message)
			s.logg.Warn(logCtx, "carrier.shipment.failed")
		}
		return out, nil
	}

	tracking := res.TrackingNumber
	if tracking == "" {
		tracking = res.ShipmentID
	}
	if tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "carrier returned no tracking number").
			WithDetails(map[string]any{"service_name": service})
	}

	out.TrackingNumber = tracking
	updated, err := s.orders.MarkShipped(ctx, order.ID, tracking, opts.DeliveryCompanyID)
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(s.logg.WithCarrier(ctx, service), order.ID.String())
			s.logg.Error(s.logg.WithField(logCtx, "tracking_number", tracking), "carrier.shipment.orphaned", err)
		}
		return out, orphanedShipment(err, service, order.ID, tracking)
	}
	out.Order = updated

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(s.logg.WithCarrier(ctx, service), order.ID.String())
		s.logg.Info(s.logg.WithField(logCtx, "tracking_number", tracking), "carrier.shipment.created")
	}
	return out, nil
}

// orphanedShipment keeps the cause's code and attaches the booked tracking
// number so callers can reconcile the parcel by hand.
func orphanedShipment(cause error, service string, orderID uuid.UUID, tracking string) error {
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(cause); typed != nil {
		code = typed.Code()
	}
	return pkgerrors.Wrap(code, cause, "shipment booked but order was not updated").
		WithDetails(map[string]any{
			"order_id":        orderID.String(),
			"service_name":    service,
			"tracking_number": tracking,
		})
}

func buildShipmentRequest(order *orders.OrderDTO, opts ShipmentOptions) ShipmentRequest {
	comments := opts.Comments
	if comments == "" && order.Notes != nil {
		comments = *order.Notes
	}
	return ShipmentRequest{
		OrderID:            order.ID.String(),
		CustomerName:       order.CustomerName,
		CustomerPhone:      order.CustomerPhone,
		CustomerAddress:    order.CustomerAddress,
		CustomerCity:       opts.CustomerCity,
		CustomerEmail:      opts.CustomerEmail,
		ProductDescription: fmt.Sprintf("order %s", order.ID),
		TotalAmount:        order.TotalAmount,
		DeclaredValue:      order.TotalAmount,
		Weight:             opts.Weight,
		Length:             opts.Length,
		Width:              opts.Width,
		Height:             opts.Height,
		Insurance:          opts.Insurance,
		FreeShipping:       opts.FreeShipping,
		StopDesk:           opts.StopDesk,
		FromWilaya:         opts.FromWilaya,
		ToWilaya:           opts.ToWilaya,
		ToCommune:          opts.ToCommune,
		SenderName:         opts.SenderName,
		SenderCompany:      opts.SenderCompany,
		SenderPhone:        opts.SenderPhone,
		SenderAddress:      opts.SenderAddress,
		SenderCity:         opts.SenderCity,
		SenderEmail:        opts.SenderEmail,
		Comments:           comments,
	}.WithDefaults()
}
