// Package orders exposes the order lifecycle over HTTP.
package orders

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	internalorders "github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/angelmondragon/dzorders-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	orderIDParam  = "orderId"
	maxNameLen    = 255
	maxPhoneLen   = 32
	maxAddressLen = 1000
	maxNotesLen   = 2000
	maxTrackLen   = 128
)

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable")
}

// List returns one page of orders, newest first, optionally filtered by
// status.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		if status != "" {
			if _, err := enums.ParseOrderStatus(status); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
					WithDetails(map[string]any{"field": "status"}))
				return
			}
		}

		list, err := svc.List(r.Context(), internalorders.ListInput{Status: status, Page: page, PerPage: perPage})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		orderID, err := validators.ParseUUIDParam(r, orderIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type createOrderRequest struct {
	CustomerName    string  `json:"customer_name" validate:"required"`
	CustomerPhone   string  `json:"customer_phone" validate:"required"`
	CustomerAddress string  `json:"customer_address" validate:"required"`
	ProductID       string  `json:"product_id" validate:"required"`
	Quantity        int     `json:"quantity" validate:"gte=1"`
	Notes           *string `json:"notes,omitempty"`
}

// Create records an order entered by an operator. Stock is debited in the
// same transaction.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id").
				WithDetails(map[string]any{"field": "product_id"}))
			return
		}

		order, err := svc.Create(r.Context(), internalorders.CreateInput{
			CustomerName:    validators.SanitizeString(payload.CustomerName, maxNameLen),
			CustomerPhone:   validators.SanitizeString(payload.CustomerPhone, maxPhoneLen),
			CustomerAddress: validators.SanitizeString(payload.CustomerAddress, maxAddressLen),
			ProductID:       productID,
			Quantity:        payload.Quantity,
			OrderSource:     enums.OrderSourceManual,
			Notes:           sanitizedPtr(payload.Notes, maxNotesLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "order created", order)
	}
}

type statusUpdateRequest struct {
	OrderStatus         string           `json:"order_status" validate:"required"`
	ConfirmationStaffID *string          `json:"confirmation_staff_id,omitempty"`
	DeliveryCompanyID   *string          `json:"delivery_company_id,omitempty"`
	DeliveryPrice       *decimal.Decimal `json:"delivery_price,omitempty"`
	ShippingTrackingID  *string          `json:"shipping_tracking_id,omitempty"`
	Notes               *string          `json:"notes,omitempty"`
}

// UpdateStatus moves an order to a new status. Assignment fields sent with
// the request are applied in the same transaction; an empty id string clears
// the link.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		orderID, err := validators.ParseUUIDParam(r, orderIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		staffID, err := optionalUUID("confirmation_staff_id", payload.ConfirmationStaffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		companyID, err := optionalUUID("delivery_company_id", payload.DeliveryCompanyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetStatus(r.Context(), orderID, internalorders.StatusUpdate{
			Status:              strings.TrimSpace(payload.OrderStatus),
			ConfirmationStaffID: staffID,
			DeliveryCompanyID:   companyID,
			DeliveryPrice:       payload.DeliveryPrice,
			ShippingTrackingID:  sanitizedPtr(payload.ShippingTrackingID, maxTrackLen),
			Notes:               sanitizedPtr(payload.Notes, maxNotesLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order status updated", order)
	}
}

func Tracking(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		orderID, err := validators.ParseUUIDParam(r, orderIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		info, err := svc.Timeline(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

func Profit(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		orderID, err := validators.ParseUUIDParam(r, orderIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profit, err := svc.Profit(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profit)
	}
}

func optionalUUID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		nilID := uuid.Nil
		return &nilID, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}

func sanitizedPtr(v *string, maxLen int) *string {
	if v == nil {
		return nil
	}
	s := validators.SanitizeString(*v, maxLen)
	return &s
}
