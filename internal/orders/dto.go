package orders

import (
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/angelmondragon/dzorders-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput carries a manually entered or imported order.
type CreateInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	ProductID       uuid.UUID
	Quantity        int
	OrderSource     enums.OrderSource
	Notes           *string
}

// StatusUpdate changes the status and, optionally, the assignment fields.
// Nil fields are left untouched.
type StatusUpdate struct {
	Status              string
	ConfirmationStaffID *uuid.UUID
	DeliveryCompanyID   *uuid.UUID
	DeliveryPrice       *decimal.Decimal
	ShippingTrackingID  *string
	Notes               *string
}

type ListInput struct {
	Status  string
	Page    int
	PerPage int
}

type OrderDTO struct {
	ID                    uuid.UUID           `json:"order_id"`
	CustomerName          string              `json:"customer_name"`
	CustomerPhone         string              `json:"customer_phone"`
	CustomerAddress       string              `json:"customer_address"`
	ProductID             uuid.UUID           `json:"product_id"`
	ProductName           string              `json:"product_name,omitempty"`
	ProductSKU            string              `json:"product_sku,omitempty"`
	Quantity              int                 `json:"quantity"`
	UnitPrice             decimal.Decimal     `json:"unit_price"`
	TotalAmount           decimal.Decimal     `json:"total_amount"`
	OrderSource           enums.OrderSource   `json:"order_source"`
	OrderStatus           enums.OrderStatus   `json:"order_status"`
	ConfirmationStaffID   *uuid.UUID          `json:"confirmation_staff_id"`
	ConfirmationStaffName *string             `json:"confirmation_staff_name,omitempty"`
	DeliveryCompanyID     *uuid.UUID          `json:"delivery_company_id"`
	DeliveryCompanyName   *string             `json:"delivery_company_name,omitempty"`
	DeliveryPrice         decimal.NullDecimal `json:"delivery_price"`
	ShippingTrackingID    *string             `json:"shipping_tracking_id"`
	Notes                 *string             `json:"notes"`
	OrderDate             time.Time           `json:"order_date"`
	FirstCallDate         *time.Time          `json:"first_call_date"`
	SecondCallDate        *time.Time          `json:"second_call_date"`
	ConfirmedDate         *time.Time          `json:"confirmed_date"`
	ShippedDate           *time.Time          `json:"shipped_date"`
	DeliveredDate         *time.Time          `json:"delivered_date"`
	CancelledDate         *time.Time          `json:"cancelled_date"`
	ReturnedDate          *time.Time          `json:"returned_date"`
	LastTrackedAt         *time.Time          `json:"last_tracked_at,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// FromModel maps an order row, with whatever relations were preloaded.
func FromModel(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:                  o.ID,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		CustomerAddress:     o.CustomerAddress,
		ProductID:           o.ProductID,
		Quantity:            o.Quantity,
		UnitPrice:           o.UnitPrice,
		TotalAmount:         o.TotalAmount,
		OrderSource:         o.OrderSource,
		OrderStatus:         o.OrderStatus,
		ConfirmationStaffID: o.ConfirmationStaffID,
		DeliveryCompanyID:   o.DeliveryCompanyID,
		DeliveryPrice:       o.DeliveryPrice,
		ShippingTrackingID:  o.ShippingTrackingID,
		Notes:               o.Notes,
		OrderDate:           o.OrderDate,
		FirstCallDate:       o.FirstCallDate,
		SecondCallDate:      o.SecondCallDate,
		ConfirmedDate:       o.ConfirmedDate,
		ShippedDate:         o.ShippedDate,
		DeliveredDate:       o.DeliveredDate,
		CancelledDate:       o.CancelledDate,
		ReturnedDate:        o.ReturnedDate,
		LastTrackedAt:       o.LastTrackedAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	if o.Product != nil {
		dto.ProductName = o.Product.ProductName
		dto.ProductSKU = o.Product.SKU
	}
	if o.ConfirmationStaff != nil {
		name := o.ConfirmationStaff.StaffName
		dto.ConfirmationStaffName = &name
	}
	if o.DeliveryCompany != nil {
		name := o.DeliveryCompany.CompanyName
		dto.DeliveryCompanyName = &name
	}
	return dto
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

type OrderList struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

// ProfitDTO breaks down the profit of one order. Profit is zero until the
// order is delivered.
type ProfitDTO struct {
	OrderID       uuid.UUID         `json:"order_id"`
	OrderStatus   enums.OrderStatus `json:"order_status"`
	Revenue       decimal.Decimal   `json:"revenue"`
	Expenses      decimal.Decimal   `json:"expenses"`
	DeliveryPrice decimal.Decimal   `json:"delivery_price"`
	Profit        decimal.Decimal   `json:"profit"`
}

// TimelineCreated labels the first timeline entry.
const TimelineCreated = "تم إنشاء الطلب"

type TimelineEntry struct {
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

type TrackingInfo struct {
	OrderID            uuid.UUID         `json:"order_id"`
	OrderStatus        enums.OrderStatus `json:"order_status"`
	ShippingTrackingID *string           `json:"shipping_tracking_id"`
	DeliveryCompany    *string           `json:"delivery_company"`
	Timeline           []TimelineEntry   `json:"timeline"`
}
