package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dzorders-backend/pkg/enums"
)

// Order is a single-product COD order.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerName        string              `gorm:"column:customer_name;not null"`
	CustomerPhone       string              `gorm:"column:customer_phone;not null"`
	CustomerAddress     string              `gorm:"column:customer_address;not null"`
	ProductID           uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index"`
	Product             *Product            `gorm:"foreignKey:ProductID"`
	Quantity            int                 `gorm:"column:quantity;not null"`
	UnitPrice           decimal.Decimal     `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalAmount         decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	OrderSource         enums.OrderSource   `gorm:"column:order_source;not null"`
	OrderStatus         enums.OrderStatus   `gorm:"column:order_status;not null;index"`
	ConfirmationStaffID *uuid.UUID          `gorm:"column:confirmation_staff_id;type:uuid;index"`
	ConfirmationStaff   *Staff              `gorm:"foreignKey:ConfirmationStaffID"`
	DeliveryCompanyID   *uuid.UUID          `gorm:"column:delivery_company_id;type:uuid"`
	DeliveryCompany     *DeliveryCompany    `gorm:"foreignKey:DeliveryCompanyID"`
	DeliveryPrice       decimal.NullDecimal `gorm:"column:delivery_price;type:numeric(12,2)"`
	ShippingTrackingID  *string             `gorm:"column:shipping_tracking_id;index"`
	Notes               *string             `gorm:"column:notes"`
	OrderDate           time.Time           `gorm:"column:order_date;not null;index"`
	FirstCallDate       *time.Time          `gorm:"column:first_call_date"`
	SecondCallDate      *time.Time          `gorm:"column:second_call_date"`
	ConfirmedDate       *time.Time          `gorm:"column:confirmed_date"`
	ShippedDate         *time.Time          `gorm:"column:shipped_date"`
	DeliveredDate       *time.Time          `gorm:"column:delivered_date"`
	CancelledDate       *time.Time          `gorm:"column:cancelled_date"`
	ReturnedDate        *time.Time          `gorm:"column:returned_date"`
	LastTrackedAt       *time.Time          `gorm:"column:last_tracked_at;index"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
