package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryPriceList prices one product with one carrier. An empty Region is
// the general price.
type DeliveryPriceList struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PriceListName     string           `gorm:"column:price_list_name;not null"`
	ProductID         uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Product           *Product         `gorm:"foreignKey:ProductID"`
	DeliveryCompanyID uuid.UUID        `gorm:"column:delivery_company_id;type:uuid;not null;index"`
	DeliveryCompany   *DeliveryCompany `gorm:"foreignKey:DeliveryCompanyID"`
	PricePerUnit      decimal.Decimal  `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Region            string           `gorm:"column:region;not null;default:''"`
	IsActive          bool             `gorm:"column:is_active;not null"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
