package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable SKU. CurrentStock only moves through the stock ledger.
type Product struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductName  string              `gorm:"column:product_name;not null"`
	SKU          string              `gorm:"column:sku;not null;uniqueIndex"`
	Description  *string             `gorm:"column:description"`
	Price        decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	CostPrice    decimal.NullDecimal `gorm:"column:cost_price;type:numeric(12,2)"`
	CurrentStock int                 `gorm:"column:current_stock;not null;default:0;check:current_stock >= 0"`
	InitialStock int                 `gorm:"column:initial_stock;not null;default:0"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
