package products

import (
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManualStockReason is recorded on the movement written by SetStock.
const ManualStockReason = "manual stock set"

type CreateInput struct {
	ProductName  string
	SKU          string
	Description  *string
	Price        decimal.Decimal
	CostPrice    *decimal.Decimal
	CurrentStock int
	InitialStock *int
}

// UpdateInput holds optional changes. Nil fields are left as they are.
type UpdateInput struct {
	ProductName  *string
	Description  *string
	Price        *decimal.Decimal
	CostPrice    *decimal.Decimal
	InitialStock *int
}

type ProductDTO struct {
	ID           uuid.UUID           `json:"product_id"`
	ProductName  string              `json:"product_name"`
	SKU          string              `json:"sku"`
	Description  *string             `json:"description"`
	Price        decimal.Decimal     `json:"price"`
	CostPrice    decimal.NullDecimal `json:"cost_price"`
	CurrentStock int                 `json:"current_stock"`
	InitialStock int                 `json:"initial_stock"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func FromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		ProductName:  p.ProductName,
		SKU:          p.SKU,
		Description:  p.Description,
		Price:        p.Price,
		CostPrice:    p.CostPrice,
		CurrentStock: p.CurrentStock,
		InitialStock: p.InitialStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// StockChange reports the outcome of SetStock.
type StockChange struct {
	Product  ProductDTO `json:"product"`
	OldStock int        `json:"old_stock"`
	NewStock int        `json:"new_stock"`
}
