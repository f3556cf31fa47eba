package inventory

import (
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultLowStockThreshold = 10
	DefaultMovementDays      = 30
	DefaultHistoryLimit      = 100

	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
	SeverityWarning     = "warning"
	SeverityCritical    = "critical"
)

// StockItem is the compact product view used by the inventory reports.
type StockItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	CurrentStock int             `json:"current_stock"`
	Price        decimal.Decimal `json:"price"`
}

func toStockItem(p models.Product) StockItem {
	return StockItem{
		ProductID:    p.ID,
		ProductName:  p.ProductName,
		SKU:          p.SKU,
		CurrentStock: p.CurrentStock,
		Price:        p.Price,
	}
}

type StatusReport struct {
	TotalProducts       int             `json:"total_products"`
	LowStockCount       int             `json:"low_stock_count"`
	OutOfStockCount     int             `json:"out_of_stock_count"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	LowStockThreshold   int             `json:"low_stock_threshold"`
	LowStockProducts    []StockItem     `json:"low_stock_products"`
	OutOfStockProducts  []StockItem     `json:"out_of_stock_products"`
}

type Alert struct {
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	CurrentStock int       `json:"current_stock"`
	Message      string    `json:"message"`
}

type AlertsReport struct {
	Alerts      []Alert `json:"alerts"`
	TotalAlerts int     `json:"total_alerts"`
}

type MovementRow struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	TotalSold    int       `json:"total_sold"`
	OrdersCount  int       `json:"orders_count"`
	CurrentStock int       `json:"current_stock"`
}

type MovementReport struct {
	PeriodDays    int           `json:"period_days"`
	StartDate     time.Time     `json:"start_date"`
	Movement      []MovementRow `json:"movement"`
	TotalProducts int           `json:"total_products"`
}

type RestockInput struct {
	ProductID uuid.UUID
	Quantity  int
	Note      string
}

type AdjustInput struct {
	ProductID  uuid.UUID
	Adjustment int
	Reason     string
}

type RestockResult struct {
	ProductID     uuid.UUID `json:"product_id"`
	OldStock      int       `json:"old_stock"`
	AddedQuantity int       `json:"added_quantity"`
	NewStock      int       `json:"new_stock"`
}

type AdjustResult struct {
	ProductID  uuid.UUID `json:"product_id"`
	OldStock   int       `json:"old_stock"`
	Adjustment int       `json:"adjustment"`
	NewStock   int       `json:"new_stock"`
	Reason     string    `json:"reason"`
}

// MovementDTO is one stock_movements row.
type MovementDTO struct {
	ID         uuid.UUID                 `json:"id"`
	ProductID  uuid.UUID                 `json:"product_id"`
	Delta      int                       `json:"delta"`
	Reason     enums.StockMovementReason `json:"reason"`
	OrderID    *uuid.UUID                `json:"order_id,omitempty"`
	Note       *string                   `json:"note,omitempty"`
	StockAfter int                       `json:"stock_after"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func toMovementDTO(m models.StockMovement) MovementDTO {
	return MovementDTO{
		ID:         m.ID,
		ProductID:  m.ProductID,
		Delta:      m.Delta,
		Reason:     m.Reason,
		OrderID:    m.OrderID,
		Note:       m.Note,
		StockAfter: m.StockAfter,
		CreatedAt:  m.CreatedAt,
	}
}
