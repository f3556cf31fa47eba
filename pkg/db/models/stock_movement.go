package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dzorders-backend/pkg/enums"
)

// StockMovement is an append-only audit row written with every stock change.
type StockMovement struct {
	ID         uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID                 `gorm:"column:product_id;type:uuid;not null;index"`
	Delta      int                       `gorm:"column:delta;not null"`
	Reason     enums.StockMovementReason `gorm:"column:reason;not null"`
	OrderID    *uuid.UUID                `gorm:"column:order_id;type:uuid"`
	Note       *string                   `gorm:"column:note"`
	StockAfter int                       `gorm:"column:stock_after;not null"`
	CreatedAt  time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
