package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dzorders-backend/pkg/enums"
)

// Expense is an operating cost, optionally attributed to one order.
type Expense struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ExpenseType enums.ExpenseType `gorm:"column:expense_type;not null;index"`
	Amount      decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null"`
	ExpenseDate time.Time         `gorm:"column:expense_date;not null;index"`
	Description string            `gorm:"column:description;not null"`
	OrderID     *uuid.UUID        `gorm:"column:order_id;type:uuid;index"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
