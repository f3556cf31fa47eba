package expenses

import (
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/angelmondragon/dzorders-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateInput struct {
	ExpenseType string
	Amount      decimal.Decimal
	ExpenseDate *time.Time
	Description string
	OrderID     *uuid.UUID
}

// UpdateInput holds optional changes. A non-nil OrderID of uuid.Nil clears
// the order link.
type UpdateInput struct {
	ExpenseType *string
	Amount      *decimal.Decimal
	ExpenseDate *time.Time
	Description *string
	OrderID     *uuid.UUID
}

type ListInput struct {
	ExpenseType string
	Start       *time.Time
	End         *time.Time
	Page        int
	PerPage     int
}

type ExpenseDTO struct {
	ID          uuid.UUID         `json:"expense_id"`
	ExpenseType enums.ExpenseType `json:"expense_type"`
	Amount      decimal.Decimal   `json:"amount"`
	ExpenseDate time.Time         `json:"expense_date"`
	Description string            `json:"description"`
	OrderID     *uuid.UUID        `json:"order_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func FromModel(e *models.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		ExpenseType: e.ExpenseType,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		Description: e.Description,
		OrderID:     e.OrderID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type ExpenseList struct {
	Expenses   []ExpenseDTO    `json:"expenses"`
	Pagination pagination.Meta `json:"pagination"`
}

type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type TypeBreakdown struct {
	ExpenseType enums.ExpenseType `json:"expense_type"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Count       int               `json:"count"`
	Percentage  decimal.Decimal   `json:"percentage"`
}

type Summary struct {
	Period            Period          `json:"period"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	Breakdown         []TypeBreakdown `json:"expenses_breakdown"`
	TotalTransactions int             `json:"total_transactions"`
}

type BulkFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BulkResult struct {
	CreatedCount int           `json:"created_count"`
	FailedCount  int           `json:"failed_count"`
	Created      []ExpenseDTO  `json:"created_expenses"`
	Failed       []BulkFailure `json:"failed_expenses"`
}
