package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/api/responses"
	"github.com/angelmondragon/dzorders-backend/api/validators"
	expensesvc "github.com/angelmondragon/dzorders-backend/internal/expenses"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/angelmondragon/dzorders-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxBulkExpenses = 500

func ListExpenses(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
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
		start, end, err := parsePeriodQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), expensesvc.ListInput{
			ExpenseType: strings.TrimSpace(r.URL.Query().Get("expense_type")),
			Start:       start,
			End:         end,
			Page:        page,
			PerPage:     perPage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetExpense(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

type expenseRequest struct {
	ExpenseType string           `json:"expense_type" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	ExpenseDate *time.Time       `json:"expense_date,omitempty"`
	Description string           `json:"description,omitempty"`
	OrderID     *string          `json:"order_id,omitempty"`
}

func (p expenseRequest) toInput() (expensesvc.CreateInput, error) {
	orderID, err := parseOptionalUUID("order_id", p.OrderID)
	if err != nil {
		return expensesvc.CreateInput{}, err
	}
	if orderID != nil && *orderID == uuid.Nil {
		orderID = nil
	}
	amount := decimal.Zero
	if p.Amount != nil {
		amount = *p.Amount
	}
	return expensesvc.CreateInput{
		ExpenseType: strings.TrimSpace(p.ExpenseType),
		Amount:      amount,
		ExpenseDate: p.ExpenseDate,
		Description: validators.SanitizeString(p.Description, maxNoteLen),
		OrderID:     orderID,
	}, nil
}

func CreateExpense(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
			return
		}
		var payload expenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "expense created", expense)
	}
}

type updateExpenseRequest struct {
	ExpenseType *string          `json:"expense_type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	ExpenseDate *time.Time       `json:"expense_date,omitempty"`
	Description *string          `json:"description,omitempty"`
	OrderID     *string          `json:"order_id,omitempty"`
}

func UpdateExpense(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateExpenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOptionalUUID("order_id", payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.Update(r.Context(), id, expensesvc.UpdateInput{
			ExpenseType: trimmedPtr(payload.ExpenseType, 0),
			Amount:      payload.Amount,
			ExpenseDate: payload.ExpenseDate,
			Description: trimmedPtr(payload.Description, maxNoteLen),
			OrderID:     orderID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "expense updated", expense)
	}
}

func DeleteExpense(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "expense deleted", nil)
	}
}

func ExpenseSummary(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
			return
		}
		start, end, err := parsePeriodQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type bulkExpensesRequest struct {
	Expenses []expenseRequest `json:"expenses" validate:"required,min=1"`
}

// BulkCreateExpenses creates every valid entry and reports the rest; one bad
// entry does not fail the batch.
func BulkCreateExpenses(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
			return
		}
		var payload bulkExpensesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(payload.Expenses) > maxBulkExpenses {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many expenses in one request").
				WithDetails(map[string]any{"field": "expenses", "max": maxBulkExpenses}))
			return
		}
		inputs := make([]expensesvc.CreateInput, 0, len(payload.Expenses))
		for i, item := range payload.Expenses {
			input, err := item.toInput()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid expense entry").
					WithDetails(map[string]any{"field": "order_id", "index": i}))
				return
			}
			inputs = append(inputs, input)
		}
		result, err := svc.Bulk(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ExpenseTypes(svc expensesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("expense"))
			return
		}
		responses.WriteSuccess(w, svc.Types())
	}
}

// parsePeriodQuery reads the start_date/end_date pair. The end bound is
// inclusive of the whole day when given as a plain date.
func parsePeriodQuery(r *http.Request) (*time.Time, *time.Time, error) {
	start, err := validators.ParseQueryDate(r, "start_date", false)
	if err != nil {
		return nil, nil, err
	}
	end, err := validators.ParseQueryDate(r, "end_date", true)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
