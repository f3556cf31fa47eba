package expenses

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/angelmondragon/dzorders-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, input ListInput) (*ExpenseList, error)
	Get(ctx context.Context, id uuid.UUID) (*ExpenseDTO, error)
	Create(ctx context.Context, input CreateInput) (*ExpenseDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ExpenseDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, start, end *time.Time) (*Summary, error)
	Bulk(ctx context.Context, inputs []CreateInput) (*BulkResult, error)
	Types() []enums.ExpenseType
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	return &service{repo: repo, logg: logg, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ExpenseList, error) {
	filters := ListFilters{Start: input.Start, End: input.End}
	if raw := strings.TrimSpace(input.ExpenseType); raw != "" {
		t, err := parseType(raw)
		if err != nil {
			return nil, err
		}
		filters.ExpenseType = &t
	}

	params := pagination.Params{Page: input.Page, PerPage: input.PerPage}.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params.Offset(), params.PerPage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	out := make([]ExpenseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return &ExpenseList{Expenses: out, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ExpenseDTO, error) {
	expense, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(expense)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ExpenseDTO, error) {
	expense, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert expense")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"expense_id":   expense.ID.String(),
			"expense_type": expense.ExpenseType.String(),
			"amount":       expense.Amount.StringFixed(2),
		})
		s.logg.Info(logCtx, "expense.created")
	}
	dto := FromModel(expense)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ExpenseDTO, error) {
	expense, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.ExpenseType != nil {
		t, err := parseType(*input.ExpenseType)
		if err != nil {
			return nil, err
		}
		expense.ExpenseType = t
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, fieldError("amount", "amount must be greater than zero")
		}
		expense.Amount = *input.Amount
	}
	if input.ExpenseDate != nil {
		expense.ExpenseDate = input.ExpenseDate.UTC()
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if desc == "" {
			return nil, fieldError("description", "description must not be empty")
		}
		expense.Description = desc
	}
	if input.OrderID != nil {
		if *input.OrderID == uuid.Nil {
			expense.OrderID = nil
		} else {
			if err := s.ensureOrder(ctx, *input.OrderID); err != nil {
				return nil, err
			}
			orderID := *input.OrderID
			expense.OrderID = &orderID
		}
	}
	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update expense")
	}
	dto := FromModel(expense)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
}

// Summary totals expenses per type. Without a period it covers the current
// month up to now.
func (s *service) Summary(ctx context.Context, start, end *time.Time) (*Summary, error) {
	period := s.period(start, end)
	rows, err := s.repo.ListBetween(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}

	total := decimal.Zero
	byType := map[enums.ExpenseType]*TypeBreakdown{}
	for _, row := range rows {
		total = total.Add(row.Amount)
		b, ok := byType[row.ExpenseType]
		if !ok {
			b = &TypeBreakdown{ExpenseType: row.ExpenseType, TotalAmount: decimal.Zero}
			byType[row.ExpenseType] = b
		}
		b.TotalAmount = b.TotalAmount.Add(row.Amount)
		b.Count++
	}

	breakdown := make([]TypeBreakdown, 0, len(byType))
	for _, b := range byType {
		b.Percentage = decimal.Zero
		if total.IsPositive() {
			b.Percentage = b.TotalAmount.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
		}
		breakdown = append(breakdown, *b)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].TotalAmount.GreaterThan(breakdown[j].TotalAmount)
	})

	return &Summary{
		Period:            period,
		TotalExpenses:     total,
		Breakdown:         breakdown,
		TotalTransactions: len(rows),
	}, nil
}

// Bulk inserts each item on its own. A failed item is reported by index and
// does not stop the rest.
func (s *service) Bulk(ctx context.Context, inputs []CreateInput) (*BulkResult, error) {
	if len(inputs) == 0 {
		return nil, fieldError("expenses", "expenses list is required")
	}
	res := &BulkResult{Created: []ExpenseDTO{}, Failed: []BulkFailure{}}
	for i, input := range inputs {
		dto, err := s.Create(ctx, input)
		if err != nil {
			msg := err.Error()
			if typed := pkgerrors.As(err); typed != nil {
				msg = typed.Message()
			}
			res.Failed = append(res.Failed, BulkFailure{Index: i, Error: msg})
			continue
		}
		res.Created = append(res.Created, *dto)
	}
	res.CreatedCount = len(res.Created)
	res.FailedCount = len(res.Failed)
	return res, nil
}

func (s *service) Types() []enums.ExpenseType {
	return enums.ExpenseTypes()
}

func (s *service) build(ctx context.Context, input CreateInput) (*models.Expense, error) {
	t, err := parseType(input.ExpenseType)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, fieldError("amount", "amount must be greater than zero")
	}
	desc := strings.TrimSpace(input.Description)
	if desc == "" {
		return nil, fieldError("description", "description is required")
	}
	if input.OrderID != nil && *input.OrderID != uuid.Nil {
		if err := s.ensureOrder(ctx, *input.OrderID); err != nil {
			return nil, err
		}
	} else {
		input.OrderID = nil
	}

	date := s.now()
	if input.ExpenseDate != nil {
		date = input.ExpenseDate.UTC()
	}
	return &models.Expense{
		ID:          uuid.New(),
		ExpenseType: t,
		Amount:      input.Amount,
		ExpenseDate: date,
		Description: desc,
		OrderID:     input.OrderID,
	}, nil
}

func (s *service) period(start, end *time.Time) Period {
	now := s.now()
	if start == nil || end == nil {
		return Period{
			StartDate: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
			EndDate:   now,
		}
	}
	return Period{StartDate: start.UTC(), EndDate: end.UTC()}
}

func (s *service) ensureOrder(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.OrderExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
			WithDetails(map[string]any{"order_id": id.String()})
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	return expense, nil
}

func parseType(raw string) (enums.ExpenseType, error) {
	t, err := enums.ParseExpenseType(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense type").
			WithDetails(map[string]any{"field": "expense_type", "allowed": enums.ExpenseTypes()})
	}
	return t, nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}
