package reports

import (
	"context"
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository reads the raw rows reports aggregate. Bounds are inclusive.
type Repository interface {
	OrdersBetween(ctx context.Context, start, end time.Time, statuses []enums.OrderStatus) ([]models.Order, error)
	ExpensesBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) OrdersBetween(ctx context.Context, start, end time.Time, statuses []enums.OrderStatus) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Product").
		Where("order_date >= ? AND order_date <= ?", start, end)
	if len(statuses) > 0 {
		q = q.Where("order_status IN ?", statuses)
	}
	var rows []models.Order
	if err := q.Order("order_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ExpensesBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	var rows []models.Expense
	if err := r.db.WithContext(ctx).
		Where("expense_date >= ? AND expense_date <= ?", start, end).
		Order("expense_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
