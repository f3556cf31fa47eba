package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, expense *models.Expense) error
	Save(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, filters ListFilters, offset, limit int) ([]models.Expense, int64, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error)
	OrderExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListFilters narrows List. Zero values are ignored.
type ListFilters struct {
	ExpenseType *enums.ExpenseType
	Start       *time.Time
	End         *time.Time
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) Save(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, offset, limit int) ([]models.Expense, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Expense{})
	if filters.ExpenseType != nil {
		q = q.Where("expense_type = ?", *filters.ExpenseType)
	}
	if filters.Start != nil {
		q = q.Where("expense_date >= ?", *filters.Start)
	}
	if filters.End != nil {
		q = q.Where("expense_date <= ?", *filters.End)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Expense
	if err := q.Order("expense_date DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) ListBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.db.WithContext(ctx).
		Where("expense_date >= ? AND expense_date <= ?", start, end).
		Order("expense_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) OrderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
