package orders

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines persistence operations for orders and the rows they
// reference.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, page, perPage int) ([]models.Order, int64, error)
	ListShippedWithTracking(ctx context.Context, limit int) ([]models.Order, error)
	TouchTracked(ctx context.Context, ids []uuid.UUID, at time.Time) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	StaffExists(ctx context.Context, id uuid.UUID) (bool, error)
	DeliveryCompanyExists(ctx context.Context, id uuid.UUID) (bool, error)
	SumExpenses(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

// ListFilters narrows List. Nil fields are ignored.
type ListFilters struct {
	Status  *enums.OrderStatus
	StaffID *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// Save writes every column of order. Preloaded associations are never
// written back, so a stale product cannot overwrite current_stock.
func (r *repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.withRelations(ctx).Where("orders.id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByTrackingID(ctx context.Context, trackingID string) (*models.Order, error) {
	var order models.Order
	err := r.withRelations(ctx).
		Where("shipping_tracking_id = ?", trackingID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, page, perPage int) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != nil {
		q = q.Where("order_status = ?", *filters.Status)
	}
	if filters.StaffID != nil {
		q = q.Where("confirmation_staff_id = ?", *filters.StaffID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	q = q.Preload("Product").Preload("DeliveryCompany").Preload("ConfirmationStaff").
		Order("order_date DESC")
	if perPage > 0 {
		q = q.Limit(perPage).Offset((page - 1) * perPage)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListShippedWithTracking(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).
		Where("order_status IN ?", []enums.OrderStatus{
			enums.OrderStatusShipped,
			enums.OrderStatusInTransit,
			enums.OrderStatusOutForDelivery,
		}).
		Where("shipping_tracking_id IS NOT NULL AND shipping_tracking_id <> ''").
		Order("last_tracked_at IS NOT NULL").
		Order("last_tracked_at ASC").
		Order("shipped_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// TouchTracked stamps last_tracked_at without bumping updated_at.
func (r *repository) TouchTracked(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id IN ?", ids).
		UpdateColumn("last_tracked_at", at).Error
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) StaffExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.Staff{}, id)
}

func (r *repository) DeliveryCompanyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.DeliveryCompany{}, id)
}

func (r *repository) SumExpenses(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Select("id", "amount").
		Where("order_id = ?", orderID).
		Find(&expenses).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (r *repository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Product").
		Preload("DeliveryCompany").
		Preload("ConfirmationStaff")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
