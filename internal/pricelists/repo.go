package pricelists

import (
	"context"
	"errors"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilters struct {
	ProductID         *uuid.UUID
	DeliveryCompanyID *uuid.UUID
}

// MatchQuery selects active price lists for a product/carrier pair. A nil
// Region matches any region.
type MatchQuery struct {
	ProductID         uuid.UUID
	DeliveryCompanyID uuid.UUID
	Region            *string
}

type Repository interface {
	Create(ctx context.Context, pl *models.DeliveryPriceList) error
	Save(ctx context.Context, pl *models.DeliveryPriceList) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPriceList, error)
	List(ctx context.Context, filters ListFilters) ([]models.DeliveryPriceList, error)
	FindActive(ctx context.Context, q MatchQuery) (*models.DeliveryPriceList, error)
	ProductExists(ctx context.Context, id uuid.UUID) (bool, error)
	CompanyExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, pl *models.DeliveryPriceList) error {
	return r.db.WithContext(ctx).Omit("Product", "DeliveryCompany").Create(pl).Error
}

func (r *repository) Save(ctx context.Context, pl *models.DeliveryPriceList) error {
	return r.db.WithContext(ctx).Omit("Product", "DeliveryCompany").Save(pl).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DeliveryPriceList{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPriceList, error) {
	var pl models.DeliveryPriceList
	if err := r.db.WithContext(ctx).First(&pl, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pl, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.DeliveryPriceList, error) {
	q := r.db.WithContext(ctx).Model(&models.DeliveryPriceList{})
	if filters.ProductID != nil {
		q = q.Where("product_id = ?", *filters.ProductID)
	}
	if filters.DeliveryCompanyID != nil {
		q = q.Where("delivery_company_id = ?", *filters.DeliveryCompanyID)
	}
	var rows []models.DeliveryPriceList
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindActive returns the first active match. Without a region filter the
// general price sorts first.
func (r *repository) FindActive(ctx context.Context, mq MatchQuery) (*models.DeliveryPriceList, error) {
	q := r.db.WithContext(ctx).
		Where("product_id = ? AND delivery_company_id = ? AND is_active = ?", mq.ProductID, mq.DeliveryCompanyID, true)
	if mq.Region != nil {
		q = q.Where("region = ?", *mq.Region)
	}
	var pl models.DeliveryPriceList
	if err := q.Order("region ASC").Order("created_at ASC").First(&pl).Error; err != nil {
		return nil, err
	}
	return &pl, nil
}

func (r *repository) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.Product{}, id)
}

func (r *repository) CompanyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.DeliveryCompany{}, id)
}

func (r *repository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
