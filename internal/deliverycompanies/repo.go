package deliverycompanies

import (
	"context"
	"errors"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, company *models.DeliveryCompany) error
	Save(ctx context.Context, company *models.DeliveryCompany) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryCompany, error)
	FindByName(ctx context.Context, name string) (*models.DeliveryCompany, error)
	List(ctx context.Context, activeOnly bool) ([]models.DeliveryCompany, error)
	DetachOrders(ctx context.Context, id uuid.UUID) error
	DeletePriceLists(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, company *models.DeliveryCompany) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *repository) Save(ctx context.Context, company *models.DeliveryCompany) error {
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DeliveryCompany{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryCompany, error) {
	var company models.DeliveryCompany
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByName matches company_name case-insensitively.
func (r *repository) FindByName(ctx context.Context, name string) (*models.DeliveryCompany, error) {
	var company models.DeliveryCompany
	if err := r.db.WithContext(ctx).Where("LOWER(company_name) = LOWER(?)", name).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.DeliveryCompany, error) {
	q := r.db.WithContext(ctx).Model(&models.DeliveryCompany{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.DeliveryCompany
	if err := q.Order("company_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DetachOrders(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("delivery_company_id = ?", id).
		Update("delivery_company_id", nil).Error
}

func (r *repository) DeletePriceLists(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("delivery_company_id = ?", id).
		Delete(&models.DeliveryPriceList{}).Error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
