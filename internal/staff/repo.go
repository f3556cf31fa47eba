package staff

import (
	"context"
	"errors"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *models.Staff) error
	Save(ctx context.Context, member *models.Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
	List(ctx context.Context, filters ListFilters) ([]models.Staff, error)
	DetachOrders(ctx context.Context, id uuid.UUID) error
}

// ListFilters narrows List. Nil fields are ignored.
type ListFilters struct {
	Role     *string
	IsActive *bool
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

func (r *repository) Create(ctx context.Context, member *models.Staff) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) Save(ctx context.Context, member *models.Staff) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Staff{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	var member models.Staff
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Staff, error) {
	q := r.db.WithContext(ctx).Model(&models.Staff{})
	if filters.Role != nil {
		q = q.Where("role = ?", *filters.Role)
	}
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}
	var rows []models.Staff
	if err := q.Order("staff_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DetachOrders clears the confirmation assignment on every order handled by
// the staff member.
func (r *repository) DetachOrders(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("confirmation_staff_id = ?", id).
		Update("confirmation_staff_id", nil).Error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
