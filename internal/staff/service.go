package staff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/internal/orders"
	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateInput struct {
	StaffName    string
	Role         *string
	ContactPhone *string
	IsActive     *bool
}

type UpdateInput struct {
	StaffName    *string
	Role         *string
	ContactPhone *string
	IsActive     *bool
}

type StaffDTO struct {
	ID           uuid.UUID `json:"staff_id"`
	StaffName    string    `json:"staff_name"`
	Role         *string   `json:"role"`
	ContactPhone *string   `json:"contact_phone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromModel(m *models.Staff) StaffDTO {
	return StaffDTO{
		ID:           m.ID,
		StaffName:    m.StaffName,
		Role:         m.Role,
		ContactPhone: m.ContactPhone,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// StaffOrders is a staff member with the orders they confirmed.
type StaffOrders struct {
	Staff       StaffDTO          `json:"staff"`
	Orders      []orders.OrderDTO `json:"orders"`
	TotalOrders int               `json:"total_orders"`
}

type Service interface {
	List(ctx context.Context, filters ListFilters) ([]StaffDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*StaffDTO, error)
	Create(ctx context.Context, input CreateInput) (*StaffDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*StaffDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Orders(ctx context.Context, id uuid.UUID) (*StaffOrders, error)
}

type orderLister interface {
	ListByStaff(ctx context.Context, staffID uuid.UUID) ([]orders.OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	orders orderLister
	tx     txRunner
	logg   *logger.Logger
}

func NewService(repo Repository, orders orderLister, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, orders: orders, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]StaffDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff")
	}
	out := make([]StaffDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*StaffDTO, error) {
	member, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(member)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*StaffDTO, error) {
	name := strings.TrimSpace(input.StaffName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff_name is required").
			WithDetails(map[string]any{"field": "staff_name"})
	}
	member := &models.Staff{
		ID:           uuid.New(),
		StaffName:    name,
		Role:         input.Role,
		ContactPhone: input.ContactPhone,
		IsActive:     true,
	}
	if input.IsActive != nil {
		member.IsActive = *input.IsActive
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert staff")
	}
	dto := FromModel(member)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*StaffDTO, error) {
	member, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if input.StaffName != nil {
		name := strings.TrimSpace(*input.StaffName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff_name must not be empty").
				WithDetails(map[string]any{"field": "staff_name"})
		}
		member.StaffName = name
	}
	if input.Role != nil {
		member.Role = input.Role
	}
	if input.ContactPhone != nil {
		member.ContactPhone = input.ContactPhone
	}
	if input.IsActive != nil {
		member.IsActive = *input.IsActive
	}
	if err := s.repo.Save(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update staff")
	}
	dto := FromModel(member)
	return &dto, nil
}

// Delete removes the staff member and unassigns their orders.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, txRepo, id); err != nil {
			return err
		}
		if err := txRepo.DetachOrders(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach staff orders")
		}
		if err := txRepo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete staff")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "staff_id", id.String()), "staff.deleted")
	}
	return nil
}

func (s *service) Orders(ctx context.Context, id uuid.UUID) (*StaffOrders, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.orders.ListByStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StaffOrders{Staff: *member, Orders: rows, TotalOrders: len(rows)}, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Staff, error) {
	member, err := repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff")
	}
	return member, nil
}
