// Package deliverycompanies manages the carrier accounts orders are assigned
// to. API keys are stored but never returned.
package deliverycompanies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db"
	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateInput struct {
	CompanyName   string
	APIEndpoint   *string
	APIKey        *string
	ContactPerson *string
	ContactPhone  *string
	IsActive      *bool
}

type UpdateInput struct {
	CompanyName   *string
	APIEndpoint   *string
	APIKey        *string
	ContactPerson *string
	ContactPhone  *string
	IsActive      *bool
}

type CompanyDTO struct {
	ID            uuid.UUID `json:"company_id"`
	CompanyName   string    `json:"company_name"`
	APIEndpoint   *string   `json:"api_endpoint"`
	HasAPIKey     bool      `json:"has_api_key"`
	ContactPerson *string   `json:"contact_person"`
	ContactPhone  *string   `json:"contact_phone"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromModel(m *models.DeliveryCompany) CompanyDTO {
	return CompanyDTO{
		ID:            m.ID,
		CompanyName:   m.CompanyName,
		APIEndpoint:   m.APIEndpoint,
		HasAPIKey:     m.APIKey != nil && strings.TrimSpace(*m.APIKey) != "",
		ContactPerson: m.ContactPerson,
		ContactPhone:  m.ContactPhone,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type Service interface {
	List(ctx context.Context) ([]CompanyDTO, error)
	ListActive(ctx context.Context) ([]CompanyDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error)
	Create(ctx context.Context, input CreateInput) (*CompanyDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CompanyDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery company repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]CompanyDTO, error) {
	return s.list(ctx, false)
}

func (s *service) ListActive(ctx context.Context) ([]CompanyDTO, error) {
	return s.list(ctx, true)
}

func (s *service) list(ctx context.Context, activeOnly bool) ([]CompanyDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery companies")
	}
	out := make([]CompanyDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(company)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CompanyDTO, error) {
	name := strings.TrimSpace(input.CompanyName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name is required").
			WithDetails(map[string]any{"field": "company_name"})
	}
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	company := &models.DeliveryCompany{
		ID:            uuid.New(),
		CompanyName:   name,
		APIEndpoint:   input.APIEndpoint,
		APIKey:        input.APIKey,
		ContactPerson: input.ContactPerson,
		ContactPhone:  input.ContactPhone,
		IsActive:      true,
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}
	if err := s.repo.Create(ctx, company); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, nameConflict(name)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert delivery company")
	}
	dto := FromModel(company)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CompanyDTO, error) {
	company, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if input.CompanyName != nil {
		name := strings.TrimSpace(*input.CompanyName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name must not be empty").
				WithDetails(map[string]any{"field": "company_name"})
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		company.CompanyName = name
	}
	if input.APIEndpoint != nil {
		company.APIEndpoint = input.APIEndpoint
	}
	if input.APIKey != nil {
		company.APIKey = input.APIKey
	}
	if input.ContactPerson != nil {
		company.ContactPerson = input.ContactPerson
	}
	if input.ContactPhone != nil {
		company.ContactPhone = input.ContactPhone
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}
	if err := s.repo.Save(ctx, company); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, nameConflict(company.CompanyName)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery company")
	}
	dto := FromModel(company)
	return &dto, nil
}

// Delete unassigns the company from orders and drops its price lists.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, txRepo, id); err != nil {
			return err
		}
		if err := txRepo.DetachOrders(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach company orders")
		}
		if err := txRepo.DeletePriceLists(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete company price lists")
		}
		if err := txRepo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete delivery company")
		}
		return nil
	})
}

func (s *service) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check company name")
	}
	if existing.ID == self {
		return nil
	}
	return nameConflict(name)
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.DeliveryCompany, error) {
	company, err := repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery company")
	}
	return company, nil
}

func nameConflict(name string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "company name already exists").
		WithDetails(map[string]any{"company_name": name})
}
