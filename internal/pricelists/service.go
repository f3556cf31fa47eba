// Package pricelists stores per-product carrier prices and quotes delivery
// costs from them.
package pricelists

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, filters ListFilters) ([]PriceListDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PriceListDTO, error)
	Create(ctx context.Context, input CreateInput) (*PriceListDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PriceListDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Calculate(ctx context.Context, input CalculateInput) (*Quote, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("price list repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]PriceListDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price lists")
	}
	out := make([]PriceListDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PriceListDTO, error) {
	pl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(pl)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*PriceListDTO, error) {
	name := strings.TrimSpace(input.PriceListName)
	if name == "" {
		return nil, fieldError("price_list_name", "price_list_name is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, fieldError("product_id", "product_id is required")
	}
	if input.DeliveryCompanyID == uuid.Nil {
		return nil, fieldError("delivery_company_id", "delivery_company_id is required")
	}
	if input.PricePerUnit.IsNegative() {
		return nil, fieldError("price_per_unit", "price_per_unit must not be negative")
	}

	ok, err := s.repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	ok, err = s.repo.CompanyExists(ctx, input.DeliveryCompanyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check delivery company")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery company not found")
	}

	pl := &models.DeliveryPriceList{
		ID:                uuid.New(),
		PriceListName:     name,
		ProductID:         input.ProductID,
		DeliveryCompanyID: input.DeliveryCompanyID,
		PricePerUnit:      input.PricePerUnit,
		Region:            strings.TrimSpace(input.Region),
		IsActive:          true,
	}
	if input.IsActive != nil {
		pl.IsActive = *input.IsActive
	}
	if err := s.repo.Create(ctx, pl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert price list")
	}
	dto := FromModel(pl)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PriceListDTO, error) {
	pl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.PriceListName != nil {
		name := strings.TrimSpace(*input.PriceListName)
		if name == "" {
			return nil, fieldError("price_list_name", "price_list_name must not be empty")
		}
		pl.PriceListName = name
	}
	if input.PricePerUnit != nil {
		if input.PricePerUnit.IsNegative() {
			return nil, fieldError("price_per_unit", "price_per_unit must not be negative")
		}
		pl.PricePerUnit = *input.PricePerUnit
	}
	if input.Region != nil {
		pl.Region = strings.TrimSpace(*input.Region)
	}
	if input.IsActive != nil {
		pl.IsActive = *input.IsActive
	}
	if err := s.repo.Save(ctx, pl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update price list")
	}
	dto := FromModel(pl)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price list")
	}
	return nil
}

// Calculate quotes price_per_unit × quantity. With a region it tries the
// region's price and falls back to the general one.
func (s *service) Calculate(ctx context.Context, input CalculateInput) (*Quote, error) {
	if input.ProductID == uuid.Nil {
		return nil, fieldError("product_id", "product_id is required")
	}
	if input.DeliveryCompanyID == uuid.Nil {
		return nil, fieldError("delivery_company_id", "delivery_company_id is required")
	}
	if input.Quantity < 1 {
		return nil, fieldError("quantity", "quantity must be at least 1")
	}

	match := MatchQuery{ProductID: input.ProductID, DeliveryCompanyID: input.DeliveryCompanyID}
	region := strings.TrimSpace(input.Region)
	var pl *models.DeliveryPriceList
	var err error
	if region != "" {
		match.Region = &region
		pl, err = s.repo.FindActive(ctx, match)
		if err != nil && isNotFound(err) {
			general := ""
			match.Region = &general
			pl, err = s.repo.FindActive(ctx, match)
		}
	} else {
		pl, err = s.repo.FindActive(ctx, match)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no price list available for this product and delivery company").
				WithDetails(map[string]any{
					"product_id":          input.ProductID.String(),
					"delivery_company_id": input.DeliveryCompanyID.String(),
				})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find price list")
	}

	return &Quote{
		PriceListID:   pl.ID,
		PriceListName: pl.PriceListName,
		PricePerUnit:  pl.PricePerUnit,
		Quantity:      input.Quantity,
		TotalPrice:    pl.PricePerUnit.Mul(decimal.NewFromInt(int64(input.Quantity))),
		Region:        pl.Region,
	}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.DeliveryPriceList, error) {
	pl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price list not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price list")
	}
	return pl, nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}
