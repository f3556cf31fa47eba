package products

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/dzorders-backend/internal/inventory"
	"github.com/angelmondragon/dzorders-backend/pkg/db"
	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog management keyed by SKU.
type Service interface {
	List(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, sku string) (*ProductDTO, error)
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, sku string, input UpdateInput) (*ProductDTO, error)
	SetStock(ctx context.Context, sku string, target int) (*StockChange, error)
	Delete(ctx context.Context, sku string) error
}

// stockLedger is the part of inventory.Ledger products needs.
type stockLedger interface {
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, note string) (inventory.Movement, error)
	Adjust(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, reason string) (inventory.Movement, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	ledger stockLedger
	tx     txRunner
	logg   *logger.Logger
}

func NewService(repo Repository, ledger stockLedger, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, ledger: ledger, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, sku string) (*ProductDTO, error) {
	product, err := s.load(ctx, s.repo, sku)
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

// Create inserts the product with zero stock and then books the opening
// stock through the ledger so it shows up in the movement history.
func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	input.ProductName = strings.TrimSpace(input.ProductName)
	input.SKU = strings.TrimSpace(input.SKU)
	if input.ProductName == "" {
		return nil, fieldError("product_name", "product_name is required")
	}
	if input.SKU == "" {
		return nil, fieldError("sku", "sku is required")
	}
	if input.Price.IsNegative() {
		return nil, fieldError("price", "price must not be negative")
	}
	if input.CostPrice != nil && input.CostPrice.IsNegative() {
		return nil, fieldError("cost_price", "cost_price must not be negative")
	}
	if input.CurrentStock < 0 {
		return nil, fieldError("current_stock", "current_stock must not be negative")
	}
	initial := input.CurrentStock
	if input.InitialStock != nil {
		if *input.InitialStock < 0 {
			return nil, fieldError("initial_stock", "initial_stock must not be negative")
		}
		initial = *input.InitialStock
	}

	product := &models.Product{
		ID:           uuid.New(),
		ProductName:  input.ProductName,
		SKU:          input.SKU,
		Description:  input.Description,
		Price:        input.Price,
		InitialStock: initial,
	}
	if input.CostPrice != nil {
		product.CostPrice = decimal.NewNullDecimal(*input.CostPrice)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.FindBySKU(ctx, product.SKU); err == nil {
			return skuConflict(product.SKU)
		} else if !isNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
		}
		if err := txRepo.Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return skuConflict(product.SKU)
			}
			return pkgerrors.FromDatabase(err, "insert product")
		}
		if input.CurrentStock > 0 {
			if _, err := s.ledger.Restock(ctx, tx, product.ID, input.CurrentStock, "opening stock"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "sku", product.SKU), "product.created")
	}
	return s.Get(ctx, product.SKU)
}

func (s *service) Update(ctx context.Context, sku string, input UpdateInput) (*ProductDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := s.load(ctx, txRepo, sku)
		if err != nil {
			return err
		}
		if input.ProductName != nil {
			name := strings.TrimSpace(*input.ProductName)
			if name == "" {
				return fieldError("product_name", "product_name must not be empty")
			}
			product.ProductName = name
		}
		if input.Description != nil {
			product.Description = input.Description
		}
		if input.Price != nil {
			if input.Price.IsNegative() {
				return fieldError("price", "price must not be negative")
			}
			product.Price = *input.Price
		}
		if input.CostPrice != nil {
			if input.CostPrice.IsNegative() {
				return fieldError("cost_price", "cost_price must not be negative")
			}
			product.CostPrice = decimal.NewNullDecimal(*input.CostPrice)
		}
		if input.InitialStock != nil {
			if *input.InitialStock < 0 {
				return fieldError("initial_stock", "initial_stock must not be negative")
			}
			product.InitialStock = *input.InitialStock
		}
		product.UpdatedAt = time.Now().UTC()
		if err := txRepo.Update(ctx, product); err != nil {
			return pkgerrors.FromDatabase(err, "update product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, sku)
}

// SetStock moves current_stock to target through Ledger.Adjust.
func (s *service) SetStock(ctx context.Context, sku string, target int) (*StockChange, error) {
	if target < 0 {
		return nil, fieldError("current_stock", "current_stock must not be negative")
	}

	change := &StockChange{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.load(ctx, s.repo.WithTx(tx), sku)
		if err != nil {
			return err
		}
		change.OldStock = product.CurrentStock
		change.NewStock = product.CurrentStock
		delta := target - product.CurrentStock
		if delta == 0 {
			return nil
		}
		mv, err := s.ledger.Adjust(ctx, tx, product.ID, delta, ManualStockReason)
		if err != nil {
			return err
		}
		change.OldStock = mv.OldStock
		change.NewStock = mv.NewStock
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.Get(ctx, sku)
	if err != nil {
		return nil, err
	}
	change.Product = *dto
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"sku":       sku,
			"old_stock": change.OldStock,
			"new_stock": change.NewStock,
		})
		s.logg.Info(logCtx, "product.stock_set")
	}
	return change, nil
}

// Delete refuses products that still have orders.
func (s *service) Delete(ctx context.Context, sku string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := s.load(ctx, txRepo, sku)
		if err != nil {
			return err
		}
		count, err := txRepo.CountOrders(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count product orders")
		}
		if count > 0 {
			return inUse(sku, count)
		}
		if err := txRepo.Delete(ctx, product.ID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return inUse(sku, count)
			}
			return pkgerrors.FromDatabase(err, "delete product")
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, repo Repository, sku string) (*models.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, fieldError("sku", "sku is required")
	}
	product, err := repo.FindBySKU(ctx, sku)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"sku": sku})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}

func skuConflict(sku string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists").WithDetails(map[string]any{"sku": sku})
}

func inUse(sku string, orders int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "product has orders and cannot be deleted").
		WithDetails(map[string]any{"sku": sku, "orders": orders})
}
