package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ref ties a stock change to the order or note that caused it.
type Ref struct {
	OrderID *uuid.UUID
	Note    string
}

// Movement describes one applied stock change.
type Movement struct {
	ProductID uuid.UUID `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	Delta     int       `json:"delta"`
	NewStock  int       `json:"new_stock"`
}

// Ledger is the only writer of products.current_stock. Every method runs on
// the caller's transaction and appends a stock_movements row next to the
// guarded UPDATE, so a stock change never commits without its cause.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Debit removes qty units. It fails with INSUFFICIENT_STOCK when the product
// holds fewer than qty units, leaving stock untouched.
func (l *Ledger) Debit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, ref Ref) (Movement, error) {
	if err := requireTx(tx); err != nil {
		return Movement{}, err
	}
	if qty <= 0 {
		return Movement{}, pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET current_stock = current_stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_stock >= ?`,
		qty, productID, qty,
	)
	if res.Error != nil {
		return Movement{}, pkgerrors.FromDatabase(res.Error, "debit stock")
	}
	if res.RowsAffected == 0 {
		available, err := currentStock(ctx, tx, productID)
		if err != nil {
			return Movement{}, err
		}
		return Movement{}, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": productID.String(),
				"available":  available,
				"requested":  qty,
			})
	}

	return l.record(ctx, tx, productID, -qty, enums.StockMovementOrderDebit, ref)
}

// Credit returns qty units. qty of zero is a no-op.
func (l *Ledger) Credit(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, ref Ref) (Movement, error) {
	if err := requireTx(tx); err != nil {
		return Movement{}, err
	}
	if qty < 0 {
		return Movement{}, pkgerrors.New(pkgerrors.CodeValidation, "credit quantity cannot be negative")
	}
	if qty == 0 {
		stock, err := currentStock(ctx, tx, productID)
		if err != nil {
			return Movement{}, err
		}
		return Movement{ProductID: productID, OldStock: stock, NewStock: stock}, nil
	}

	if err := l.increment(ctx, tx, productID, qty); err != nil {
		return Movement{}, err
	}
	return l.record(ctx, tx, productID, qty, enums.StockMovementOrderCredit, ref)
}

// Restock adds a positive quantity received from a supplier.
func (l *Ledger) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, note string) (Movement, error) {
	if err := requireTx(tx); err != nil {
		return Movement{}, err
	}
	if qty <= 0 {
		return Movement{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero").
			WithDetails(map[string]any{"field": "quantity"})
	}
	if err := l.increment(ctx, tx, productID, qty); err != nil {
		return Movement{}, err
	}
	return l.record(ctx, tx, productID, qty, enums.StockMovementRestock, Ref{Note: note})
}

// Adjust applies a signed correction. The result may not drop below zero.
func (l *Ledger) Adjust(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, reason string) (Movement, error) {
	if err := requireTx(tx); err != nil {
		return Movement{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Movement{}, pkgerrors.New(pkgerrors.CodeValidation, "reason is required").
			WithDetails(map[string]any{"field": "reason"})
	}
	if delta == 0 {
		stock, err := currentStock(ctx, tx, productID)
		if err != nil {
			return Movement{}, err
		}
		return Movement{ProductID: productID, OldStock: stock, NewStock: stock}, nil
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET current_stock = current_stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_stock + ? >= 0`,
		delta, productID, delta,
	)
	if res.Error != nil {
		return Movement{}, pkgerrors.FromDatabase(res.Error, "adjust stock")
	}
	if res.RowsAffected == 0 {
		stock, err := currentStock(ctx, tx, productID)
		if err != nil {
			return Movement{}, err
		}
		return Movement{}, pkgerrors.New(pkgerrors.CodeNegativeStock, "stock cannot go negative").
			WithDetails(map[string]any{
				"product_id":    productID.String(),
				"current_stock": stock,
				"adjustment":    delta,
				"result":        stock + delta,
			})
	}

	return l.record(ctx, tx, productID, delta, enums.StockMovementAdjustment, Ref{Note: reason})
}

func (l *Ledger) increment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET current_stock = current_stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		qty, productID,
	)
	if res.Error != nil {
		return pkgerrors.FromDatabase(res.Error, "credit stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (l *Ledger) record(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, reason enums.StockMovementReason, ref Ref) (Movement, error) {
	after, err := currentStock(ctx, tx, productID)
	if err != nil {
		return Movement{}, err
	}

	row := models.StockMovement{
		ID:         uuid.New(),
		ProductID:  productID,
		Delta:      delta,
		Reason:     reason,
		OrderID:    ref.OrderID,
		StockAfter: after,
	}
	if note := strings.TrimSpace(ref.Note); note != "" {
		row.Note = &note
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return Movement{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}

	return Movement{
		ProductID: productID,
		OldStock:  after - delta,
		Delta:     delta,
		NewStock:  after,
	}, nil
}

func currentStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int, error) {
	var product models.Product
	err := tx.WithContext(ctx).
		Select("id", "current_stock").
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stock")
	}
	return product.CurrentStock, nil
}

func requireTx(tx *gorm.DB) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock change")
	}
	return nil
}
