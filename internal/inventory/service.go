package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/angelmondragon/dzorders-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes stock reports and the operator-facing stock changes.
type Service interface {
	Status(ctx context.Context, threshold int) (*StatusReport, error)
	Alerts(ctx context.Context, threshold int) (*AlertsReport, error)
	Movement(ctx context.Context, days int) (*MovementReport, error)
	Restock(ctx context.Context, input RestockInput) (*RestockResult, error)
	Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error)
	History(ctx context.Context, productID uuid.UUID, limit int) ([]MovementDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	ledger *Ledger
	tx     txRunner
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, ledger *Ledger, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Status(ctx context.Context, threshold int) (*StatusReport, error) {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	report := &StatusReport{
		TotalProducts:       len(products),
		TotalInventoryValue: decimal.Zero,
		LowStockThreshold:   threshold,
		LowStockProducts:    []StockItem{},
		OutOfStockProducts:  []StockItem{},
	}
	for _, p := range products {
		if p.CurrentStock <= threshold {
			report.LowStockProducts = append(report.LowStockProducts, toStockItem(p))
		}
		if p.CurrentStock <= 0 {
			report.OutOfStockProducts = append(report.OutOfStockProducts, toStockItem(p))
		}
		report.TotalInventoryValue = report.TotalInventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.CurrentStock))))
	}
	report.LowStockCount = len(report.LowStockProducts)
	report.OutOfStockCount = len(report.OutOfStockProducts)
	return report, nil
}

func (s *service) Alerts(ctx context.Context, threshold int) (*AlertsReport, error) {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	alerts := []Alert{}
	for _, p := range products {
		switch {
		case p.CurrentStock <= 0:
			alerts = append(alerts, Alert{
				Type:         AlertTypeOutOfStock,
				Severity:     SeverityCritical,
				ProductID:    p.ID,
				ProductName:  p.ProductName,
				SKU:          p.SKU,
				CurrentStock: p.CurrentStock,
				Message:      fmt.Sprintf("product %s is out of stock", p.ProductName),
			})
		case p.CurrentStock <= threshold:
			alerts = append(alerts, Alert{
				Type:         AlertTypeLowStock,
				Severity:     SeverityWarning,
				ProductID:    p.ID,
				ProductName:  p.ProductName,
				SKU:          p.SKU,
				CurrentStock: p.CurrentStock,
				Message:      fmt.Sprintf("product %s is low on stock (%d left)", p.ProductName, p.CurrentStock),
			})
		}
	}
	return &AlertsReport{Alerts: alerts, TotalAlerts: len(alerts)}, nil
}

func (s *service) Movement(ctx context.Context, days int) (*MovementReport, error) {
	if days <= 0 {
		days = DefaultMovementDays
	}
	start := s.now().AddDate(0, 0, -days)
	orders, err := s.repo.ListFulfilledOrdersSince(ctx, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	byProduct := map[uuid.UUID]*MovementRow{}
	for _, o := range orders {
		row, ok := byProduct[o.ProductID]
		if !ok {
			row = &MovementRow{ProductID: o.ProductID}
			if o.Product != nil {
				row.ProductName = o.Product.ProductName
				row.SKU = o.Product.SKU
				row.CurrentStock = o.Product.CurrentStock
			}
			byProduct[o.ProductID] = row
		}
		row.TotalSold += o.Quantity
		row.OrdersCount++
	}

	rows := make([]MovementRow, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalSold == rows[j].TotalSold {
			return rows[i].SKU < rows[j].SKU
		}
		return rows[i].TotalSold > rows[j].TotalSold
	})

	return &MovementReport{
		PeriodDays:    days,
		StartDate:     start,
		Movement:      rows,
		TotalProducts: len(rows),
	}, nil
}

func (s *service) Restock(ctx context.Context, input RestockInput) (*RestockResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}

	var mv Movement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		mv, err = s.ledger.Restock(ctx, tx, input.ProductID, input.Quantity, input.Note)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logStockChange(ctx, "inventory.restocked", mv)
	return &RestockResult{
		ProductID:     mv.ProductID,
		OldStock:      mv.OldStock,
		AddedQuantity: mv.Delta,
		NewStock:      mv.NewStock,
	}, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}

	var mv Movement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		mv, err = s.ledger.Adjust(ctx, tx, input.ProductID, input.Adjustment, input.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logStockChange(ctx, "inventory.adjusted", mv)
	return &AdjustResult{
		ProductID:  mv.ProductID,
		OldStock:   mv.OldStock,
		Adjustment: input.Adjustment,
		NewStock:   mv.NewStock,
		Reason:     input.Reason,
	}, nil
}

func (s *service) History(ctx context.Context, productID uuid.UUID, limit int) ([]MovementDTO, error) {
	if _, err := s.repo.FindProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.repo.ListMovements(ctx, productID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	out := make([]MovementDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMovementDTO(row))
	}
	return out, nil
}

func (s *service) logStockChange(ctx context.Context, event string, mv Movement) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_id": mv.ProductID.String(),
		"old_stock":  mv.OldStock,
		"new_stock":  mv.NewStock,
	})
	s.logg.Info(ctx, event)
}
