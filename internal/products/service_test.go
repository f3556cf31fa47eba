package products

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/dzorders-backend/internal/inventory"
	"github.com/angelmondragon/dzorders-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/angelmondragon/dzorders-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, name string) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t, name)
	svc, err := NewService(NewRepository(conn), inventory.NewLedger(), client, nil)
	require.NoError(t, err)
	return svc, conn
}

func countMovements(t *testing.T, db *gorm.DB, productID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.StockMovement{}).Where("product_id = ?", productID).Count(&n).Error)
	return n
}

func TestCreateBooksOpeningStock(t *testing.T) {
	svc, db := newTestService(t, "products_create")
	cost := decimal.NewFromInt(1500)

	dto, err := svc.Create(context.Background(), CreateInput{
		ProductName:  "  Smart Watch ",
		SKU:          "SW-01",
		Price:        decimal.NewFromInt(3500),
		CostPrice:    &cost,
		CurrentStock: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "Smart Watch", dto.ProductName)
	assert.Equal(t, 25, dto.CurrentStock)
	assert.Equal(t, 25, dto.InitialStock)
	assert.True(t, dto.CostPrice.Valid)
	assert.Equal(t, int64(1), countMovements(t, db, dto.ID))

	_, err = svc.Create(context.Background(), CreateInput{ProductName: "Dup", SKU: "SW-01", Price: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t, "products_validation")
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{SKU: "X", Price: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, CreateInput{ProductName: "X", SKU: "X", Price: decimal.NewFromInt(-1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, CreateInput{ProductName: "X", SKU: "X", Price: decimal.NewFromInt(1), CurrentStock: -3})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateLeavesStockAlone(t *testing.T) {
	svc, _ := newTestService(t, "products_update")
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{ProductName: "Lamp", SKU: "LMP", Price: decimal.NewFromInt(900), CurrentStock: 7})
	require.NoError(t, err)

	name := "Desk Lamp"
	price := decimal.NewFromInt(1100)
	dto, err := svc.Update(ctx, "LMP", UpdateInput{ProductName: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", dto.ProductName)
	assert.True(t, dto.Price.Equal(price))
	assert.Equal(t, 7, dto.CurrentStock)

	_, err = svc.Update(ctx, "NOPE", UpdateInput{ProductName: &name})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSetStockGoesThroughLedger(t *testing.T) {
	svc, db := newTestService(t, "products_set_stock")
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateInput{ProductName: "Mug", SKU: "MUG", Price: decimal.NewFromInt(300), CurrentStock: 10})
	require.NoError(t, err)

	change, err := svc.SetStock(ctx, "MUG", 4)
	require.NoError(t, err)
	assert.Equal(t, 10, change.OldStock)
	assert.Equal(t, 4, change.NewStock)
	assert.Equal(t, 4, change.Product.CurrentStock)

	var last models.StockMovement
	require.NoError(t, db.Where("product_id = ?", created.ID).Order("created_at DESC, stock_after ASC").First(&last).Error)
	assert.Equal(t, enums.StockMovementAdjustment, last.Reason)
	assert.Equal(t, -6, last.Delta)
	require.NotNil(t, last.Note)
	assert.Equal(t, ManualStockReason, *last.Note)

	change, err = svc.SetStock(ctx, "MUG", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, change.NewStock)
	assert.Equal(t, int64(2), countMovements(t, db, created.ID))

	_, err = svc.SetStock(ctx, "MUG", -1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteRefusesProductsWithOrders(t *testing.T) {
	svc, db := newTestService(t, "products_delete")
	ctx := context.Background()
	used, err := svc.Create(ctx, CreateInput{ProductName: "Bag", SKU: "BAG", Price: decimal.NewFromInt(2000), CurrentStock: 3})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{ProductName: "Hat", SKU: "HAT", Price: decimal.NewFromInt(800)})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Order{
		ID:              uuid.New(),
		CustomerName:    "Rania",
		CustomerPhone:   "+213661234567",
		CustomerAddress: "Blida",
		ProductID:       used.ID,
		Quantity:        1,
		UnitPrice:       used.Price,
		TotalAmount:     used.Price,
		OrderSource:     enums.OrderSourceManual,
		OrderStatus:     enums.OrderStatusPending,
		OrderDate:       time.Now().UTC(),
	}).Error)

	err = svc.Delete(ctx, "BAG")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	require.NoError(t, svc.Delete(ctx, "HAT"))
	_, err = svc.Get(ctx, "HAT")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
