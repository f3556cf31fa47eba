package inventory

import (
	"context"
	"testing"
	"time"

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
	svc, err := NewService(NewRepository(conn), NewLedger(), client, nil)
	require.NoError(t, err)
	return svc, conn
}

func seedOrder(t *testing.T, db *gorm.DB, product models.Product, qty int, status enums.OrderStatus, at time.Time) {
	t.Helper()
	o := models.Order{
		ID:              uuid.New(),
		CustomerName:    "Amina",
		CustomerPhone:   "+213551234567",
		CustomerAddress: "Oran",
		ProductID:       product.ID,
		Quantity:        qty,
		UnitPrice:       product.Price,
		TotalAmount:     product.Price.Mul(decimal.NewFromInt(int64(qty))),
		OrderSource:     enums.OrderSourceManual,
		OrderStatus:     status,
		OrderDate:       at,
	}
	require.NoError(t, db.Create(&o).Error)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(nil, NewLedger(), nil, nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestStatusAndAlerts(t *testing.T) {
	svc, db := newTestService(t, "inventory_status")
	seedProduct(t, db, "A", 0, "100")
	seedProduct(t, db, "B", 5, "200")
	seedProduct(t, db, "C", 50, "10")

	status, err := svc.Status(context.Background(), DefaultLowStockThreshold)
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalProducts)
	assert.Equal(t, 2, status.LowStockCount)
	assert.Equal(t, 1, status.OutOfStockCount)
	assert.True(t, status.TotalInventoryValue.Equal(decimal.NewFromInt(1500)), status.TotalInventoryValue.String())

	alerts, err := svc.Alerts(context.Background(), DefaultLowStockThreshold)
	require.NoError(t, err)
	require.Equal(t, 2, alerts.TotalAlerts)

	bySKU := map[string]Alert{}
	for _, a := range alerts.Alerts {
		bySKU[a.SKU] = a
	}
	assert.Equal(t, AlertTypeOutOfStock, bySKU["A"].Type)
	assert.Equal(t, SeverityCritical, bySKU["A"].Severity)
	assert.Equal(t, AlertTypeLowStock, bySKU["B"].Type)
	assert.Equal(t, SeverityWarning, bySKU["B"].Severity)
}

func TestMovementGroupsFulfilledOrders(t *testing.T) {
	svc, db := newTestService(t, "inventory_movement")
	a := seedProduct(t, db, "A", 10, "100")
	b := seedProduct(t, db, "B", 10, "100")
	now := time.Now().UTC()

	seedOrder(t, db, a, 1, enums.OrderStatusConfirmed, now.Add(-time.Hour))
	seedOrder(t, db, a, 2, enums.OrderStatusDelivered, now.Add(-2*time.Hour))
	seedOrder(t, db, b, 5, enums.OrderStatusShipped, now.Add(-time.Hour))
	seedOrder(t, db, b, 9, enums.OrderStatusCancelled, now.Add(-time.Hour))
	seedOrder(t, db, a, 7, enums.OrderStatusConfirmed, now.AddDate(0, 0, -60))

	report, err := svc.Movement(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, report.Movement, 2)
	assert.Equal(t, "B", report.Movement[0].SKU)
	assert.Equal(t, 5, report.Movement[0].TotalSold)
	assert.Equal(t, "A", report.Movement[1].SKU)
	assert.Equal(t, 3, report.Movement[1].TotalSold)
	assert.Equal(t, 2, report.Movement[1].OrdersCount)
	assert.Equal(t, 30, report.PeriodDays)
}

func TestRestockAdjustAndHistory(t *testing.T) {
	svc, db := newTestService(t, "inventory_restock")
	p := seedProduct(t, db, "A", 2, "100")
	ctx := context.Background()

	restocked, err := svc.Restock(ctx, RestockInput{ProductID: p.ID, Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, 2, restocked.OldStock)
	assert.Equal(t, 8, restocked.AddedQuantity)
	assert.Equal(t, 10, restocked.NewStock)

	_, err = svc.Adjust(ctx, AdjustInput{ProductID: p.ID, Adjustment: -11, Reason: "count"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNegativeStock))

	adjusted, err := svc.Adjust(ctx, AdjustInput{ProductID: p.ID, Adjustment: -4, Reason: "damaged"})
	require.NoError(t, err)
	assert.Equal(t, 6, adjusted.NewStock)
	assert.Equal(t, "damaged", adjusted.Reason)

	history, err := svc.History(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	_, err = svc.History(ctx, uuid.New(), 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Restock(ctx, RestockInput{ProductID: uuid.New(), Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
