package pricelists

import (
	"context"
	"testing"

	"github.com/angelmondragon/dzorders-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dzorders-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       Service
	productID uuid.UUID
	companyID uuid.UUID
}

func setup(t *testing.T, name string) fixture {
	t.Helper()
	conn := dbtest.Open(t, name)
	product := models.Product{ID: uuid.New(), ProductName: "Blender", SKU: "BLD-1", Price: decimal.NewFromInt(5500)}
	require.NoError(t, conn.Create(&product).Error)
	company := models.DeliveryCompany{ID: uuid.New(), CompanyName: "Yalidine", IsActive: true}
	require.NoError(t, conn.Create(&company).Error)

	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)
	return fixture{svc: svc, productID: product.ID, companyID: company.ID}
}

func (f fixture) create(t *testing.T, name, region string, price int64) *PriceListDTO {
	t.Helper()
	dto, err := f.svc.Create(context.Background(), CreateInput{
		PriceListName:     name,
		ProductID:         f.productID,
		DeliveryCompanyID: f.companyID,
		PricePerUnit:      decimal.NewFromInt(price),
		Region:            region,
	})
	require.NoError(t, err)
	return dto
}

func TestCalculatePrefersRegionThenGeneral(t *testing.T) {
	f := setup(t, "pricelists_calc")
	ctx := context.Background()
	f.create(t, "general", "", 400)
	f.create(t, "algiers", "Alger", 300)

	quote, err := f.svc.Calculate(ctx, CalculateInput{ProductID: f.productID, DeliveryCompanyID: f.companyID, Quantity: 2, Region: "Alger"})
	require.NoError(t, err)
	assert.Equal(t, "algiers", quote.PriceListName)
	assert.True(t, quote.TotalPrice.Equal(decimal.NewFromInt(600)))

	quote, err = f.svc.Calculate(ctx, CalculateInput{ProductID: f.productID, DeliveryCompanyID: f.companyID, Quantity: 3, Region: "Oran"})
	require.NoError(t, err)
	assert.Equal(t, "general", quote.PriceListName)
	assert.Equal(t, "", quote.Region)
	assert.True(t, quote.TotalPrice.Equal(decimal.NewFromInt(1200)))

	quote, err = f.svc.Calculate(ctx, CalculateInput{ProductID: f.productID, DeliveryCompanyID: f.companyID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "general", quote.PriceListName)
}

func TestCalculateIgnoresInactiveAndReportsMissing(t *testing.T) {
	f := setup(t, "pricelists_inactive")
	ctx := context.Background()
	pl := f.create(t, "general", "", 400)
	inactive := false
	_, err := f.svc.Update(ctx, pl.ID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.svc.Calculate(ctx, CalculateInput{ProductID: f.productID, DeliveryCompanyID: f.companyID, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Calculate(ctx, CalculateInput{ProductID: f.productID, DeliveryCompanyID: f.companyID, Quantity: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateChecksReferences(t *testing.T) {
	f := setup(t, "pricelists_refs")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{PriceListName: "x", ProductID: uuid.New(), DeliveryCompanyID: f.companyID, PricePerUnit: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(ctx, CreateInput{PriceListName: "x", ProductID: f.productID, DeliveryCompanyID: uuid.New(), PricePerUnit: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(ctx, CreateInput{PriceListName: "x", ProductID: f.productID, DeliveryCompanyID: f.companyID, PricePerUnit: decimal.NewFromInt(-1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListFiltersAndDelete(t *testing.T) {
	f := setup(t, "pricelists_list")
	ctx := context.Background()
	first := f.create(t, "general", "", 400)
	f.create(t, "oran", "Oran", 450)

	rows, err := f.svc.List(ctx, ListFilters{ProductID: &f.productID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	other := uuid.New()
	rows, err = f.svc.List(ctx, ListFilters{DeliveryCompanyID: &other})
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, f.svc.Delete(ctx, first.ID))
	_, err = f.svc.Get(ctx, first.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, first.ID), pkgerrors.CodeNotFound))
}
