package pricelists

import (
	"time"

	"github.com/angelmondragon/dzorders-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateInput struct {
	PriceListName     string
	ProductID         uuid.UUID
	DeliveryCompanyID uuid.UUID
	PricePerUnit      decimal.Decimal
	Region            string
	IsActive          *bool
}

type UpdateInput struct {
	PriceListName *string
	PricePerUnit  *decimal.Decimal
	Region        *string
	IsActive      *bool
}

type CalculateInput struct {
	ProductID         uuid.UUID
	DeliveryCompanyID uuid.UUID
	Quantity          int
	Region            string
}

type PriceListDTO struct {
	ID                uuid.UUID       `json:"price_list_id"`
	PriceListName     string          `json:"price_list_name"`
	ProductID         uuid.UUID       `json:"product_id"`
	DeliveryCompanyID uuid.UUID       `json:"delivery_company_id"`
	PricePerUnit      decimal.Decimal `json:"price_per_unit"`
	Region            string          `json:"region"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type Quote struct {
	PriceListID   uuid.UUID       `json:"price_list_id"`
	PriceListName string          `json:"price_list_name"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Region        string          `json:"region"`
}

func FromModel(m *models.DeliveryPriceList) PriceListDTO {
	return PriceListDTO{
		ID:                m.ID,
		PriceListName:     m.PriceListName,
		ProductID:         m.ProductID,
		DeliveryCompanyID: m.DeliveryCompanyID,
		PricePerUnit:      m.PricePerUnit,
		Region:            m.Region,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
