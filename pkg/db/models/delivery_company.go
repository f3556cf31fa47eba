package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryCompany is a carrier account. APIKey never leaves the service layer.
type DeliveryCompany struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CompanyName   string    `gorm:"column:company_name;not null;uniqueIndex"`
	APIEndpoint   *string   `gorm:"column:api_endpoint"`
	APIKey        *string   `gorm:"column:api_key"`
	ContactPerson *string   `gorm:"column:contact_person"`
	ContactPhone  *string   `gorm:"column:contact_phone"`
	IsActive      bool      `gorm:"column:is_active;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
