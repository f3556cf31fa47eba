package models

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StaffName    string    `gorm:"column:staff_name;not null"`
	Role         *string   `gorm:"column:role"`
	ContactPhone *string   `gorm:"column:contact_phone"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table name used by the migrations.
func (Staff) TableName() string {
	return "staff"
}
