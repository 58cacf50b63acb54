package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a vendor that quotes against RFQs and fulfills purchase orders.
type Supplier struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	ContactPerson *string   `gorm:"column:contact_person"`
	Phone         *string   `gorm:"column:phone"`
	Email         *string   `gorm:"column:email"`
	Address       *string   `gorm:"column:address"`
	TIN           *string   `gorm:"column:tin"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
