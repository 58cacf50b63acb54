package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// Project scopes every BOQ, request and purchasing document. Floor and
// carport areas feed the per-sqm pricing derivation and may be absent.
type Project struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID       uuid.UUID           `gorm:"column:client_id;type:uuid;not null"`
	Name           string              `gorm:"column:name;not null"`
	Location       *string             `gorm:"column:location"`
	Status         enums.ProjectStatus `gorm:"column:status;type:text;not null;default:'PLANNING'"`
	TotalFloorArea *decimal.Decimal    `gorm:"column:total_floor_area;type:numeric(12,2)"`
	CarportArea    *decimal.Decimal    `gorm:"column:carport_area;type:numeric(12,2)"`
	StartDate      *time.Time          `gorm:"column:start_date"`
	Client         *Client             `gorm:"foreignKey:ClientID"`
	BoqItems       []BoqItem           `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
