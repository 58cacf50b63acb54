package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialRequestItem is one requested material line.
type MaterialRequestItem struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MaterialRequestID uuid.UUID       `gorm:"column:material_request_id;type:uuid;not null"`
	Description       string          `gorm:"column:description;not null"`
	Unit              string          `gorm:"column:unit;not null"`
	Quantity          decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null;default:0"`
	EstimatedPrice    decimal.Decimal `gorm:"column:estimated_price;type:numeric(14,2);not null;default:0"`
	TotalPrice        decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
