package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// BoqItemComponent is one DUPA resource line behind a BOQ item's unit cost.
// Owned exclusively by its item; replaced wholesale on every item update.
type BoqItemComponent struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BoqItemID          uuid.UUID          `gorm:"column:boq_item_id;type:uuid;not null"`
	ResourceType       enums.ResourceType `gorm:"column:resource_type;type:text;not null"`
	Name               string             `gorm:"column:name;not null"`
	QuantityFactor     decimal.Decimal    `gorm:"column:quantity_factor;type:numeric(14,4);not null;default:0"`
	UnitRate           decimal.Decimal    `gorm:"column:unit_rate;type:numeric(14,4);not null;default:0"`
	TotalComponentCost decimal.Decimal    `gorm:"column:total_component_cost;type:numeric(14,4);not null;default:0"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
