package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BoqItem is a project-scoped budget line. Its unit prices are derived from
// the attached components when components exist, otherwise entered directly.
type BoqItem struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID         uuid.UUID          `gorm:"column:project_id;type:uuid;not null;uniqueIndex:uq_boq_items_project_description"`
	ItemDescription   string             `gorm:"column:item_description;not null;uniqueIndex:uq_boq_items_project_description"`
	Unit              string             `gorm:"column:unit;not null"`
	Quantity          decimal.Decimal    `gorm:"column:quantity;type:numeric(14,4);not null;default:0"`
	MaterialUnitPrice decimal.Decimal    `gorm:"column:material_unit_price;type:numeric(14,2);not null;default:0"`
	LaborUnitPrice    decimal.Decimal    `gorm:"column:labor_unit_price;type:numeric(14,2);not null;default:0"`
	IsCarport         bool               `gorm:"column:is_carport;not null;default:false"`
	Components        []BoqItemComponent `gorm:"foreignKey:BoqItemID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
