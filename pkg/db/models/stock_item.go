package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem tracks the on-hand quantity of one material within a project.
type StockItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID    uuid.UUID       `gorm:"column:project_id;type:uuid;not null;uniqueIndex:uq_stock_items_project_material"`
	MaterialName string          `gorm:"column:material_name;not null;uniqueIndex:uq_stock_items_project_material"`
	Unit         string          `gorm:"column:unit;not null;uniqueIndex:uq_stock_items_project_material"`
	OnHandQty    decimal.Decimal `gorm:"column:on_hand_qty;type:numeric(14,4);not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
