package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// StockMovement is one ledger entry against a stock item. Quantity is always
// positive; the movement type carries the direction.
type StockMovement struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StockItemID uuid.UUID               `gorm:"column:stock_item_id;type:uuid;not null"`
	Type        enums.StockMovementType `gorm:"column:type;type:text;not null"`
	Quantity    decimal.Decimal         `gorm:"column:quantity;type:numeric(14,4);not null"`
	RefType     *string                 `gorm:"column:ref_type"`
	RefID       *uuid.UUID              `gorm:"column:ref_id;type:uuid"`
	Notes       *string                 `gorm:"column:notes"`
	CreatedBy   uuid.UUID               `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}
