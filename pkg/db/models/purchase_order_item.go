package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderItem is one ordered line; ReceivedQty accumulates from
// receiving reports and may exceed Quantity on over-delivery.
type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"column:purchase_order_id;type:uuid;not null"`
	Description     string          `gorm:"column:description;not null"`
	Unit            string          `gorm:"column:unit;not null"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null;default:0"`
	ReceivedQty     decimal.Decimal `gorm:"column:received_qty;type:numeric(14,4);not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
