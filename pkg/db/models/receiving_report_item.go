package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivingReportItem is one delivered line, keyed back to the PO item.
type ReceivingReportItem struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReceivingReportID   uuid.UUID       `gorm:"column:receiving_report_id;type:uuid;not null"`
	PurchaseOrderItemID uuid.UUID       `gorm:"column:purchase_order_item_id;type:uuid;not null"`
	QuantityReceived    decimal.Decimal `gorm:"column:quantity_received;type:numeric(14,4);not null;default:0"`
	Remarks             *string         `gorm:"column:remarks"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
