package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Disbursement records a payment made against an approved invoice.
type Disbursement struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	PaidAt    time.Time       `gorm:"column:paid_at;not null"`
	Method    *string         `gorm:"column:method"`
	Reference *string         `gorm:"column:reference"`
	CreatedBy uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
