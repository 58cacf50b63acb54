package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// Invoice is a supplier bill against a purchase order. MatchResult and the
// variance fields are written by the 3-way match and never recomputed ad hoc.
type Invoice struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber   string            `gorm:"column:invoice_number;not null"`
	PurchaseOrderID uuid.UUID         `gorm:"column:purchase_order_id;type:uuid;not null"`
	SupplierID      uuid.UUID         `gorm:"column:supplier_id;type:uuid;not null"`
	Amount          decimal.Decimal   `gorm:"column:amount;type:numeric(14,2);not null;default:0"`
	InvoiceDate     time.Time         `gorm:"column:invoice_date;not null"`
	DueDate         *time.Time        `gorm:"column:due_date"`
	Status          enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'RECEIVED'"`
	MatchResult     enums.MatchResult `gorm:"column:match_result;type:text;not null;default:'UNMATCHED'"`
	MatchVariance   *decimal.Decimal  `gorm:"column:match_variance;type:numeric(14,2)"`
	MatchNotes      *string           `gorm:"column:match_notes"`
	MatchedAt       *time.Time        `gorm:"column:matched_at"`
	ApprovedBy      *uuid.UUID        `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time        `gorm:"column:approved_at"`
	Disbursements   []Disbursement    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
