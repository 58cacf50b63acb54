package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierQuotation is a supplier's priced response to an RFQ. Exactly one
// quotation per RFQ may carry IsSelected after an award.
type SupplierQuotation struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RFQID       uuid.UUID       `gorm:"column:rfq_id;type:uuid;not null"`
	SupplierID  uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	IsSelected  bool            `gorm:"column:is_selected;not null;default:false"`
	ValidUntil  *time.Time      `gorm:"column:valid_until"`
	Notes       *string         `gorm:"column:notes"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID"`
	Items       []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
