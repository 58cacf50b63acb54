package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// PurchaseOrder commits spend with a supplier, usually referencing the
// awarded quotation it was created from.
type PurchaseOrder struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PONumber       string                    `gorm:"column:po_number;not null;uniqueIndex:uq_purchase_orders_number"`
	ProjectID      uuid.UUID                 `gorm:"column:project_id;type:uuid;not null"`
	SupplierID     uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null"`
	QuotationID    *uuid.UUID                `gorm:"column:quotation_id;type:uuid"`
	Status         enums.PurchaseOrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalAmount    decimal.Decimal           `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	DeliveryTerms  *string                   `gorm:"column:delivery_terms"`
	PaymentTerms   *string                   `gorm:"column:payment_terms"`
	CreatedBy      uuid.UUID                 `gorm:"column:created_by;type:uuid;not null"`
	DecidedBy      *uuid.UUID                `gorm:"column:decided_by;type:uuid"`
	DecidedAt      *time.Time                `gorm:"column:decided_at"`
	DeclinedReason *string                   `gorm:"column:declined_reason"`
	Supplier       *Supplier                 `gorm:"foreignKey:SupplierID"`
	Items          []PurchaseOrderItem       `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
