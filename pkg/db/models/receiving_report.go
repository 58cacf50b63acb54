package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceivingReport (GRN) records delivered quantities against a purchase order.
type ReceivingReport struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GRNNumber       string                `gorm:"column:grn_number;not null;uniqueIndex:uq_receiving_reports_number"`
	PurchaseOrderID uuid.UUID             `gorm:"column:purchase_order_id;type:uuid;not null"`
	ReceivedBy      uuid.UUID             `gorm:"column:received_by;type:uuid;not null"`
	ReceivedAt      time.Time             `gorm:"column:received_at;not null"`
	DeliveryRef     *string               `gorm:"column:delivery_ref"`
	Notes           *string               `gorm:"column:notes"`
	Items           []ReceivingReportItem `gorm:"foreignKey:ReceivingReportID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
