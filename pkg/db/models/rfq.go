package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// RFQ solicits supplier pricing for a set of item lines, usually raised from
// an approved material request.
type RFQ struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RFQNumber         string              `gorm:"column:rfq_number;not null;uniqueIndex:uq_rfqs_number"`
	ProjectID         uuid.UUID           `gorm:"column:project_id;type:uuid;not null"`
	MaterialRequestID *uuid.UUID          `gorm:"column:material_request_id;type:uuid"`
	Status            enums.RFQStatus     `gorm:"column:status;type:text;not null;default:'OPEN'"`
	CreatedBy         uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	QuoteDeadline     *time.Time          `gorm:"column:quote_deadline"`
	Notes             *string             `gorm:"column:notes"`
	Items             []RFQItem           `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
	Quotations        []SupplierQuotation `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
