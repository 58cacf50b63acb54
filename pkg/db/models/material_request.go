package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// MaterialRequest is a site request for materials, priced from its item rows.
type MaterialRequest struct {
	ID            uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestNumber string                      `gorm:"column:request_number;not null;uniqueIndex:uq_material_requests_number"`
	ProjectID     uuid.UUID                   `gorm:"column:project_id;type:uuid;not null"`
	RequestedBy   uuid.UUID                   `gorm:"column:requested_by;type:uuid;not null"`
	Status        enums.MaterialRequestStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	NeededBy      *time.Time                  `gorm:"column:needed_by"`
	Purpose       *string                     `gorm:"column:purpose"`
	TotalAmount   decimal.Decimal             `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	DecidedBy     *uuid.UUID                  `gorm:"column:decided_by;type:uuid"`
	DecidedAt     *time.Time                  `gorm:"column:decided_at"`
	Items         []MaterialRequestItem       `gorm:"foreignKey:MaterialRequestID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
