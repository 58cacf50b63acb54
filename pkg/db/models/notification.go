package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// Notification fans a workflow event out to a role (or a specific user).
type Notification struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientRole *enums.UserRole        `gorm:"column:recipient_role;type:text"`
	RecipientID   *uuid.UUID             `gorm:"column:recipient_id;type:uuid"`
	Type          enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title         string                 `gorm:"column:title;not null"`
	Body          string                 `gorm:"column:body;not null"`
	RefType       *string                `gorm:"column:ref_type"`
	RefID         *uuid.UUID             `gorm:"column:ref_id;type:uuid"`
	ReadAt        *time.Time             `gorm:"column:read_at"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
