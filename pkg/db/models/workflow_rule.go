package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// WorkflowRule maps an amount band for a process type to the role that must
// approve it. A nil MaxAmount means the band is unbounded above.
type WorkflowRule struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProcessType  enums.ProcessType `gorm:"column:process_type;type:text;not null"`
	MinAmount    decimal.Decimal   `gorm:"column:min_amount;type:numeric(14,2);not null;default:0"`
	MaxAmount    *decimal.Decimal  `gorm:"column:max_amount;type:numeric(14,2)"`
	ApproverRole enums.UserRole    `gorm:"column:approver_role;type:text;not null"`
	StepOrder    int               `gorm:"column:step_order;not null;default:1"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
