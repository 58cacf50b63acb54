package workflow

import (
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// RuleInput creates or updates one approval band.
type RuleInput struct {
	ProcessType  enums.ProcessType `json:"process_type" validate:"required"`
	MinAmount    decimal.Decimal   `json:"min_amount"`
	MaxAmount    *decimal.Decimal  `json:"max_amount"`
	ApproverRole enums.UserRole    `json:"approver_role" validate:"required"`
	StepOrder    int               `json:"step_order" validate:"min=1"`
}

// ResolveInput asks which role must approve an amount for a process.
type ResolveInput struct {
	ProcessType enums.ProcessType `json:"process_type" validate:"required"`
	Amount      decimal.Decimal   `json:"amount"`
}

// ResolveOutput is the answer: a nil role means no rule matched.
type ResolveOutput struct {
	ApproverRole *enums.UserRole `json:"approver_role"`
	Steps        []StepView      `json:"steps"`
}

// StepView is one stage of the approval chain.
type StepView struct {
	StepOrder    int            `json:"step_order"`
	ApproverRole enums.UserRole `json:"approver_role"`
}
