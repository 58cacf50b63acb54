package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

// Service manages approval bands and resolves approvers for documents.
type Service interface {
	CreateRule(ctx context.Context, input RuleInput) (*models.WorkflowRule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, input RuleInput) (*models.WorkflowRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ListRules(ctx context.Context) ([]models.WorkflowRule, error)
	Resolve(ctx context.Context, input ResolveInput) (*ResolveOutput, error)
	// Authorize reports whether the actor may approve the given amount.
	Authorize(ctx context.Context, actor enums.UserRole, processType enums.ProcessType, amount decimal.Decimal) (bool, error)
}

type service struct {
	repo Repository
}

// NewService builds a workflow service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("workflow repository required")
	}
	return &service{repo: repo}, nil
}

func validateRule(input RuleInput) error {
	if !input.ProcessType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid process type")
	}
	if !input.ApproverRole.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid approver role")
	}
	if input.MinAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "min amount cannot be negative")
	}
	if input.MaxAmount != nil && input.MaxAmount.LessThan(input.MinAmount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "max amount must be at least min amount")
	}
	if input.StepOrder < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "step order must be at least 1")
	}
	return nil
}

func (s *service) CreateRule(ctx context.Context, input RuleInput) (*models.WorkflowRule, error) {
	if err := validateRule(input); err != nil {
		return nil, err
	}
	rule, err := s.repo.Create(ctx, &models.WorkflowRule{
		ProcessType:  input.ProcessType,
		MinAmount:    input.MinAmount,
		MaxAmount:    input.MaxAmount,
		ApproverRole: input.ApproverRole,
		StepOrder:    input.StepOrder,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create workflow rule")
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, id uuid.UUID, input RuleInput) (*models.WorkflowRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	if err := validateRule(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "workflow rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load workflow rule")
	}
	updates := map[string]any{
		"process_type":  input.ProcessType,
		"min_amount":    input.MinAmount,
		"max_amount":    input.MaxAmount,
		"approver_role": input.ApproverRole,
		"step_order":    input.StepOrder,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update workflow rule")
	}
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload workflow rule")
	}
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "workflow rule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load workflow rule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete workflow rule")
	}
	return nil
}

func (s *service) ListRules(ctx context.Context) ([]models.WorkflowRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list workflow rules")
	}
	return rules, nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*ResolveOutput, error) {
	if !input.ProcessType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid process type")
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	rules, err := s.repo.ListByProcessType(ctx, input.ProcessType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list workflow rules")
	}

	chain := ResolveChain(input.ProcessType, input.Amount, rules)
	output := &ResolveOutput{}
	for _, step := range chain {
		output.Steps = append(output.Steps, StepView{
			StepOrder:    step.StepOrder,
			ApproverRole: step.ApproverRole,
		})
	}
	if len(chain) > 0 {
		role := chain[0].ApproverRole
		output.ApproverRole = &role
	}
	return output, nil
}

func (s *service) Authorize(ctx context.Context, actor enums.UserRole, processType enums.ProcessType, amount decimal.Decimal) (bool, error) {
	rules, err := s.repo.ListByProcessType(ctx, processType)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list workflow rules")
	}
	return CanApprove(actor, processType, amount, rules), nil
}
