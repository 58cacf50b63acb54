package workflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

func setupWorkflowTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	rules := `
CREATE TABLE IF NOT EXISTS workflow_rules (
  id TEXT PRIMARY KEY,
  process_type TEXT NOT NULL,
  min_amount NUMERIC NOT NULL DEFAULT 0,
  max_amount NUMERIC,
  approver_role TEXT NOT NULL,
  step_order INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(rules).Error)
	return db
}

func newWorkflowService(t *testing.T) Service {
	t.Helper()

	svc, err := NewService(NewRepository(setupWorkflowTestDB(t)))
	require.NoError(t, err)
	return svc
}

func TestCreateAndResolveRule(t *testing.T) {
	svc := newWorkflowService(t)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, RuleInput{
		ProcessType:  enums.ProcessTypePO,
		MinAmount:    dec("0"),
		MaxAmount:    decPtr("10000"),
		ApproverRole: enums.UserRoleProjectManager,
		StepOrder:    1,
	})
	require.NoError(t, err)
	_, err = svc.CreateRule(ctx, RuleInput{
		ProcessType:  enums.ProcessTypePO,
		MinAmount:    dec("10001"),
		ApproverRole: enums.UserRoleFinance,
		StepOrder:    1,
	})
	require.NoError(t, err)

	out, err := svc.Resolve(ctx, ResolveInput{ProcessType: enums.ProcessTypePO, Amount: dec("50000")})
	require.NoError(t, err)
	require.NotNil(t, out.ApproverRole)
	assert.Equal(t, enums.UserRoleFinance, *out.ApproverRole)

	out, err = svc.Resolve(ctx, ResolveInput{ProcessType: enums.ProcessTypeRFQ, Amount: dec("100")})
	require.NoError(t, err)
	assert.Nil(t, out.ApproverRole)
	assert.Empty(t, out.Steps)
}

func TestCreateRuleValidation(t *testing.T) {
	svc := newWorkflowService(t)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, RuleInput{
		ProcessType:  enums.ProcessType("BOGUS"),
		ApproverRole: enums.UserRoleFinance,
		StepOrder:    1,
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	_, err = svc.CreateRule(ctx, RuleInput{
		ProcessType:  enums.ProcessTypePO,
		MinAmount:    dec("5000"),
		MaxAmount:    decPtr("100"),
		ApproverRole: enums.UserRoleFinance,
		StepOrder:    1,
	})
	require.Error(t, err)
}

func TestUpdateAndDeleteRule(t *testing.T) {
	svc := newWorkflowService(t)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, RuleInput{
		ProcessType:  enums.ProcessTypePayment,
		MinAmount:    dec("0"),
		ApproverRole: enums.UserRoleFinance,
		StepOrder:    1,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRule(ctx, rule.ID, RuleInput{
		ProcessType:  enums.ProcessTypePayment,
		MinAmount:    dec("0"),
		ApproverRole: enums.UserRoleGeneralManager,
		StepOrder:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleGeneralManager, updated.ApproverRole)

	require.NoError(t, svc.DeleteRule(ctx, rule.ID))

	err = svc.DeleteRule(ctx, rule.ID)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestDeleteRuleUnknownID(t *testing.T) {
	svc := newWorkflowService(t)

	err := svc.DeleteRule(context.Background(), uuid.New())
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestAuthorize(t *testing.T) {
	svc := newWorkflowService(t)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, RuleInput{
		ProcessType:  enums.ProcessTypePO,
		MinAmount:    dec("0"),
		ApproverRole: enums.UserRoleFinance,
		StepOrder:    1,
	})
	require.NoError(t, err)

	ok, err := svc.Authorize(ctx, enums.UserRoleFinance, enums.ProcessTypePO, dec("2500"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Authorize(ctx, enums.UserRoleSiteEngineer, enums.ProcessTypePO, dec("2500"))
	require.NoError(t, err)
	assert.False(t, ok)
}
