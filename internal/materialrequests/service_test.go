package materialrequests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

func setupRequestsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS material_requests (
  id TEXT PRIMARY KEY,
  request_number TEXT NOT NULL UNIQUE,
  project_id TEXT NOT NULL,
  requested_by TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  needed_by DATETIME,
  purpose TEXT,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  decided_by TEXT,
  decided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS material_request_items (
  id TEXT PRIMARY KEY,
  material_request_id TEXT NOT NULL,
  description TEXT NOT NULL,
  unit TEXT NOT NULL,
  quantity NUMERIC NOT NULL DEFAULT 0,
  estimated_price NUMERIC NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  recipient_role TEXT,
  recipient_id TEXT,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  ref_type TEXT,
  ref_id TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type stubProjectReader struct {
	project *models.Project
	err     error
}

func (s *stubProjectReader) FindByID(context.Context, uuid.UUID) (*models.Project, error) {
	return s.project, s.err
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newRequestsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	notifier, err := notifications.NewService(notifications.NewRepository(db))
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Projects: &stubProjectReader{project: &models.Project{ID: uuid.New()}},
		Notifier: notifier,
		Tx:       stubTxRunner{},
	})
	require.NoError(t, err)
	return svc
}

func sampleInput(requestedBy uuid.UUID) CreateInput {
	return CreateInput{
		ProjectID:   uuid.New(),
		RequestedBy: requestedBy,
		Items: []ItemInput{
			{Description: "Cement 40kg", Unit: "bag", Quantity: decimal.NewFromInt(10), EstimatedPrice: decimal.NewFromInt(250)},
			{Description: "Deformed bar 12mm", Unit: "pc", Quantity: decimal.NewFromInt(20), EstimatedPrice: decimal.RequireFromString("185.50")},
		},
	}
}

func TestCreateRequestDerivesTotals(t *testing.T) {
	db := setupRequestsTestDB(t)
	svc := newRequestsService(t, db)
	ctx := context.Background()

	requester := uuid.New()
	created, err := svc.Create(ctx, sampleInput(requester))
	require.NoError(t, err)

	// 10×250 + 20×185.50 = 2500 + 3710 = 6210
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("6210")),
		"got %s", created.TotalAmount)
	assert.Equal(t, enums.MaterialRequestStatusPending, created.Status)
	require.Len(t, created.Items, 2)
	assert.True(t, created.Items[1].TotalPrice.Equal(decimal.RequireFromString("3710")))

	datePart := time.Now().UTC().Format("20060102")
	assert.Equal(t, fmt.Sprintf("MR-%s-0001", datePart), created.RequestNumber)

	second, err := svc.Create(ctx, sampleInput(requester))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("MR-%s-0002", datePart), second.RequestNumber)

	// Pending notification fans out to project managers.
	var pending []models.Notification
	require.NoError(t, db.Where("type = ?", enums.NotificationTypeApprovalRequested).Find(&pending).Error)
	require.Len(t, pending, 2)
	require.NotNil(t, pending[0].RecipientRole)
	assert.Equal(t, enums.UserRoleProjectManager, *pending[0].RecipientRole)
}

func TestCreateRequestValidation(t *testing.T) {
	db := setupRequestsTestDB(t)
	svc := newRequestsService(t, db)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"no items", CreateInput{ProjectID: uuid.New(), RequestedBy: uuid.New()}},
		{"zero quantity", CreateInput{
			ProjectID:   uuid.New(),
			RequestedBy: uuid.New(),
			Items:       []ItemInput{{Description: "Sand", Unit: "cu.m", Quantity: decimal.Zero}},
		}},
		{"blank description", CreateInput{
			ProjectID:   uuid.New(),
			RequestedBy: uuid.New(),
			Items:       []ItemInput{{Description: "  ", Unit: "bag", Quantity: decimal.NewFromInt(1)}},
		}},
		{"missing requester", CreateInput{
			ProjectID: uuid.New(),
			Items:     []ItemInput{{Description: "Sand", Unit: "cu.m", Quantity: decimal.NewFromInt(1)}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
		})
	}
}

func TestApproveRequest(t *testing.T) {
	db := setupRequestsTestDB(t)
	svc := newRequestsService(t, db)
	ctx := context.Background()

	requester := uuid.New()
	created, err := svc.Create(ctx, sampleInput(requester))
	require.NoError(t, err)

	approver := uuid.New()
	approved, err := svc.Approve(ctx, created.ID, approver, enums.UserRoleProjectManager)
	require.NoError(t, err)
	assert.Equal(t, enums.MaterialRequestStatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, approver, *approved.DecidedBy)
	assert.NotNil(t, approved.DecidedAt)

	// The requester is told about the decision.
	var decided []models.Notification
	require.NoError(t, db.Where("type = ?", enums.NotificationTypeDocumentApproved).Find(&decided).Error)
	require.Len(t, decided, 1)
	require.NotNil(t, decided[0].RecipientID)
	assert.Equal(t, requester, *decided[0].RecipientID)

	// Deciding twice conflicts.
	_, err = svc.Decline(ctx, created.ID, approver, enums.UserRoleProjectManager)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestDecideRequiresApproverRole(t *testing.T) {
	db := setupRequestsTestDB(t)
	svc := newRequestsService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleInput(uuid.New()))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, created.ID, uuid.New(), enums.UserRoleSiteEngineer)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())
}

func TestMarkFulfilled(t *testing.T) {
	db := setupRequestsTestDB(t)
	svc := newRequestsService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleInput(uuid.New()))
	require.NoError(t, err)

	// Fulfilling a pending request conflicts.
	err = svc.MarkFulfilled(ctx, created.ID)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())

	_, err = svc.Approve(ctx, created.ID, uuid.New(), enums.UserRoleGeneralManager)
	require.NoError(t, err)
	require.NoError(t, svc.MarkFulfilled(ctx, created.ID))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MaterialRequestStatusFulfilled, got.Status)
}
