package purchaseorders

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
	"github.com/tresmarias-build/procure-backend/internal/workflow"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

func setupPOTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS purchase_orders (
  id TEXT PRIMARY KEY,
  po_number TEXT NOT NULL UNIQUE,
  project_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  quotation_id TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  total_amount NUMERIC NOT NULL DEFAULT 0,
  delivery_terms TEXT,
  payment_terms TEXT,
  created_by TEXT NOT NULL,
  decided_by TEXT,
  decided_at DATETIME,
  declined_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS purchase_order_items (
  id TEXT PRIMARY KEY,
  purchase_order_id TEXT NOT NULL,
  description TEXT NOT NULL,
  unit TEXT NOT NULL,
  quantity NUMERIC NOT NULL DEFAULT 0,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  received_qty NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact_person TEXT,
  phone TEXT,
  email TEXT,
  address TEXT,
  tin TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS workflow_rules (
  id TEXT PRIMARY KEY,
  process_type TEXT NOT NULL,
  min_amount NUMERIC NOT NULL DEFAULT 0,
  max_amount NUMERIC,
  approver_role TEXT NOT NULL,
  step_order INTEGER NOT NULL DEFAULT 1,
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

type stubQuotationReader struct {
	quotation *models.SupplierQuotation
	err       error
}

func (s *stubQuotationReader) FindQuotationByID(context.Context, uuid.UUID) (*models.SupplierQuotation, error) {
	return s.quotation, s.err
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type poFixture struct {
	svc        Service
	db         *gorm.DB
	quotations *stubQuotationReader
}

// PO bands: up to 50k FINANCE, above GENERAL_MANAGER.
func newPOFixture(t *testing.T) *poFixture {
	t.Helper()
	db := setupPOTestDB(t)

	approvals, err := workflow.NewService(workflow.NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()
	limit := decimal.NewFromInt(50000)
	_, err = approvals.CreateRule(ctx, workflow.RuleInput{
		ProcessType:  enums.ProcessTypePO,
		MinAmount:    decimal.Zero,
		MaxAmount:    &limit,
		ApproverRole: enums.UserRoleFinance,
		StepOrder:    1,
	})
	require.NoError(t, err)
	_, err = approvals.CreateRule(ctx, workflow.RuleInput{
		ProcessType:  enums.ProcessTypePO,
		MinAmount:    limit,
		ApproverRole: enums.UserRoleGeneralManager,
		StepOrder:    1,
	})
	require.NoError(t, err)

	notifier, err := notifications.NewService(notifications.NewRepository(db))
	require.NoError(t, err)

	quotations := &stubQuotationReader{err: gorm.ErrRecordNotFound}
	svc, err := NewService(ServiceParams{
		Repo:       NewRepository(db),
		Quotations: quotations,
		Approvals:  approvals,
		Notifier:   notifier,
		Tx:         stubTxRunner{},
	})
	require.NoError(t, err)
	return &poFixture{svc: svc, db: db, quotations: quotations}
}

func directPOInput(createdBy uuid.UUID, unitPrice int64) CreateInput {
	return CreateInput{
		ProjectID:  uuid.New(),
		SupplierID: uuid.New(),
		CreatedBy:  createdBy,
		Items: []ItemInput{
			{Description: "Cement 40kg", Unit: "bag", Quantity: decimal.NewFromInt(100), UnitPrice: decimal.NewFromInt(unitPrice)},
		},
	}
}

func TestCreatePurchaseOrderNotifiesResolvedApprover(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, directPOInput(uuid.New(), 245))
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusPending, created.Status)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(24500)))

	datePart := time.Now().UTC().Format("20060102")
	assert.Equal(t, fmt.Sprintf("PO-%s-0001", datePart), created.PONumber)

	// 24,500 falls in the FINANCE band.
	var pending []models.Notification
	require.NoError(t, f.db.Where("type = ?", enums.NotificationTypeApprovalRequested).Find(&pending).Error)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].RecipientRole)
	assert.Equal(t, enums.UserRoleFinance, *pending[0].RecipientRole)
}

func TestCreatePurchaseOrderFromAwardedQuotation(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	supplierID := uuid.New()
	quotationID := uuid.New()
	f.quotations.quotation = &models.SupplierQuotation{
		ID:         quotationID,
		SupplierID: supplierID,
		IsSelected: true,
		Items: []models.QuotationItem{
			{Description: "Deformed bar 12mm", Unit: "pc", Quantity: decimal.NewFromInt(200), UnitPrice: decimal.NewFromInt(185), TotalPrice: decimal.NewFromInt(37000)},
		},
	}
	f.quotations.err = nil

	created, err := f.svc.Create(ctx, CreateInput{
		ProjectID:   uuid.New(),
		QuotationID: &quotationID,
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, supplierID, created.SupplierID)
	require.Len(t, created.Items, 1)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(37000)))

	// An unawarded quotation cannot back a PO.
	f.quotations.quotation.IsSelected = false
	_, err = f.svc.Create(ctx, CreateInput{
		ProjectID:   uuid.New(),
		QuotationID: &quotationID,
		CreatedBy:   uuid.New(),
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestApprovePurchaseOrderBandGating(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	creator := uuid.New()
	created, err := f.svc.Create(ctx, directPOInput(creator, 245))
	require.NoError(t, err)

	// 24,500 is in the FINANCE band; a site engineer may not approve.
	_, err = f.svc.Approve(ctx, created.ID, uuid.New(), enums.UserRoleSiteEngineer)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	approver := uuid.New()
	approved, err := f.svc.Approve(ctx, created.ID, approver, enums.UserRoleFinance)
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, approver, *approved.DecidedBy)

	// The creator hears about the decision.
	var decided []models.Notification
	require.NoError(t, f.db.Where("type = ?", enums.NotificationTypeDocumentApproved).Find(&decided).Error)
	require.Len(t, decided, 1)
	require.NotNil(t, decided[0].RecipientID)
	assert.Equal(t, creator, *decided[0].RecipientID)

	// Approving twice conflicts.
	_, err = f.svc.Approve(ctx, created.ID, approver, enums.UserRoleFinance)
	require.Error(t, err)
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestLargeAmountNeedsGeneralManager(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	// 100×600 = 60,000, above the FINANCE cap.
	created, err := f.svc.Create(ctx, directPOInput(uuid.New(), 600))
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, created.ID, uuid.New(), enums.UserRoleFinance)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	approved, err := f.svc.Approve(ctx, created.ID, uuid.New(), enums.UserRoleGeneralManager)
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusApproved, approved.Status)
}

func TestDeclineRestrictedToApproverOrCreator(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	creator := uuid.New()
	created, err := f.svc.Create(ctx, directPOInput(creator, 245))
	require.NoError(t, err)

	// A bystander cannot decline.
	_, err = f.svc.Decline(ctx, created.ID, uuid.New(), enums.UserRoleWarehouse, "wrong supplier")
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	// The creator can.
	declined, err := f.svc.Decline(ctx, created.ID, creator, enums.UserRoleProcurementStaff, "wrong supplier")
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusDeclined, declined.Status)
	require.NotNil(t, declined.DeclinedReason)
	assert.Equal(t, "wrong supplier", *declined.DeclinedReason)
}

func TestCancelPending(t *testing.T) {
	f := newPOFixture(t)
	ctx := context.Background()

	creator := uuid.New()
	created, err := f.svc.Create(ctx, directPOInput(creator, 245))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, created.ID, creator, enums.UserRoleProcurementStaff)
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseOrderStatusCancelled, cancelled.Status)

	// Terminal states stay terminal.
	_, err = f.svc.Approve(ctx, created.ID, uuid.New(), enums.UserRoleFinance)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}
