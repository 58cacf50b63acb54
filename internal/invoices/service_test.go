package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/internal/purchaseorders"
	"github.com/tresmarias-build/procure-backend/internal/workflow"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  invoice_number TEXT NOT NULL,
  purchase_order_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  amount NUMERIC NOT NULL DEFAULT 0,
  invoice_date DATETIME NOT NULL,
  due_date DATETIME,
  status TEXT NOT NULL DEFAULT 'RECEIVED',
  match_result TEXT NOT NULL DEFAULT 'UNMATCHED',
  match_variance NUMERIC,
  match_notes TEXT,
  matched_at DATETIME,
  approved_by TEXT,
  approved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS disbursements (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  paid_at DATETIME NOT NULL,
  method TEXT,
  reference TEXT,
  created_by TEXT NOT NULL,
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

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type invoiceFixture struct {
	svc    Service
	orders purchaseorders.Repository
	db     *gorm.DB
}

// Payment bands: up to 100k FINANCE, above GENERAL_MANAGER.
func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	db := setupInvoicesTestDB(t)
	ctx := context.Background()

	approvals, err := workflow.NewService(workflow.NewRepository(db))
	require.NoError(t, err)
	limit := decimal.NewFromInt(100000)
	_, err = approvals.CreateRule(ctx, workflow.RuleInput{
		ProcessType:  enums.ProcessTypePayment,
		MinAmount:    decimal.Zero,
		MaxAmount:    &limit,
		ApproverRole: enums.UserRoleFinance,
		StepOrder:    1,
	})
	require.NoError(t, err)
	_, err = approvals.CreateRule(ctx, workflow.RuleInput{
		ProcessType:  enums.ProcessTypePayment,
		MinAmount:    limit,
		ApproverRole: enums.UserRoleGeneralManager,
		StepOrder:    1,
	})
	require.NoError(t, err)

	notifier, err := notifications.NewService(notifications.NewRepository(db))
	require.NoError(t, err)

	orders := purchaseorders.NewRepository(db)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Orders:   orders,
		Workflow: approvals,
		Notifier: notifier,
		Tx:       stubTxRunner{},
	})
	require.NoError(t, err)

	return &invoiceFixture{svc: svc, orders: orders, db: db}
}

// seedReceivedOrder creates an approved order whose single line is fully
// delivered, so a bill for the order total passes the 3-way match.
func (f *invoiceFixture) seedReceivedOrder(t *testing.T, total int64) *models.PurchaseOrder {
	t.Helper()

	qty := decimal.NewFromInt(100)
	unitPrice := decimal.NewFromInt(total).Div(qty)
	po, err := f.orders.Create(context.Background(), &models.PurchaseOrder{
		PONumber:    "PO-20260901-" + uuid.NewString()[:4],
		ProjectID:   uuid.New(),
		SupplierID:  uuid.New(),
		Status:      enums.PurchaseOrderStatusCompleted,
		TotalAmount: decimal.NewFromInt(total),
		CreatedBy:   uuid.New(),
		Items: []models.PurchaseOrderItem{
			{
				Description: "Cement 40kg",
				Unit:        "bag",
				Quantity:    qty,
				UnitPrice:   unitPrice,
				TotalPrice:  decimal.NewFromInt(total),
				ReceivedQty: qty,
			},
		},
	})
	require.NoError(t, err)
	return po
}

func (f *invoiceFixture) registerInvoice(t *testing.T, po *models.PurchaseOrder, amount decimal.Decimal) *models.Invoice {
	t.Helper()
	invoice, err := f.svc.Create(context.Background(), CreateInput{
		PurchaseOrderID: po.ID,
		InvoiceNumber:   "SI-" + uuid.NewString()[:8],
		Amount:          amount,
		InvoiceDate:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return invoice
}

func TestMatchAgreeingInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	po := f.seedReceivedOrder(t, 25000)
	invoice := f.registerInvoice(t, po, decimal.NewFromInt(25000))

	matched, err := f.svc.Match(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusMatched, matched.Status)
	assert.Equal(t, enums.MatchResultMatched, matched.MatchResult)
	require.NotNil(t, matched.MatchVariance)
	assert.True(t, matched.MatchVariance.IsZero())

	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).
		Where("type = ?", enums.NotificationTypeInvoiceMismatch).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestMatchDisputesOverbilledInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	po := f.seedReceivedOrder(t, 25000)
	invoice := f.registerInvoice(t, po, decimal.NewFromInt(27000))

	matched, err := f.svc.Match(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusDisputed, matched.Status)
	assert.Equal(t, enums.MatchResultMismatched, matched.MatchResult)
	require.NotNil(t, matched.MatchVariance)
	assert.True(t, matched.MatchVariance.Equal(decimal.NewFromInt(2000)))

	// Finance is told about the discrepancy.
	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).
		Where("type = ? AND recipient_role = ?", enums.NotificationTypeInvoiceMismatch, enums.UserRoleFinance).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A disputed invoice cannot be paid.
	_, err = f.svc.ApprovePayment(ctx, invoice.ID, uuid.New(), enums.UserRoleFinance)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestApprovePaymentBandGating(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	po := f.seedReceivedOrder(t, 250000)
	invoice := f.registerInvoice(t, po, decimal.NewFromInt(250000))
	_, err := f.svc.Match(ctx, invoice.ID)
	require.NoError(t, err)

	// 250k sits in the general manager band; finance cannot approve it.
	_, err = f.svc.ApprovePayment(ctx, invoice.ID, uuid.New(), enums.UserRoleFinance)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())

	approver := uuid.New()
	approved, err := f.svc.ApprovePayment(ctx, invoice.ID, approver, enums.UserRoleGeneralManager)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, approver, *approved.ApprovedBy)

	// A second approval attempt hits the guarded transition.
	_, err = f.svc.ApprovePayment(ctx, invoice.ID, uuid.New(), enums.UserRoleGeneralManager)
	require.Error(t, err)
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestDisbursementsSettleInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	po := f.seedReceivedOrder(t, 25000)
	invoice := f.registerInvoice(t, po, decimal.NewFromInt(25000))
	_, err := f.svc.Match(ctx, invoice.ID)
	require.NoError(t, err)
	_, err = f.svc.ApprovePayment(ctx, invoice.ID, uuid.New(), enums.UserRoleFinance)
	require.NoError(t, err)

	payer := uuid.New()
	partial, err := f.svc.RecordDisbursement(ctx, DisburseInput{
		InvoiceID: invoice.ID,
		Amount:    decimal.NewFromInt(10000),
		CreatedBy: payer,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusApproved, partial.Status)
	require.Len(t, partial.Disbursements, 1)

	// Paying beyond the remaining balance is rejected.
	_, err = f.svc.RecordDisbursement(ctx, DisburseInput{
		InvoiceID: invoice.ID,
		Amount:    decimal.NewFromInt(20000),
		CreatedBy: payer,
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	settled, err := f.svc.RecordDisbursement(ctx, DisburseInput{
		InvoiceID: invoice.ID,
		Amount:    decimal.NewFromInt(15000),
		CreatedBy: payer,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusPaid, settled.Status)
	require.Len(t, settled.Disbursements, 2)

	// A settled invoice takes no further payments.
	_, err = f.svc.RecordDisbursement(ctx, DisburseInput{
		InvoiceID: invoice.ID,
		Amount:    decimal.NewFromInt(1),
		CreatedBy: payer,
	})
	require.Error(t, err)
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	po := f.seedReceivedOrder(t, 25000)

	cases := []struct {
		name  string
		input CreateInput
		code  pkgerrors.Code
	}{
		{
			name:  "unknown order",
			input: CreateInput{PurchaseOrderID: uuid.New(), InvoiceNumber: "SI-1", Amount: decimal.NewFromInt(1), InvoiceDate: time.Now()},
			code:  pkgerrors.CodeNotFound,
		},
		{
			name:  "blank number",
			input: CreateInput{PurchaseOrderID: po.ID, InvoiceNumber: "  ", Amount: decimal.NewFromInt(1), InvoiceDate: time.Now()},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "non-positive amount",
			input: CreateInput{PurchaseOrderID: po.ID, InvoiceNumber: "SI-1", Amount: decimal.Zero, InvoiceDate: time.Now()},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "missing date",
			input: CreateInput{PurchaseOrderID: po.ID, InvoiceNumber: "SI-1", Amount: decimal.NewFromInt(1)},
			code:  pkgerrors.CodeValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.input)
			require.Error(t, err)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, tc.code, coded.Code())
		})
	}
}
