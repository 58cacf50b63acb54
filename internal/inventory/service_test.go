package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS stock_items (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  material_name TEXT NOT NULL,
  unit TEXT NOT NULL,
  on_hand_qty NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (project_id, material_name, unit)
);
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  stock_item_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  ref_type TEXT,
  ref_id TEXT,
  notes TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newInventoryService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), stubTxRunner{})
	require.NoError(t, err)
	return svc
}

func TestReceiveCreatesStockAndLedger(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ctx := context.Background()

	projectID := uuid.New()
	actor := uuid.New()
	grnRef := "GRN"
	refID := uuid.New()

	item, err := svc.Receive(ctx, nil, ReceiptInput{
		ProjectID:    projectID,
		MaterialName: "Cement 40kg",
		Unit:         "bag",
		Quantity:     decimal.NewFromInt(100),
		RefType:      &grnRef,
		RefID:        &refID,
		CreatedBy:    actor,
	})
	require.NoError(t, err)
	assert.True(t, item.OnHandQty.Equal(decimal.NewFromInt(100)))

	// A second receipt for the same material reuses the stock item.
	again, err := svc.Receive(ctx, nil, ReceiptInput{
		ProjectID:    projectID,
		MaterialName: "Cement 40kg",
		Unit:         "bag",
		Quantity:     decimal.NewFromInt(50),
		CreatedBy:    actor,
	})
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)
	assert.True(t, again.OnHandQty.Equal(decimal.NewFromInt(150)))

	movements, err := svc.ListMovements(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, enums.StockMovementTypeReceipt, m.Type)
	}
}

func TestIssueGuardsNonNegative(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ctx := context.Background()

	actor := uuid.New()
	item, err := svc.Receive(ctx, nil, ReceiptInput{
		ProjectID:    uuid.New(),
		MaterialName: "Washed sand",
		Unit:         "cu.m",
		Quantity:     decimal.NewFromInt(10),
		CreatedBy:    actor,
	})
	require.NoError(t, err)

	after, err := svc.Issue(ctx, IssueInput{
		StockItemID: item.ID,
		Quantity:    decimal.NewFromInt(4),
		CreatedBy:   actor,
	})
	require.NoError(t, err)
	assert.True(t, after.OnHandQty.Equal(decimal.NewFromInt(6)))

	// Issuing more than on hand fails and leaves the balance alone.
	_, err = svc.Issue(ctx, IssueInput{
		StockItemID: item.ID,
		Quantity:    decimal.NewFromInt(7),
		CreatedBy:   actor,
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())

	stock, err := svc.ListStock(ctx, item.ProjectID)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.True(t, stock[0].OnHandQty.Equal(decimal.NewFromInt(6)))
}

func TestAdjustToCountedQuantity(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ctx := context.Background()

	actor := uuid.New()
	item, err := svc.Receive(ctx, nil, ReceiptInput{
		ProjectID:    uuid.New(),
		MaterialName: "Deformed bar 12mm",
		Unit:         "pc",
		Quantity:     decimal.NewFromInt(200),
		CreatedBy:    actor,
	})
	require.NoError(t, err)

	adjusted, err := svc.Adjust(ctx, AdjustInput{
		StockItemID: item.ID,
		NewQuantity: decimal.NewFromInt(190),
		CreatedBy:   actor,
	})
	require.NoError(t, err)
	assert.True(t, adjusted.OnHandQty.Equal(decimal.NewFromInt(190)))

	movements, err := svc.ListMovements(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)

	var adjustment *decimal.Decimal
	for _, m := range movements {
		if m.Type == enums.StockMovementTypeAdjustment {
			qty := m.Quantity
			adjustment = &qty
		}
	}
	require.NotNil(t, adjustment)
	assert.True(t, adjustment.Equal(decimal.NewFromInt(10)))

	_, err = svc.Adjust(ctx, AdjustInput{
		StockItemID: item.ID,
		NewQuantity: decimal.NewFromInt(-5),
		CreatedBy:   actor,
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestIssueUnknownStockItem(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	_, err := svc.Issue(context.Background(), IssueInput{
		StockItemID: uuid.New(),
		Quantity:    decimal.NewFromInt(1),
		CreatedBy:   uuid.New(),
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
