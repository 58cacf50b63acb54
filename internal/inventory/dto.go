package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptInput records incoming stock, usually from a receiving report.
type ReceiptInput struct {
	ProjectID    uuid.UUID
	MaterialName string
	Unit         string
	Quantity     decimal.Decimal
	RefType      *string
	RefID        *uuid.UUID
	CreatedBy    uuid.UUID
}

// IssueInput draws stock down for site consumption.
type IssueInput struct {
	StockItemID uuid.UUID       `json:"stock_item_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedBy   uuid.UUID       `json:"-"`
}

// AdjustInput corrects the on-hand quantity to a counted value.
type AdjustInput struct {
	StockItemID uuid.UUID       `json:"stock_item_id" validate:"required"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedBy   uuid.UUID       `json:"-"`
}
