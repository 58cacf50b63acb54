package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput holds the payload for registering a supplier invoice.
type CreateInput struct {
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id" validate:"required"`
	InvoiceNumber   string          `json:"invoice_number" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	InvoiceDate     time.Time       `json:"invoice_date" validate:"required"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
}

// DisburseInput records a payment against an approved invoice.
type DisburseInput struct {
	InvoiceID uuid.UUID       `json:"-"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	Method    *string         `json:"method,omitempty"`
	Reference *string         `json:"reference,omitempty"`
	CreatedBy uuid.UUID       `json:"-"`
}
