package rfqs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one line suppliers are asked to quote on.
type ItemInput struct {
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CreateInput raises an RFQ, either directly or from an approved material
// request (in which case Items may be empty and are copied from the request).
type CreateInput struct {
	ProjectID         uuid.UUID   `json:"project_id" validate:"required"`
	MaterialRequestID *uuid.UUID  `json:"material_request_id,omitempty"`
	CreatedBy         uuid.UUID   `json:"-"`
	QuoteDeadline     *time.Time  `json:"quote_deadline,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
	Items             []ItemInput `json:"items"`
}

// QuotationItemInput is one priced line of a supplier quotation.
type QuotationItemInput struct {
	RFQItemID   *uuid.UUID      `json:"rfq_item_id,omitempty"`
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// SubmitQuotationInput records a supplier's priced response.
type SubmitQuotationInput struct {
	RFQID      uuid.UUID            `json:"rfq_id" validate:"required"`
	SupplierID uuid.UUID            `json:"supplier_id" validate:"required"`
	ValidUntil *time.Time           `json:"valid_until,omitempty"`
	Notes      *string              `json:"notes,omitempty"`
	Items      []QuotationItemInput `json:"items" validate:"required,min=1"`
}
