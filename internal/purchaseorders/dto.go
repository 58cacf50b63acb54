package purchaseorders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one ordered line.
type ItemInput struct {
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInput raises a purchase order, either directly or from an awarded
// quotation (in which case SupplierID and Items default from the quotation).
type CreateInput struct {
	ProjectID     uuid.UUID   `json:"project_id" validate:"required"`
	SupplierID    uuid.UUID   `json:"supplier_id"`
	QuotationID   *uuid.UUID  `json:"quotation_id,omitempty"`
	CreatedBy     uuid.UUID   `json:"-"`
	DeliveryTerms *string     `json:"delivery_terms,omitempty"`
	PaymentTerms  *string     `json:"payment_terms,omitempty"`
	Items         []ItemInput `json:"items"`
}
