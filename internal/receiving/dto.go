package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one delivered line, keyed to the purchase order item it
// fulfils.
type ItemInput struct {
	PurchaseOrderItemID uuid.UUID       `json:"purchase_order_item_id" validate:"required"`
	QuantityReceived    decimal.Decimal `json:"quantity_received"`
	Remarks             *string         `json:"remarks,omitempty"`
}

// CreateInput holds the payload for booking a delivery against a purchase
// order.
type CreateInput struct {
	PurchaseOrderID uuid.UUID   `json:"purchase_order_id" validate:"required"`
	ReceivedBy      uuid.UUID   `json:"-"`
	ReceivedAt      *time.Time  `json:"received_at,omitempty"`
	DeliveryRef     *string     `json:"delivery_ref,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	Items           []ItemInput `json:"items" validate:"required,min=1"`
}
