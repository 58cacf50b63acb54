package materialrequests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested material line.
type ItemInput struct {
	Description    string          `json:"description" validate:"required"`
	Unit           string          `json:"unit" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

// CreateInput holds the payload for raising a material request.
type CreateInput struct {
	ProjectID   uuid.UUID   `json:"project_id" validate:"required"`
	RequestedBy uuid.UUID   `json:"-"`
	NeededBy    *time.Time  `json:"needed_by,omitempty"`
	Purpose     *string     `json:"purpose,omitempty"`
	Items       []ItemInput `json:"items" validate:"required,min=1"`
}
