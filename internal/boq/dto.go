package boq

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// ComponentInput is one DUPA resource line supplied with an item write.
type ComponentInput struct {
	ResourceType   enums.ResourceType `json:"resource_type" validate:"required"`
	Name           string             `json:"name" validate:"required"`
	QuantityFactor decimal.Decimal    `json:"quantity_factor"`
	UnitRate       decimal.Decimal    `json:"unit_rate"`
}

// UpsertItemInput creates or replaces a BOQ item keyed on
// (project, description). When components are supplied the unit prices are
// derived from them and any submitted prices are ignored.
type UpsertItemInput struct {
	ProjectID         uuid.UUID        `json:"project_id" validate:"required"`
	ItemDescription   string           `json:"item_description" validate:"required"`
	Unit              string           `json:"unit" validate:"required"`
	Quantity          decimal.Decimal  `json:"quantity"`
	MaterialUnitPrice decimal.Decimal  `json:"material_unit_price"`
	LaborUnitPrice    decimal.Decimal  `json:"labor_unit_price"`
	IsCarport         bool             `json:"is_carport"`
	Components        []ComponentInput `json:"components" validate:"dive"`
}

// BulkImportInput carries a raw uploaded file for a project.
type BulkImportInput struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
	Content   string    `json:"content" validate:"required"`
}

// BulkImportOutcome reports what an upload did.
type BulkImportOutcome struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ItemView is the API shape of a BOQ item with its components.
type ItemView struct {
	Item       models.BoqItem            `json:"item"`
	Components []models.BoqItemComponent `json:"components"`
}
