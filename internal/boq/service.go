package boq

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes BOQ operations: item upserts, bulk upload, and the
// project cost summary.
type Service interface {
	UpsertItem(ctx context.Context, input UpsertItemInput) (*ItemView, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ListItems(ctx context.Context, projectID uuid.UUID) ([]models.BoqItem, error)
	Summary(ctx context.Context, projectID uuid.UUID) (*ProjectSummary, error)
	BulkImport(ctx context.Context, input BulkImportInput) (*BulkImportOutcome, error)
}

type service struct {
	repo     Repository
	projects ProjectReader
	tx       txRunner
}

// NewService builds a BOQ service with the required dependencies.
func NewService(repo Repository, projects ProjectReader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("boq repository required")
	}
	if projects == nil {
		return nil, fmt.Errorf("project reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, projects: projects, tx: tx}, nil
}

// UpsertItem creates or updates the item keyed on (project, description).
// Components replace the previous set wholesale; when present they are the
// source of truth for both unit prices.
func (s *service) UpsertItem(ctx context.Context, input UpsertItemInput) (*ItemView, error) {
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	description := strings.TrimSpace(input.ItemDescription)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item description required")
	}
	if input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	components := buildComponents(input.Components)
	materialPrice := input.MaterialUnitPrice
	laborPrice := input.LaborUnitPrice
	if len(components) > 0 {
		costs := ComputeItemUnitCosts(components)
		materialPrice = costs.MaterialUnitPrice
		laborPrice = costs.LaborUnitPrice
	}
	if materialPrice.IsNegative() || laborPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit prices cannot be negative")
	}

	var view ItemView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindItemByDescription(ctx, input.ProjectID, description)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load boq item")
		}

		var itemID uuid.UUID
		if existing != nil {
			itemID = existing.ID
			updates := map[string]any{
				"unit":                input.Unit,
				"quantity":            input.Quantity,
				"material_unit_price": materialPrice,
				"labor_unit_price":    laborPrice,
				"is_carport":          input.IsCarport,
			}
			if err := repo.UpdateItem(ctx, itemID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update boq item")
			}
		} else {
			created, err := repo.CreateItem(ctx, &models.BoqItem{
				ProjectID:         input.ProjectID,
				ItemDescription:   description,
				Unit:              input.Unit,
				Quantity:          input.Quantity,
				MaterialUnitPrice: materialPrice,
				LaborUnitPrice:    laborPrice,
				IsCarport:         input.IsCarport,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create boq item")
			}
			itemID = created.ID
		}

		if err := repo.ReplaceComponents(ctx, itemID, components); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace components")
		}

		item, err := repo.FindItemByID(ctx, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload boq item")
		}
		view = ItemView{Item: *item, Components: item.Components}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if _, err := s.repo.FindItemByID(ctx, itemID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "boq item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load boq item")
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete boq item")
	}
	return nil
}

func (s *service) ListItems(ctx context.Context, projectID uuid.UUID) ([]models.BoqItem, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	items, err := s.repo.ListItemsByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list boq items")
	}
	return items, nil
}

// Summary rolls the project's BOQ into the markup-adjusted totals.
func (s *service) Summary(ctx context.Context, projectID uuid.UUID) (*ProjectSummary, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	items, err := s.repo.ListItemsByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list boq items")
	}

	floorArea := decimal.Zero
	if project.TotalFloorArea != nil {
		floorArea = *project.TotalFloorArea
	}
	carportArea := decimal.Zero
	if project.CarportArea != nil {
		carportArea = *project.CarportArea
	}
	summary := ComputeProjectSummary(items, floorArea, carportArea)
	return &summary, nil
}

// BulkImport parses an uploaded file and upserts every resolved row inside
// one transaction. Rows without a description are skipped, not failed.
func (s *service) BulkImport(ctx context.Context, input BulkImportInput) (*BulkImportOutcome, error) {
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content required")
	}
	if _, err := s.projects.FindByID(ctx, input.ProjectID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	parsed := ParseBulkImport(input.Content)
	outcome := BulkImportOutcome{Skipped: parsed.Skipped}
	if len(parsed.Rows) == 0 {
		return &outcome, nil
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, row := range parsed.Rows {
			existing, err := repo.FindItemByDescription(ctx, input.ProjectID, row.Description)
			if err != nil && err != gorm.ErrRecordNotFound {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load boq item")
			}
			if existing != nil {
				updates := map[string]any{
					"unit":                row.Unit,
					"quantity":            row.Quantity,
					"material_unit_price": row.MaterialUnitPrice,
					"labor_unit_price":    row.LaborUnitPrice,
				}
				if err := repo.UpdateItem(ctx, existing.ID, updates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update boq item")
				}
				outcome.Updated++
				continue
			}
			if _, err := repo.CreateItem(ctx, &models.BoqItem{
				ProjectID:         input.ProjectID,
				ItemDescription:   row.Description,
				Unit:              row.Unit,
				Quantity:          row.Quantity,
				MaterialUnitPrice: row.MaterialUnitPrice,
				LaborUnitPrice:    row.LaborUnitPrice,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create boq item")
			}
			outcome.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func buildComponents(inputs []ComponentInput) []models.BoqItemComponent {
	if len(inputs) == 0 {
		return nil
	}
	components := make([]models.BoqItemComponent, 0, len(inputs))
	for _, in := range inputs {
		components = append(components, models.BoqItemComponent{
			ResourceType:       in.ResourceType,
			Name:               strings.TrimSpace(in.Name),
			QuantityFactor:     in.QuantityFactor,
			UnitRate:           in.UnitRate,
			TotalComponentCost: ComponentCost(in.QuantityFactor, in.UnitRate),
		})
	}
	return components
}
