package boq

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

type stubBoqRepo struct {
	findItemByID          func(ctx context.Context, id uuid.UUID) (*models.BoqItem, error)
	findItemByDescription func(ctx context.Context, projectID uuid.UUID, description string) (*models.BoqItem, error)
	listItemsByProject    func(ctx context.Context, projectID uuid.UUID) ([]models.BoqItem, error)
	createItem            func(ctx context.Context, item *models.BoqItem) (*models.BoqItem, error)
	updateItem            func(ctx context.Context, id uuid.UUID, updates map[string]any) error
	deleteItem            func(ctx context.Context, id uuid.UUID) error
	replaceComponents     func(ctx context.Context, itemID uuid.UUID, components []models.BoqItemComponent) error
	listComponents        func(ctx context.Context, itemID uuid.UUID) ([]models.BoqItemComponent, error)
}

func (s *stubBoqRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubBoqRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*models.BoqItem, error) {
	if s.findItemByID != nil {
		return s.findItemByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBoqRepo) FindItemByDescription(ctx context.Context, projectID uuid.UUID, description string) (*models.BoqItem, error) {
	if s.findItemByDescription != nil {
		return s.findItemByDescription(ctx, projectID, description)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBoqRepo) ListItemsByProject(ctx context.Context, projectID uuid.UUID) ([]models.BoqItem, error) {
	if s.listItemsByProject != nil {
		return s.listItemsByProject(ctx, projectID)
	}
	return nil, nil
}

func (s *stubBoqRepo) CreateItem(ctx context.Context, item *models.BoqItem) (*models.BoqItem, error) {
	if s.createItem != nil {
		return s.createItem(ctx, item)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return item, nil
}

func (s *stubBoqRepo) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updateItem != nil {
		return s.updateItem(ctx, id, updates)
	}
	return nil
}

func (s *stubBoqRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if s.deleteItem != nil {
		return s.deleteItem(ctx, id)
	}
	return nil
}

func (s *stubBoqRepo) ReplaceComponents(ctx context.Context, itemID uuid.UUID, components []models.BoqItemComponent) error {
	if s.replaceComponents != nil {
		return s.replaceComponents(ctx, itemID, components)
	}
	return nil
}

func (s *stubBoqRepo) ListComponents(ctx context.Context, itemID uuid.UUID) ([]models.BoqItemComponent, error) {
	if s.listComponents != nil {
		return s.listComponents(ctx, itemID)
	}
	return nil, nil
}

type stubProjectReader struct {
	findByID func(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

func (s *stubProjectReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestUpsertItemDerivesPricesFromComponents(t *testing.T) {
	projectID := uuid.New()
	var created *models.BoqItem
	var replaced []models.BoqItemComponent

	repo := &stubBoqRepo{
		createItem: func(ctx context.Context, item *models.BoqItem) (*models.BoqItem, error) {
			item.ID = uuid.New()
			created = item
			return item, nil
		},
		replaceComponents: func(ctx context.Context, itemID uuid.UUID, components []models.BoqItemComponent) error {
			replaced = components
			return nil
		},
		findItemByID: func(ctx context.Context, id uuid.UUID) (*models.BoqItem, error) {
			return created, nil
		},
	}
	svc, err := NewService(repo, &stubProjectReader{}, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.UpsertItem(context.Background(), UpsertItemInput{
		ProjectID:       projectID,
		ItemDescription: "FOOTING EXCAVATION",
		Unit:            "cu.m",
		Quantity:        dec("12"),
		// submitted prices are ignored when components are present
		MaterialUnitPrice: dec("999"),
		Components: []ComponentInput{
			{ResourceType: enums.ResourceTypeMaterial, Name: "Gravel", QuantityFactor: dec("0.5"), UnitRate: dec("800")},
			{ResourceType: enums.ResourceTypeLabor, Name: "Laborer", QuantityFactor: dec("2"), UnitRate: dec("350")},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.MaterialUnitPrice.Equal(dec("400")), "got %s", created.MaterialUnitPrice)
	assert.True(t, created.LaborUnitPrice.Equal(dec("700")), "got %s", created.LaborUnitPrice)
	require.Len(t, replaced, 2)
	assert.True(t, replaced[0].TotalComponentCost.Equal(dec("400")))
}

func TestUpsertItemUpdatesExisting(t *testing.T) {
	projectID := uuid.New()
	existing := &models.BoqItem{
		ID:              uuid.New(),
		ProjectID:       projectID,
		ItemDescription: "CEMENT BAGS",
	}
	var updatedID uuid.UUID
	var updates map[string]any

	repo := &stubBoqRepo{
		findItemByDescription: func(ctx context.Context, pid uuid.UUID, description string) (*models.BoqItem, error) {
			return existing, nil
		},
		updateItem: func(ctx context.Context, id uuid.UUID, u map[string]any) error {
			updatedID = id
			updates = u
			return nil
		},
		findItemByID: func(ctx context.Context, id uuid.UUID) (*models.BoqItem, error) {
			return existing, nil
		},
	}
	svc, err := NewService(repo, &stubProjectReader{}, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.UpsertItem(context.Background(), UpsertItemInput{
		ProjectID:         projectID,
		ItemDescription:   "CEMENT BAGS",
		Unit:              "bag",
		Quantity:          dec("20"),
		MaterialUnitPrice: dec("255"),
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, updatedID)
	assert.Equal(t, "bag", updates["unit"])
}

func TestUpsertItemValidation(t *testing.T) {
	svc, err := NewService(&stubBoqRepo{}, &stubProjectReader{}, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.UpsertItem(context.Background(), UpsertItemInput{ItemDescription: "X", Unit: "pc"})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	_, err = svc.UpsertItem(context.Background(), UpsertItemInput{
		ProjectID: uuid.New(),
		Unit:      "pc",
	})
	require.Error(t, err)
}

func TestSummaryUsesProjectAreas(t *testing.T) {
	projectID := uuid.New()
	floor := dec("33")
	carport := dec("11")

	repo := &stubBoqRepo{
		listItemsByProject: func(ctx context.Context, pid uuid.UUID) ([]models.BoqItem, error) {
			return []models.BoqItem{
				{MaterialUnitPrice: dec("100"), LaborUnitPrice: dec("50"), Quantity: dec("2")},
				{MaterialUnitPrice: dec("200"), LaborUnitPrice: decimal.Zero, Quantity: dec("1"), IsCarport: true},
			}, nil
		},
	}
	projects := &stubProjectReader{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.Project, error) {
			return &models.Project{ID: projectID, TotalFloorArea: &floor, CarportArea: &carport}, nil
		},
	}
	svc, err := NewService(repo, projects, stubTxRunner{})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), projectID)
	require.NoError(t, err)
	assert.True(t, summary.TotalWithMarkup.Equal(dec("550")))
	assert.True(t, summary.RatePerSqmBuilding.Equal(dec("10")))
	assert.True(t, summary.RatePerSqmCarport.Equal(dec("20")))
}

func TestSummaryProjectNotFound(t *testing.T) {
	svc, err := NewService(&stubBoqRepo{}, &stubProjectReader{}, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Summary(context.Background(), uuid.New())
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestBulkImportCountsOutcome(t *testing.T) {
	projectID := uuid.New()
	existing := &models.BoqItem{ID: uuid.New(), ProjectID: projectID, ItemDescription: "CEMENT"}

	repo := &stubBoqRepo{
		findItemByDescription: func(ctx context.Context, pid uuid.UUID, description string) (*models.BoqItem, error) {
			if description == "CEMENT" {
				return existing, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	projects := &stubProjectReader{
		findByID: func(ctx context.Context, id uuid.UUID) (*models.Project, error) {
			return &models.Project{ID: projectID}, nil
		},
	}
	svc, err := NewService(repo, projects, stubTxRunner{})
	require.NoError(t, err)

	content := "ITEM DESCRIPTION,UNIT,QUANTITY,MATERIAL UNIT COST\n" +
		"CEMENT,bag,10,250\n" +
		"REBAR,pc,50,120\n" +
		",pc,5,10\n"

	outcome, err := svc.BulkImport(context.Background(), BulkImportInput{ProjectID: projectID, Content: content})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Updated)
	assert.Equal(t, 1, outcome.Created)
	assert.Equal(t, 1, outcome.Skipped)
}
