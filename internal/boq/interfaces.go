package boq

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
)

// Repository defines persistence operations for BOQ items and components.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.BoqItem, error)
	FindItemByDescription(ctx context.Context, projectID uuid.UUID, description string) (*models.BoqItem, error)
	ListItemsByProject(ctx context.Context, projectID uuid.UUID) ([]models.BoqItem, error)
	CreateItem(ctx context.Context, item *models.BoqItem) (*models.BoqItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ReplaceComponents(ctx context.Context, itemID uuid.UUID, components []models.BoqItemComponent) error
	ListComponents(ctx context.Context, itemID uuid.UUID) ([]models.BoqItemComponent, error)
}

// ProjectReader supplies the project attributes the summary needs.
type ProjectReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}
