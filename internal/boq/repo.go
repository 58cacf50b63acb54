package boq

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a BOQ repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.BoqItem, error) {
	var item models.BoqItem
	err := r.db.WithContext(ctx).
		Preload("Components").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByDescription(ctx context.Context, projectID uuid.UUID, description string) (*models.BoqItem, error) {
	var item models.BoqItem
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND item_description = ?", projectID, description).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItemsByProject(ctx context.Context, projectID uuid.UUID) ([]models.BoqItem, error) {
	var items []models.BoqItem
	err := r.db.WithContext(ctx).
		Preload("Components").
		Where("project_id = ?", projectID).
		Order("item_description ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.BoqItem) (*models.BoqItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.BoqItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.BoqItem{}).Error
}

// ReplaceComponents deletes the item's component rows and recreates them.
// Callers run this inside a transaction with the item update.
func (r *repository) ReplaceComponents(ctx context.Context, itemID uuid.UUID, components []models.BoqItemComponent) error {
	if err := r.db.WithContext(ctx).
		Where("boq_item_id = ?", itemID).
		Delete(&models.BoqItemComponent{}).Error; err != nil {
		return err
	}
	if len(components) == 0 {
		return nil
	}
	for i := range components {
		components[i].BoqItemID = itemID
		if components[i].ID == uuid.Nil {
			components[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&components).Error
}

func (r *repository) ListComponents(ctx context.Context, itemID uuid.UUID) ([]models.BoqItemComponent, error) {
	var components []models.BoqItemComponent
	err := r.db.WithContext(ctx).
		Where("boq_item_id = ?", itemID).
		Order("created_at ASC").
		Find(&components).Error
	if err != nil {
		return nil, err
	}
	return components, nil
}
