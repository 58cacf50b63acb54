package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
)

// Repository defines persistence operations for stock items and movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStockItemByID(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	FindOrCreateStockItem(ctx context.Context, projectID uuid.UUID, materialName, unit string) (*models.StockItem, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.StockItem, error)
	AddQuantity(ctx context.Context, stockItemID uuid.UUID, delta decimal.Decimal) error
	// SubtractQuantityGuarded decrements on-hand stock and reports whether
	// the balance was sufficient; insufficient stock leaves the row untouched.
	SubtractQuantityGuarded(ctx context.Context, stockItemID uuid.UUID, qty decimal.Decimal) (bool, error)
	SetQuantity(ctx context.Context, stockItemID uuid.UUID, qty decimal.Decimal) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, stockItemID uuid.UUID) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an inventory repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStockItemByID(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindOrCreateStockItem(ctx context.Context, projectID uuid.UUID, materialName, unit string) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND material_name = ? AND unit = ?", projectID, materialName, unit).
		First(&item).Error
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item = models.StockItem{
		ID:           uuid.New(),
		ProjectID:    projectID,
		MaterialName: materialName,
		Unit:         unit,
		OnHandQty:    decimal.Zero,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.StockItem, error) {
	var out []models.StockItem
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("material_name asc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) AddQuantity(ctx context.Context, stockItemID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id = ?", stockItemID).
		UpdateColumn("on_hand_qty", gorm.Expr("on_hand_qty + ?", delta)).Error
}

func (r *repository) SubtractQuantityGuarded(ctx context.Context, stockItemID uuid.UUID, qty decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id = ? AND on_hand_qty >= ?", stockItemID, qty).
		UpdateColumn("on_hand_qty", gorm.Expr("on_hand_qty - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetQuantity(ctx context.Context, stockItemID uuid.UUID, qty decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id = ?", stockItemID).
		UpdateColumn("on_hand_qty", qty).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, stockItemID uuid.UUID) ([]models.StockMovement, error) {
	var out []models.StockMovement
	if err := r.db.WithContext(ctx).
		Where("stock_item_id = ?", stockItemID).
		Order("created_at desc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
