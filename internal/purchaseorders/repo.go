package purchaseorders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// Repository defines persistence operations for purchase orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, po *models.PurchaseOrder) (*models.PurchaseOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrderItem, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.PurchaseOrder, error)
	CountWithPrefix(ctx context.Context, prefix string) (int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// TransitionStatus flips the order between statuses and reports whether
	// the guarded update matched a row.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.PurchaseOrderStatus) (bool, error)
	AddItemReceivedQty(ctx context.Context, itemID uuid.UUID, qty decimal.Decimal) error
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.PurchaseOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a purchase orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, po *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	for i := range po.Items {
		if po.Items[i].ID == uuid.Nil {
			po.Items[i].ID = uuid.New()
		}
		po.Items[i].PurchaseOrderID = po.ID
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return nil, err
	}
	return po, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Supplier").
		First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrderItem, error) {
	var item models.PurchaseOrderItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Supplier").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) CountWithPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("po_number LIKE ?", fmt.Sprintf("%s%%", prefix)).
		Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.PurchaseOrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddItemReceivedQty accumulates delivered quantity on one order line.
func (r *repository) AddItemReceivedQty(ctx context.Context, itemID uuid.UUID, qty decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		UpdateColumn("received_qty", gorm.Expr("received_qty + ?", qty)).Error
}

// ListPendingOlderThan returns orders still awaiting a decision past the
// cutoff, oldest first.
func (r *repository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.PurchaseOrderStatusPending, cutoff).
		Order("created_at asc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
