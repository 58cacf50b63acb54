package receiving

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
)

// Repository defines persistence operations for receiving reports.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, report *models.ReceivingReport) (*models.ReceivingReport, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReceivingReport, error)
	ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.ReceivingReport, error)
	CountWithPrefix(ctx context.Context, prefix string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a receiving repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, report *models.ReceivingReport) (*models.ReceivingReport, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	for i := range report.Items {
		if report.Items[i].ID == uuid.Nil {
			report.Items[i].ID = uuid.New()
		}
		report.Items[i].ReceivingReportID = report.ID
	}
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReceivingReport, error) {
	var report models.ReceivingReport
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *repository) ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.ReceivingReport, error) {
	var out []models.ReceivingReport
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("purchase_order_id = ?", poID).
		Order("received_at desc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) CountWithPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReceivingReport{}).
		Where("grn_number LIKE ?", fmt.Sprintf("%s%%", prefix)).
		Count(&count).Error
	return count, err
}
