package rfqs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// Repository defines persistence operations for RFQs and their quotations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rfq *models.RFQ) (*models.RFQ, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.RFQ, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.RFQ, error)
	CountWithPrefix(ctx context.Context, prefix string) (int64, error)
	// TransitionStatus flips the RFQ from one status to another and reports
	// whether the guarded update matched a row.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RFQStatus) (bool, error)
	CreateQuotation(ctx context.Context, quotation *models.SupplierQuotation) (*models.SupplierQuotation, error)
	FindQuotationByID(ctx context.Context, id uuid.UUID) (*models.SupplierQuotation, error)
	UnselectQuotations(ctx context.Context, rfqID uuid.UUID) error
	SelectQuotation(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an RFQ repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rfq *models.RFQ) (*models.RFQ, error) {
	if rfq.ID == uuid.Nil {
		rfq.ID = uuid.New()
	}
	for i := range rfq.Items {
		if rfq.Items[i].ID == uuid.Nil {
			rfq.Items[i].ID = uuid.New()
		}
		rfq.Items[i].RFQID = rfq.ID
	}
	if err := r.db.WithContext(ctx).Create(rfq).Error; err != nil {
		return nil, err
	}
	return rfq, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RFQ, error) {
	var rfq models.RFQ
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Quotations").
		Preload("Quotations.Supplier").
		Preload("Quotations.Items").
		First(&rfq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.RFQ, error) {
	var out []models.RFQ
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Quotations").
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
		Model(&models.RFQ{}).
		Where("rfq_number LIKE ?", fmt.Sprintf("%s%%", prefix)).
		Count(&count).Error
	return count, err
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RFQStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RFQ{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateQuotation(ctx context.Context, quotation *models.SupplierQuotation) (*models.SupplierQuotation, error) {
	if quotation.ID == uuid.Nil {
		quotation.ID = uuid.New()
	}
	for i := range quotation.Items {
		if quotation.Items[i].ID == uuid.Nil {
			quotation.Items[i].ID = uuid.New()
		}
		quotation.Items[i].QuotationID = quotation.ID
	}
	if err := r.db.WithContext(ctx).Create(quotation).Error; err != nil {
		return nil, err
	}
	return quotation, nil
}

func (r *repository) FindQuotationByID(ctx context.Context, id uuid.UUID) (*models.SupplierQuotation, error) {
	var quotation models.SupplierQuotation
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Supplier").
		First(&quotation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repository) UnselectQuotations(ctx context.Context, rfqID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierQuotation{}).
		Where("rfq_id = ?", rfqID).
		UpdateColumn("is_selected", false).Error
}

func (r *repository) SelectQuotation(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierQuotation{}).
		Where("id = ?", id).
		UpdateColumn("is_selected", true).Error
}
