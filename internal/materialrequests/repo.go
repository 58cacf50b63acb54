package materialrequests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// Repository defines persistence operations for material requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.MaterialRequest) (*models.MaterialRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.MaterialRequest, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CountWithPrefix(ctx context.Context, prefix string) (int64, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.MaterialRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a material requests repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.MaterialRequest) (*models.MaterialRequest, error) {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	for i := range request.Items {
		if request.Items[i].ID == uuid.Nil {
			request.Items[i].ID = uuid.New()
		}
		request.Items[i].MaterialRequestID = request.ID
	}
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	var request models.MaterialRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.MaterialRequest, error) {
	var out []models.MaterialRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.MaterialRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountWithPrefix counts requests whose number starts with the prefix.
// Request numbers are sequenced per day from this count.
func (r *repository) CountWithPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MaterialRequest{}).
		Where("request_number LIKE ?", fmt.Sprintf("%s%%", prefix)).
		Count(&count).Error
	return count, err
}

// ListPendingOlderThan returns requests still awaiting a decision past the
// cutoff, oldest first.
func (r *repository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.MaterialRequest, error) {
	var out []models.MaterialRequest
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.MaterialRequestStatusPending, cutoff).
		Order("created_at asc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
