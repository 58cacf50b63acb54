package workflow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// Repository defines persistence operations for workflow rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rule *models.WorkflowRule) (*models.WorkflowRule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WorkflowRule, error)
	List(ctx context.Context) ([]models.WorkflowRule, error)
	ListByProcessType(ctx context.Context, processType enums.ProcessType) ([]models.WorkflowRule, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a workflow rule repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rule *models.WorkflowRule) (*models.WorkflowRule, error) {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkflowRule, error) {
	var rule models.WorkflowRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) List(ctx context.Context) ([]models.WorkflowRule, error) {
	var rules []models.WorkflowRule
	err := r.db.WithContext(ctx).
		Order("process_type ASC, step_order ASC, min_amount ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) ListByProcessType(ctx context.Context, processType enums.ProcessType) ([]models.WorkflowRule, error) {
	var rules []models.WorkflowRule
	err := r.db.WithContext(ctx).
		Where("process_type = ?", processType).
		Order("step_order ASC, min_amount ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.WorkflowRule{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.WorkflowRule{}).Error
}
