package materialrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

const refType = "MR"

// approverRoles may decide a material request; the workflow matrix governs
// RFQ/PO/PAYMENT amounts, plain site requests stay with project management.
var approverRoles = map[enums.UserRole]struct{}{
	enums.UserRoleProjectManager: {},
	enums.UserRoleGeneralManager: {},
	enums.UserRoleAdmin:          {},
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type projectReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

type notifier interface {
	ApprovalRequested(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, approverRole enums.UserRole) error
	DocumentDecided(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, approved bool, recipientID uuid.UUID) error
}

// Service exposes the material request lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.MaterialRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.MaterialRequest, error)
	Approve(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.MaterialRequest, error)
	Decline(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.MaterialRequest, error)
	MarkFulfilled(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     Repository
	projects projectReader
	notify   notifier
	tx       txRunner
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo     Repository
	Projects projectReader
	Notifier notifier
	Tx       txRunner
}

// NewService builds a material requests service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("material requests repository required")
	}
	if params.Projects == nil {
		return nil, fmt.Errorf("project reader required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		projects: params.Projects,
		notify:   params.Notifier,
		tx:       params.Tx,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.MaterialRequest, error) {
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if input.RequestedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requesting user required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	items := make([]models.MaterialRequestItem, 0, len(input.Items))
	total := decimal.Zero
	for i, item := range input.Items {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: description required", i+1))
		}
		unit := strings.TrimSpace(item.Unit)
		if unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit required", i+1))
		}
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i+1))
		}
		if item.EstimatedPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: estimated price cannot be negative", i+1))
		}

		lineTotal := item.Quantity.Mul(item.EstimatedPrice).Round(2)
		total = total.Add(lineTotal)
		items = append(items, models.MaterialRequestItem{
			Description:    description,
			Unit:           unit,
			Quantity:       item.Quantity,
			EstimatedPrice: item.EstimatedPrice,
			TotalPrice:     lineTotal,
		})
	}

	if _, err := s.projects.FindByID(ctx, input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	var created *models.MaterialRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := nextRequestNumber(ctx, repo, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sequence request number")
		}

		request := &models.MaterialRequest{
			RequestNumber: number,
			ProjectID:     input.ProjectID,
			RequestedBy:   input.RequestedBy,
			Status:        enums.MaterialRequestStatusPending,
			NeededBy:      input.NeededBy,
			Purpose:       input.Purpose,
			TotalAmount:   total,
			Items:         items,
		}
		created, err = repo.Create(ctx, request)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create material request")
		}

		event := notifications.DocumentEvent{
			RefType: refType,
			RefID:   created.ID,
			Number:  created.RequestNumber,
			Detail:  fmt.Sprintf("Estimated total %s.", total.StringFixed(2)),
		}
		return s.notify.ApprovalRequested(ctx, tx, event, enums.UserRoleProjectManager)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material request")
	}
	return request, nil
}

func (s *service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.MaterialRequest, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	requests, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list material requests")
	}
	return requests, nil
}

func (s *service) Approve(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.MaterialRequest, error) {
	return s.decide(ctx, id, actorID, actorRole, true)
}

func (s *service) Decline(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.MaterialRequest, error) {
	return s.decide(ctx, id, actorID, actorRole, false)
}

func (s *service) decide(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole, approve bool) (*models.MaterialRequest, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}
	if _, ok := approverRoles[actorRole]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot decide material requests")
	}

	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != enums.MaterialRequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("material request is %s", request.Status))
	}

	status := enums.MaterialRequestStatusApproved
	if !approve {
		status = enums.MaterialRequestStatusDeclined
	}
	now := time.Now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, id, map[string]any{
			"status":     status,
			"decided_by": actorID,
			"decided_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update material request")
		}

		event := notifications.DocumentEvent{
			RefType: refType,
			RefID:   request.ID,
			Number:  request.RequestNumber,
		}
		return s.notify.DocumentDecided(ctx, tx, event, approve, request.RequestedBy)
	})
	if err != nil {
		return nil, err
	}

	request.Status = status
	request.DecidedBy = &actorID
	request.DecidedAt = &now
	return request, nil
}

// MarkFulfilled flips an approved request to FULFILLED once downstream
// procurement (awarded RFQ / completed PO) satisfies it.
func (s *service) MarkFulfilled(ctx context.Context, id uuid.UUID) error {
	request, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if request.Status != enums.MaterialRequestStatusApproved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("material request is %s", request.Status))
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": enums.MaterialRequestStatusFulfilled}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update material request")
	}
	return nil
}

type numberCounter interface {
	CountWithPrefix(ctx context.Context, prefix string) (int64, error)
}

func nextRequestNumber(ctx context.Context, repo numberCounter, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", refType, now.Format("20060102"))
	count, err := repo.CountWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
