package purchaseorders

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
	"github.com/tresmarias-build/procure-backend/internal/workflow"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

const refType = "PO"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quotationReader interface {
	FindQuotationByID(ctx context.Context, id uuid.UUID) (*models.SupplierQuotation, error)
}

type approvalService interface {
	Authorize(ctx context.Context, actor enums.UserRole, processType enums.ProcessType, amount decimal.Decimal) (bool, error)
	Resolve(ctx context.Context, input workflow.ResolveInput) (*workflow.ResolveOutput, error)
}

type notifier interface {
	ApprovalRequested(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, approverRole enums.UserRole) error
	DocumentDecided(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, approved bool, recipientID uuid.UUID) error
}

// Service exposes the purchase order lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PurchaseOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.PurchaseOrder, error)
	Approve(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.PurchaseOrder, error)
	Decline(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole, reason string) (*models.PurchaseOrder, error)
	Cancel(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.PurchaseOrder, error)
}

type service struct {
	repo       Repository
	quotations quotationReader
	approvals  approvalService
	notify     notifier
	tx         txRunner
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo       Repository
	Quotations quotationReader
	Approvals  approvalService
	Notifier   notifier
	Tx         txRunner
}

// NewService builds a purchase orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("purchase orders repository required")
	}
	if params.Quotations == nil {
		return nil, fmt.Errorf("quotation reader required")
	}
	if params.Approvals == nil {
		return nil, fmt.Errorf("workflow service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:       params.Repo,
		quotations: params.Quotations,
		approvals:  params.Approvals,
		notify:     params.Notifier,
		tx:         params.Tx,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PurchaseOrder, error) {
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creating user required")
	}

	supplierID := input.SupplierID
	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	if input.QuotationID != nil {
		quotation, err := s.quotations.FindQuotationByID(ctx, *input.QuotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
		}
		if !quotation.IsSelected {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quotation has not been awarded")
		}
		if supplierID == uuid.Nil {
			supplierID = quotation.SupplierID
		}
		if len(items) == 0 {
			items = itemsFromQuotation(quotation)
		}
	}

	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}

	resolved, err := s.approvals.Resolve(ctx, workflow.ResolveInput{
		ProcessType: enums.ProcessTypePO,
		Amount:      total,
	})
	if err != nil {
		return nil, err
	}

	var created *models.PurchaseOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := nextPONumber(ctx, repo, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sequence po number")
		}

		po := &models.PurchaseOrder{
			PONumber:      number,
			ProjectID:     input.ProjectID,
			SupplierID:    supplierID,
			QuotationID:   input.QuotationID,
			Status:        enums.PurchaseOrderStatusPending,
			TotalAmount:   total,
			DeliveryTerms: input.DeliveryTerms,
			PaymentTerms:  input.PaymentTerms,
			CreatedBy:     input.CreatedBy,
			Items:         items,
		}
		created, err = repo.Create(ctx, po)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
		}

		// No matching approval band means no designated approver to notify;
		// the order stays pending until the matrix covers the amount.
		if resolved.ApproverRole == nil {
			return nil
		}
		event := notifications.DocumentEvent{
			RefType: refType,
			RefID:   created.ID,
			Number:  created.PONumber,
			Detail:  fmt.Sprintf("Total %s.", total.StringFixed(2)),
		}
		return s.notify.ApprovalRequested(ctx, tx, event, *resolved.ApproverRole)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	return po, nil
}

func (s *service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.PurchaseOrder, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	out, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	return out, nil
}

func (s *service) Approve(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.PurchaseOrder, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	po, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != enums.PurchaseOrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("purchase order is %s", po.Status))
	}

	allowed, err := s.approvals.Authorize(ctx, actorRole, enums.ProcessTypePO, po.TotalAmount)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot approve this amount")
	}

	return s.finalize(ctx, po, actorID, enums.PurchaseOrderStatusApproved, nil)
}

func (s *service) Decline(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole, reason string) (*models.PurchaseOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decline reason required")
	}
	po, err := s.guardTerminalDecision(ctx, id, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, po, actorID, enums.PurchaseOrderStatusDeclined, &reason)
}

func (s *service) Cancel(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.PurchaseOrder, error) {
	po, err := s.guardTerminalDecision(ctx, id, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, po, actorID, enums.PurchaseOrderStatusCancelled, nil)
}

// guardTerminalDecision restricts decline/cancel to the resolved approver or
// the order's creator.
func (s *service) guardTerminalDecision(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.PurchaseOrder, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	po, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != enums.PurchaseOrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("purchase order is %s", po.Status))
	}

	if actorID == po.CreatedBy {
		return po, nil
	}
	allowed, err := s.approvals.Authorize(ctx, actorRole, enums.ProcessTypePO, po.TotalAmount)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the approver or creator may do this")
	}
	return po, nil
}

func (s *service) finalize(ctx context.Context, po *models.PurchaseOrder, actorID uuid.UUID, status enums.PurchaseOrderStatus, reason *string) (*models.PurchaseOrder, error) {
	now := time.Now().UTC()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		moved, err := repo.TransitionStatus(ctx, po.ID, enums.PurchaseOrderStatusPending, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition purchase order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order already decided")
		}

		updates := map[string]any{
			"decided_by": actorID,
			"decided_at": now,
		}
		if reason != nil {
			updates["declined_reason"] = *reason
		}
		if err := repo.Update(ctx, po.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record decision")
		}

		event := notifications.DocumentEvent{
			RefType: refType,
			RefID:   po.ID,
			Number:  po.PONumber,
		}
		if reason != nil {
			event.Detail = "Reason: " + *reason
		}
		return s.notify.DocumentDecided(ctx, tx, event, status == enums.PurchaseOrderStatusApproved, po.CreatedBy)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, po.ID)
}

func buildItems(inputs []ItemInput) ([]models.PurchaseOrderItem, error) {
	items := make([]models.PurchaseOrderItem, 0, len(inputs))
	for i, item := range inputs {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: description required", i+1))
		}
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i+1))
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit price cannot be negative", i+1))
		}
		items = append(items, models.PurchaseOrderItem{
			Description: description,
			Unit:        strings.TrimSpace(item.Unit),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.Quantity.Mul(item.UnitPrice).Round(2),
		})
	}
	return items, nil
}

func itemsFromQuotation(quotation *models.SupplierQuotation) []models.PurchaseOrderItem {
	items := make([]models.PurchaseOrderItem, 0, len(quotation.Items))
	for _, line := range quotation.Items {
		items = append(items, models.PurchaseOrderItem{
			Description: line.Description,
			Unit:        line.Unit,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
		})
	}
	return items
}

type numberCounter interface {
	CountWithPrefix(ctx context.Context, prefix string) (int64, error)
}

func nextPONumber(ctx context.Context, repo numberCounter, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", refType, now.Format("20060102"))
	count, err := repo.CountWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
