package rfqs

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

const refType = "RFQ"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type materialRequestReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.MaterialRequest, error)
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type authorizer interface {
	Authorize(ctx context.Context, actor enums.UserRole, processType enums.ProcessType, amount decimal.Decimal) (bool, error)
}

type notifier interface {
	QuotationAwarded(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, recipientID uuid.UUID) error
}

// Service exposes the RFQ lifecycle: raise, collect quotations, award, close.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.RFQ, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RFQ, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.RFQ, error)
	SubmitQuotation(ctx context.Context, input SubmitQuotationInput) (*models.SupplierQuotation, error)
	AwardQuotation(ctx context.Context, quotationID, actorID uuid.UUID, actorRole enums.UserRole) (*models.RFQ, error)
	Close(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      Repository
	requests  materialRequestReader
	suppliers supplierReader
	approvals authorizer
	notify    notifier
	tx        txRunner
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo      Repository
	Requests  materialRequestReader
	Suppliers supplierReader
	Approvals authorizer
	Notifier  notifier
	Tx        txRunner
}

// NewService builds an RFQ service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if params.Requests == nil {
		return nil, fmt.Errorf("material request reader required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier reader required")
	}
	if params.Approvals == nil {
		return nil, fmt.Errorf("workflow authorizer required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      params.Repo,
		requests:  params.Requests,
		suppliers: params.Suppliers,
		approvals: params.Approvals,
		notify:    params.Notifier,
		tx:        params.Tx,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.RFQ, error) {
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creating user required")
	}

	items, err := s.resolveItems(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	var created *models.RFQ
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := nextRFQNumber(ctx, repo, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sequence rfq number")
		}

		rfq := &models.RFQ{
			RFQNumber:         number,
			ProjectID:         input.ProjectID,
			MaterialRequestID: input.MaterialRequestID,
			Status:            enums.RFQStatusOpen,
			CreatedBy:         input.CreatedBy,
			QuoteDeadline:     input.QuoteDeadline,
			Notes:             input.Notes,
			Items:             items,
		}
		created, err = repo.Create(ctx, rfq)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rfq")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveItems copies lines from the referenced material request when the
// payload carries none of its own. A referenced request must be APPROVED.
func (s *service) resolveItems(ctx context.Context, input CreateInput) ([]models.RFQItem, error) {
	if input.MaterialRequestID != nil {
		request, err := s.requests.FindByID(ctx, *input.MaterialRequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material request not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material request")
		}
		if request.Status != enums.MaterialRequestStatusApproved {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("material request is %s", request.Status))
		}
		if request.ProjectID != input.ProjectID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material request belongs to a different project")
		}
		if len(input.Items) == 0 {
			items := make([]models.RFQItem, 0, len(request.Items))
			for _, line := range request.Items {
				items = append(items, models.RFQItem{
					Description: line.Description,
					Unit:        line.Unit,
					Quantity:    line.Quantity,
				})
			}
			return items, nil
		}
	}

	items := make([]models.RFQItem, 0, len(input.Items))
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
		items = append(items, models.RFQItem{
			Description: description,
			Unit:        unit,
			Quantity:    item.Quantity,
		})
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rfq")
	}
	return rfq, nil
}

func (s *service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.RFQ, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	out, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rfqs")
	}
	return out, nil
}

func (s *service) SubmitQuotation(ctx context.Context, input SubmitQuotationInput) (*models.SupplierQuotation, error) {
	if input.RFQID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rfq id required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	rfq, err := s.Get(ctx, input.RFQID)
	if err != nil {
		return nil, err
	}
	if rfq.Status != enums.RFQStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("rfq is %s", rfq.Status))
	}

	supplier, err := s.suppliers.FindByID(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if !supplier.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier is inactive")
	}

	items := make([]models.QuotationItem, 0, len(input.Items))
	total := decimal.Zero
	for i, item := range input.Items {
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

		lineTotal := item.Quantity.Mul(item.UnitPrice).Round(2)
		total = total.Add(lineTotal)
		items = append(items, models.QuotationItem{
			RFQItemID:   item.RFQItemID,
			Description: description,
			Unit:        strings.TrimSpace(item.Unit),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  lineTotal,
		})
	}

	quotation := &models.SupplierQuotation{
		RFQID:       input.RFQID,
		SupplierID:  input.SupplierID,
		TotalAmount: total,
		ValidUntil:  input.ValidUntil,
		Notes:       input.Notes,
		Items:       items,
	}
	created, err := s.repo.CreateQuotation(ctx, quotation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quotation")
	}
	return created, nil
}

// AwardQuotation marks the winner and flips the RFQ to AWARDED. The status
// transition is guarded so a concurrent award observes the conflict instead
// of producing two selected quotations.
func (s *service) AwardQuotation(ctx context.Context, quotationID, actorID uuid.UUID, actorRole enums.UserRole) (*models.RFQ, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	quotation, err := s.repo.FindQuotationByID(ctx, quotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
	}

	allowed, err := s.approvals.Authorize(ctx, actorRole, enums.ProcessTypeRFQ, quotation.TotalAmount)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot award this rfq amount")
	}

	rfq, err := s.Get(ctx, quotation.RFQID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		moved, err := repo.TransitionStatus(ctx, rfq.ID, enums.RFQStatusOpen, enums.RFQStatusAwarded)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition rfq status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("rfq is %s", rfq.Status))
		}

		if err := repo.UnselectQuotations(ctx, rfq.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unselect quotations")
		}
		if err := repo.SelectQuotation(ctx, quotationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "select quotation")
		}

		event := notifications.DocumentEvent{
			RefType: refType,
			RefID:   rfq.ID,
			Number:  rfq.RFQNumber,
			Detail:  fmt.Sprintf("Winning total %s.", quotation.TotalAmount.StringFixed(2)),
		}
		return s.notify.QuotationAwarded(ctx, tx, event, rfq.CreatedBy)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, rfq.ID)
}

// Close retires an open RFQ without an award.
func (s *service) Close(ctx context.Context, id uuid.UUID) error {
	rfq, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	moved, err := s.repo.TransitionStatus(ctx, id, enums.RFQStatusOpen, enums.RFQStatusClosed)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition rfq status")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("rfq is %s", rfq.Status))
	}
	return nil
}

type numberCounter interface {
	CountWithPrefix(ctx context.Context, prefix string) (int64, error)
}

func nextRFQNumber(ctx context.Context, repo numberCounter, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", refType, now.Format("20060102"))
	count, err := repo.CountWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
