package invoices

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

const refType = "INV"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
}

type authorizer interface {
	Authorize(ctx context.Context, actor enums.UserRole, processType enums.ProcessType, amount decimal.Decimal) (bool, error)
}

type notifier interface {
	InvoiceMismatch(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, recipientRole enums.UserRole) error
}

// Service takes supplier invoices through match, payment approval and
// disbursement.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.Invoice, error)
	// Match runs the 3-way reconciliation and moves the invoice to MATCHED
	// or DISPUTED.
	Match(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ApprovePayment(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.Invoice, error)
	RecordDisbursement(ctx context.Context, input DisburseInput) (*models.Invoice, error)
}

type service struct {
	repo     Repository
	orders   orderReader
	workflow authorizer
	notify   notifier
	tx       txRunner
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo     Repository
	Orders   orderReader
	Workflow authorizer
	Notifier notifier
	Tx       txRunner
}

// NewService builds an invoices service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("purchase order reader required")
	}
	if params.Workflow == nil {
		return nil, fmt.Errorf("workflow authorizer required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		orders:   params.Orders,
		workflow: params.Workflow,
		notify:   params.Notifier,
		tx:       params.Tx,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Invoice, error) {
	if input.PurchaseOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	number := strings.TrimSpace(input.InvoiceNumber)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice number required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.InvoiceDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice date required")
	}

	order, err := s.loadOrder(ctx, input.PurchaseOrderID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.Create(ctx, &models.Invoice{
		InvoiceNumber:   number,
		PurchaseOrderID: order.ID,
		SupplierID:      order.SupplierID,
		Amount:          input.Amount.Round(2),
		InvoiceDate:     input.InvoiceDate.UTC(),
		DueDate:         input.DueDate,
		Status:          enums.InvoiceStatusReceived,
		MatchResult:     enums.MatchResultUnmatched,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	return invoice, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.Invoice, error) {
	if poID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	invoices, err := s.repo.ListByPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return invoices, nil
}

func (s *service) Match(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// A disputed invoice may be re-matched after corrections land.
	if invoice.Status != enums.InvoiceStatusReceived && invoice.Status != enums.InvoiceStatusDisputed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("invoice is %s", invoice.Status))
	}

	order, err := s.loadOrder(ctx, invoice.PurchaseOrderID)
	if err != nil {
		return nil, err
	}

	outcome := ThreeWayMatch(order.TotalAmount, receivedValue(order.Items), invoice.Amount)

	status := enums.InvoiceStatusMatched
	if outcome.Result == enums.MatchResultMismatched {
		status = enums.InvoiceStatusDisputed
	}
	now := time.Now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, invoice.ID, map[string]any{
			"status":         status,
			"match_result":   outcome.Result,
			"match_variance": outcome.Variance,
			"match_notes":    outcome.Notes,
			"matched_at":     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record match outcome")
		}

		if outcome.Result != enums.MatchResultMismatched {
			return nil
		}
		event := notifications.DocumentEvent{
			RefType: refType,
			RefID:   invoice.ID,
			Number:  invoice.InvoiceNumber,
			Detail:  fmt.Sprintf("Variance %s against %s.", outcome.Variance.StringFixed(2), order.PONumber),
		}
		return s.notify.InvoiceMismatch(ctx, tx, event, enums.UserRoleFinance)
	})
	if err != nil {
		return nil, err
	}

	invoice.Status = status
	invoice.MatchResult = outcome.Result
	invoice.MatchVariance = &outcome.Variance
	invoice.MatchNotes = &outcome.Notes
	invoice.MatchedAt = &now
	return invoice, nil
}

func (s *service) ApprovePayment(ctx context.Context, id, actorID uuid.UUID, actorRole enums.UserRole) (*models.Invoice, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != enums.InvoiceStatusMatched || invoice.MatchResult != enums.MatchResultMatched {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invoice has not passed the 3-way match")
	}

	allowed, err := s.workflow.Authorize(ctx, actorRole, enums.ProcessTypePayment, invoice.Amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "authorize payment")
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot approve this payment amount")
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		moved, err := repo.TransitionStatus(ctx, invoice.ID, enums.InvoiceStatusMatched, enums.InvoiceStatusApproved)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve invoice")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice already decided")
		}
		return repo.Update(ctx, invoice.ID, map[string]any{
			"approved_by": actorID,
			"approved_at": now,
		})
	})
	if err != nil {
		return nil, err
	}

	invoice.Status = enums.InvoiceStatusApproved
	invoice.ApprovedBy = &actorID
	invoice.ApprovedAt = &now
	return invoice, nil
}

func (s *service) RecordDisbursement(ctx context.Context, input DisburseInput) (*models.Invoice, error) {
	if input.InvoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	invoice, err := s.Get(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != enums.InvoiceStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("invoice is %s", invoice.Status))
	}

	paidAt := time.Now().UTC()
	if input.PaidAt != nil {
		paidAt = input.PaidAt.UTC()
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		disbursed, err := repo.SumDisbursements(ctx, invoice.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum disbursements")
		}
		remaining := invoice.Amount.Sub(disbursed)
		if input.Amount.GreaterThan(remaining) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("amount exceeds remaining balance %s", remaining.StringFixed(2)))
		}

		if _, err := repo.CreateDisbursement(ctx, &models.Disbursement{
			InvoiceID: invoice.ID,
			Amount:    input.Amount.Round(2),
			PaidAt:    paidAt,
			Method:    input.Method,
			Reference: input.Reference,
			CreatedBy: input.CreatedBy,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create disbursement")
		}

		if disbursed.Add(input.Amount).GreaterThanOrEqual(invoice.Amount) {
			moved, err := repo.TransitionStatus(ctx, invoice.ID, enums.InvoiceStatusApproved, enums.InvoiceStatusPaid)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invoice paid")
			}
			if !moved {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice state changed concurrently")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, invoice.ID)
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	return order, nil
}
