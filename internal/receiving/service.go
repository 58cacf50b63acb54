package receiving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/internal/inventory"
	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/internal/purchaseorders"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

const refType = "GRN"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderRepository interface {
	WithTx(tx *gorm.DB) purchaseorders.Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
}

type stockReceiver interface {
	Receive(ctx context.Context, tx *gorm.DB, input inventory.ReceiptInput) (*models.StockItem, error)
}

type notifier interface {
	DeliveryReceived(ctx context.Context, tx *gorm.DB, event notifications.DocumentEvent, recipientRole enums.UserRole) error
}

// Service books deliveries (GRNs) against approved purchase orders and keeps
// stock balances in step.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.ReceivingReport, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ReceivingReport, error)
	ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.ReceivingReport, error)
}

type service struct {
	repo   Repository
	orders orderRepository
	stock  stockReceiver
	notify notifier
	tx     txRunner
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo     Repository
	Orders   orderRepository
	Stock    stockReceiver
	Notifier notifier
	Tx       txRunner
}

// NewService builds a receiving service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("receiving repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("purchase orders repository required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock receiver required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:   params.Repo,
		orders: params.Orders,
		stock:  params.Stock,
		notify: params.Notifier,
		tx:     params.Tx,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.ReceivingReport, error) {
	if input.PurchaseOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	if input.ReceivedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiving user required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	order, err := s.orders.FindByID(ctx, input.PurchaseOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	if order.Status != enums.PurchaseOrderStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("purchase order is %s", order.Status))
	}

	orderItems := make(map[uuid.UUID]*models.PurchaseOrderItem, len(order.Items))
	for i := range order.Items {
		orderItems[order.Items[i].ID] = &order.Items[i]
	}

	lines := make([]models.ReceivingReportItem, 0, len(input.Items))
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for i, item := range input.Items {
		if _, ok := orderItems[item.PurchaseOrderItemID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: not part of the purchase order", i+1))
		}
		if _, dup := seen[item.PurchaseOrderItemID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: duplicate purchase order item", i+1))
		}
		seen[item.PurchaseOrderItemID] = struct{}{}
		if !item.QuantityReceived.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i+1))
		}
		lines = append(lines, models.ReceivingReportItem{
			PurchaseOrderItemID: item.PurchaseOrderItemID,
			QuantityReceived:    item.QuantityReceived,
			Remarks:             item.Remarks,
		})
	}

	receivedAt := time.Now().UTC()
	if input.ReceivedAt != nil {
		receivedAt = input.ReceivedAt.UTC()
	}

	var created *models.ReceivingReport
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orders := s.orders.WithTx(tx)

		number, err := nextGRNNumber(ctx, repo, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sequence grn number")
		}

		report := &models.ReceivingReport{
			GRNNumber:       number,
			PurchaseOrderID: order.ID,
			ReceivedBy:      input.ReceivedBy,
			ReceivedAt:      receivedAt,
			DeliveryRef:     input.DeliveryRef,
			Notes:           input.Notes,
			Items:           lines,
		}
		created, err = repo.Create(ctx, report)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create receiving report")
		}

		received := make(map[uuid.UUID]decimal.Decimal, len(created.Items))
		for _, line := range created.Items {
			poItem := orderItems[line.PurchaseOrderItemID]
			received[line.PurchaseOrderItemID] = line.QuantityReceived

			if err := orders.AddItemReceivedQty(ctx, line.PurchaseOrderItemID, line.QuantityReceived); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accumulate received quantity")
			}

			grnRef := refType
			refID := created.ID
			if _, err := s.stock.Receive(ctx, tx, inventory.ReceiptInput{
				ProjectID:    order.ProjectID,
				MaterialName: poItem.Description,
				Unit:         poItem.Unit,
				Quantity:     line.QuantityReceived,
				RefType:      &grnRef,
				RefID:        &refID,
				CreatedBy:    input.ReceivedBy,
			}); err != nil {
				return err
			}
		}

		if orderFullyReceived(order.Items, received) {
			// Over-delivery counts as received; a concurrent completion is fine.
			if _, err := orders.TransitionStatus(ctx, order.ID, enums.PurchaseOrderStatusApproved, enums.PurchaseOrderStatusCompleted); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete purchase order")
			}
		}

		event := notifications.DocumentEvent{
			RefType: refType,
			RefID:   created.ID,
			Number:  created.GRNNumber,
			Detail:  fmt.Sprintf("Delivery against %s.", order.PONumber),
		}
		return s.notify.DeliveryReceived(ctx, tx, event, enums.UserRoleProcurementStaff)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ReceivingReport, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receiving report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receiving report")
	}
	return report, nil
}

func (s *service) ListByPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.ReceivingReport, error) {
	if poID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	reports, err := s.repo.ListByPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list receiving reports")
	}
	return reports, nil
}

// orderFullyReceived reports whether every order line has met its ordered
// quantity once this delivery lands.
func orderFullyReceived(items []models.PurchaseOrderItem, delivered map[uuid.UUID]decimal.Decimal) bool {
	for _, item := range items {
		total := item.ReceivedQty.Add(delivered[item.ID])
		if total.LessThan(item.Quantity) {
			return false
		}
	}
	return true
}

func nextGRNNumber(ctx context.Context, repo Repository, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", refType, now.Format("20060102"))
	count, err := repo.CountWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
