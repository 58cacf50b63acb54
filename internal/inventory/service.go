package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service maintains per-project stock balances and the movements ledger.
type Service interface {
	// Receive books incoming stock. It accepts an optional transaction so a
	// receiving report and its stock effects commit together.
	Receive(ctx context.Context, tx *gorm.DB, input ReceiptInput) (*models.StockItem, error)
	Issue(ctx context.Context, input IssueInput) (*models.StockItem, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.StockItem, error)
	ListStock(ctx context.Context, projectID uuid.UUID) ([]models.StockItem, error)
	ListMovements(ctx context.Context, stockItemID uuid.UUID) ([]models.StockMovement, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an inventory service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Receive(ctx context.Context, tx *gorm.DB, input ReceiptInput) (*models.StockItem, error) {
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	materialName := strings.TrimSpace(input.MaterialName)
	if materialName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material name required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	repo := s.repo.WithTx(tx)
	item, err := repo.FindOrCreateStockItem(ctx, input.ProjectID, materialName, strings.TrimSpace(input.Unit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stock item")
	}
	if err := repo.AddQuantity(ctx, item.ID, input.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add stock quantity")
	}
	if err := repo.CreateMovement(ctx, &models.StockMovement{
		StockItemID: item.ID,
		Type:        enums.StockMovementTypeReceipt,
		Quantity:    input.Quantity,
		RefType:     input.RefType,
		RefID:       input.RefID,
		CreatedBy:   input.CreatedBy,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}

	item.OnHandQty = item.OnHandQty.Add(input.Quantity)
	return item, nil
}

func (s *service) Issue(ctx context.Context, input IssueInput) (*models.StockItem, error) {
	if input.StockItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	if _, err := s.loadStockItem(ctx, input.StockItemID); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ok, err := repo.SubtractQuantityGuarded(ctx, input.StockItemID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subtract stock quantity")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock on hand")
		}

		return repo.CreateMovement(ctx, &models.StockMovement{
			StockItemID: input.StockItemID,
			Type:        enums.StockMovementTypeIssue,
			Quantity:    input.Quantity,
			Notes:       input.Notes,
			CreatedBy:   input.CreatedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.loadStockItem(ctx, input.StockItemID)
}

// Adjust reconciles the balance to a counted quantity; the movement records
// the absolute difference.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.StockItem, error) {
	if input.StockItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	if input.NewQuantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user required")
	}

	item, err := s.loadStockItem(ctx, input.StockItemID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.SetQuantity(ctx, item.ID, input.NewQuantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set stock quantity")
		}
		return repo.CreateMovement(ctx, &models.StockMovement{
			StockItemID: item.ID,
			Type:        enums.StockMovementTypeAdjustment,
			Quantity:    input.NewQuantity.Sub(item.OnHandQty).Abs(),
			Notes:       input.Notes,
			CreatedBy:   input.CreatedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.loadStockItem(ctx, input.StockItemID)
}

func (s *service) ListStock(ctx context.Context, projectID uuid.UUID) ([]models.StockItem, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	items, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock items")
	}
	return items, nil
}

func (s *service) ListMovements(ctx context.Context, stockItemID uuid.UUID) ([]models.StockMovement, error) {
	if stockItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	movements, err := s.repo.ListMovements(ctx, stockItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return movements, nil
}

func (s *service) loadStockItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	item, err := s.repo.FindStockItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	return item, nil
}
