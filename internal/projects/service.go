package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

// ClientReader verifies the owning client exists before a project write.
type ClientReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// Input carries the writable project fields. Areas feed the BOQ per-sqm
// rate derivation and may be omitted.
type Input struct {
	ClientID       uuid.UUID            `json:"client_id" validate:"required"`
	Name           string               `json:"name" validate:"required"`
	Location       *string              `json:"location"`
	Status         *enums.ProjectStatus `json:"status"`
	TotalFloorArea *decimal.Decimal     `json:"total_floor_area"`
	CarportArea    *decimal.Decimal     `json:"carport_area"`
	StartDate      *time.Time           `json:"start_date"`
}

// Service exposes project CRUD.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	clients ClientReader
}

// NewService builds a project service.
func NewService(repo Repository, clients ClientReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	if clients == nil {
		return nil, fmt.Errorf("client reader required")
	}
	return &service{repo: repo, clients: clients}, nil
}

func (s *service) validate(ctx context.Context, input Input) (string, enums.ProjectStatus, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "project name required")
	}
	if input.ClientID == uuid.Nil {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	status := enums.ProjectStatusPlanning
	if input.Status != nil {
		if !input.Status.IsValid() {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid project status")
		}
		status = *input.Status
	}
	if input.TotalFloorArea != nil && input.TotalFloorArea.IsNegative() {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "floor area cannot be negative")
	}
	if input.CarportArea != nil && input.CarportArea.IsNegative() {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "carport area cannot be negative")
	}
	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", "", pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return name, status, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Project, error) {
	name, status, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	project, err := s.repo.Create(ctx, &models.Project{
		ClientID:       input.ClientID,
		Name:           name,
		Location:       input.Location,
		Status:         status,
		TotalFloorArea: input.TotalFloorArea,
		CarportArea:    input.CarportArea,
		StartDate:      input.StartDate,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}
	return project, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}

func (s *service) List(ctx context.Context) ([]models.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}
	return projects, nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	projects, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}
	return projects, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Project, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	name, status, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"client_id":        input.ClientID,
		"name":             name,
		"location":         input.Location,
		"status":           status,
		"total_floor_area": input.TotalFloorArea,
		"carport_area":     input.CarportArea,
		"start_date":       input.StartDate,
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	return nil
}
