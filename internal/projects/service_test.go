package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	pkgerrors "github.com/tresmarias-build/procure-backend/pkg/errors"
)

type stubProjectsRepo struct {
	create   func(ctx context.Context, project *models.Project) (*models.Project, error)
	findByID func(ctx context.Context, id uuid.UUID) (*models.Project, error)
	update   func(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

func (s *stubProjectsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProjectsRepo) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if s.create != nil {
		return s.create(ctx, project)
	}
	project.ID = uuid.New()
	return project, nil
}

func (s *stubProjectsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProjectsRepo) List(ctx context.Context) ([]models.Project, error) { return nil, nil }

func (s *stubProjectsRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	return nil, nil
}

func (s *stubProjectsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.update != nil {
		return s.update(ctx, id, updates)
	}
	return nil
}

func (s *stubProjectsRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubClientReader struct {
	findByID func(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

func (s *stubClientReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func knownClient(id uuid.UUID) *stubClientReader {
	return &stubClientReader{
		findByID: func(ctx context.Context, got uuid.UUID) (*models.Client, error) {
			if got == id {
				return &models.Client{ID: id, Name: "Acme Homes"}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}

func TestCreateProjectDefaultsStatus(t *testing.T) {
	clientID := uuid.New()
	var created *models.Project

	repo := &stubProjectsRepo{
		create: func(ctx context.Context, project *models.Project) (*models.Project, error) {
			project.ID = uuid.New()
			created = project
			return project, nil
		},
	}
	svc, err := NewService(repo, knownClient(clientID))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Input{ClientID: clientID, Name: "Vista Verde Phase 2"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, enums.ProjectStatusPlanning, created.Status)
}

func TestCreateProjectUnknownClient(t *testing.T) {
	svc, err := NewService(&stubProjectsRepo{}, &stubClientReader{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Input{ClientID: uuid.New(), Name: "Orphan"})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestCreateProjectRejectsNegativeArea(t *testing.T) {
	clientID := uuid.New()
	svc, err := NewService(&stubProjectsRepo{}, knownClient(clientID))
	require.NoError(t, err)

	area := decimal.RequireFromString("-5")
	_, err = svc.Create(context.Background(), Input{
		ClientID:       clientID,
		Name:           "Bad Area",
		TotalFloorArea: &area,
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
