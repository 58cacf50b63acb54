package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	clientsvc "github.com/tresmarias-build/procure-backend/internal/clients"
	pkgAuth "github.com/tresmarias-build/procure-backend/pkg/auth"
	"github.com/tresmarias-build/procure-backend/pkg/auth/session"
	"github.com/tresmarias-build/procure-backend/pkg/config"
	"github.com/tresmarias-build/procure-backend/pkg/db/models"
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	"github.com/tresmarias-build/procure-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubClientsService struct {
	list func(ctx context.Context) ([]models.Client, error)
}

func (s stubClientsService) Create(ctx context.Context, input clientsvc.Input) (*models.Client, error) {
	return &models.Client{Name: input.Name}, nil
}

func (s stubClientsService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return &models.Client{ID: id}, nil
}

func (s stubClientsService) List(ctx context.Context) ([]models.Client, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return []models.Client{}, nil
}

func (s stubClientsService) Update(ctx context.Context, id uuid.UUID, input clientsvc.Input) (*models.Client, error) {
	return &models.Client{ID: id, Name: input.Name}, nil
}

func (s stubClientsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config, svcs Services) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, stubSessionManager{}, prometheus.NewRegistry(), svcs)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	require.NoError(t, err)
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), Services{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestHealthReadyProbesDependencies(t *testing.T) {
	router := newTestRouter(testConfig(), Services{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig(), Services{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(testConfig(), Services{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/clients/", nil))

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleSiteEngineer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAuthedRouteReachesService(t *testing.T) {
	cfg := testConfig()
	svc := stubClientsService{list: func(ctx context.Context) ([]models.Client, error) {
		return []models.Client{{Name: "Tres Marias Build"}}, nil
	}}
	router := newTestRouter(cfg, Services{Clients: svc})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleProjectManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data []models.Client `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "Tres Marias Build", envelope.Data[0].Name)
}
