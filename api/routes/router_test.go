package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/monologue-app/monologue-backend/internal/accounts"
	"github.com/monologue-app/monologue-backend/pkg/config"
	"github.com/monologue-app/monologue-backend/pkg/logger"
	"github.com/monologue-app/monologue-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAccountsService struct{}

func (stubAccountsService) CreateUser(ctx context.Context, input accounts.CreateAccountInput) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: uuid.New(), Username: input.Username}, nil
}

func (stubAccountsService) CreateSuperuser(ctx context.Context, input accounts.CreateAccountInput) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: uuid.New(), Username: input.Username}, nil
}

func (stubAccountsService) Get(ctx context.Context, id uuid.UUID) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: id}, nil
}

func (stubAccountsService) List(ctx context.Context, params pagination.Params) (*accounts.ListResult, error) {
	return &accounts.ListResult{Items: []accounts.AccountDTO{}}, nil
}

func (stubAccountsService) Update(ctx context.Context, id uuid.UUID, input accounts.UpdateAccountInput) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: id}, nil
}

func (stubAccountsService) Patch(ctx context.Context, id uuid.UUID, input accounts.PatchAccountInput) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: id}, nil
}

func (stubAccountsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubAccountsService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return nil
}

func (stubAccountsService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return nil
}

func (stubAccountsService) Followers(ctx context.Context, id uuid.UUID) ([]accounts.AccountRefDTO, error) {
	return []accounts.AccountRefDTO{}, nil
}

func (stubAccountsService) Following(ctx context.Context, id uuid.UUID) ([]accounts.AccountRefDTO, error) {
	return []accounts.AccountRefDTO{}, nil
}

func (stubAccountsService) EmailUser(ctx context.Context, id uuid.UUID, input accounts.EmailInput) error {
	return nil
}

func (stubAccountsService) VerifyCredentials(ctx context.Context, username, password string) (*accounts.AccountDTO, error) {
	return &accounts.AccountDTO{ID: uuid.New()}, nil
}

func (stubAccountsService) OriginImage(ctx context.Context, id uuid.UUID) (string, error) {
	return "static/photos/fish_jellyfish.png", nil
}

type stubAvatarsService struct{}

func (stubAvatarsService) Icon(ctx context.Context, originImage string) ([]byte, error) {
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{App: config.AppConfig{Env: "dev", Port: "8080"}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, stubAccountsService{}, stubAvatarsService{})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()
	id := uuid.NewString()
	target := uuid.NewString()

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodGet, "/api/v1/accounts/", "", http.StatusOK},
		{http.MethodPost, "/api/v1/accounts/", `{"screen_name":"J","username":"jelly","email":"j@example.com","password":"x"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/accounts/" + id + "/", "", http.StatusOK},
		{http.MethodPut, "/api/v1/accounts/" + id + "/", `{"screen_name":"J","username":"jelly","email":"j@example.com","bio":""}`, http.StatusOK},
		{http.MethodPatch, "/api/v1/accounts/" + id + "/", `{"bio":"hi"}`, http.StatusOK},
		{http.MethodDelete, "/api/v1/accounts/" + id + "/", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/accounts/" + id + "/icon", "", http.StatusOK},
		{http.MethodGet, "/api/v1/accounts/" + id + "/followers", "", http.StatusOK},
		{http.MethodGet, "/api/v1/accounts/" + id + "/following", "", http.StatusOK},
		{http.MethodPut, "/api/v1/accounts/" + id + "/following/" + target, "", http.StatusNoContent},
		{http.MethodDelete, "/api/v1/accounts/" + id + "/following/" + target, "", http.StatusNoContent},
		{http.MethodPost, "/api/admin/v1/accounts/superuser", `{"screen_name":"A","username":"admin","email":"a@example.com","password":"x"}`, http.StatusCreated},
		{http.MethodPost, "/api/admin/v1/accounts/" + id + "/email", `{"subject":"hi","message":"hello"}`, http.StatusAccepted},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d got %d: %s", tc.method, tc.path, tc.want, resp.Code, resp.Body.String())
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id header")
	}
}

func TestRouterRecoversFromPanic(t *testing.T) {
	// Panic inside a handler must surface as a 500 envelope, not crash.
	router := NewRouter(
		&config.Config{App: config.AppConfig{Env: "dev"}},
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		panicPinger{},
		nil,
		stubAccountsService{},
		stubAvatarsService{},
	)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

type panicPinger struct{}

func (panicPinger) Ping(context.Context) error {
	panic("db exploded")
}
