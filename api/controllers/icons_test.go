package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/monologue-app/monologue-backend/pkg/errors"
)

type testAvatarsService struct {
	iconFn func(ctx context.Context, originImage string) ([]byte, error)
}

func (s *testAvatarsService) Icon(ctx context.Context, originImage string) ([]byte, error) {
	if s.iconFn != nil {
		return s.iconFn(ctx, originImage)
	}
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

func TestGetAccountIconStreamsJPEG(t *testing.T) {
	id := uuid.New()
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01}
	accountsSvc := &testAccountsService{
		originImageFn: func(_ context.Context, got uuid.UUID) (string, error) {
			if got != id {
				t.Fatalf("unexpected id %s", got)
			}
			return "uploads/jelly.png", nil
		},
	}
	avatarsSvc := &testAvatarsService{
		iconFn: func(_ context.Context, origin string) ([]byte, error) {
			if origin != "uploads/jelly.png" {
				t.Fatalf("unexpected origin %s", origin)
			}
			return payload, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id.String()+"/icon", nil)
	req = addRouteParam(req, "accountId", id.String())
	resp := httptest.NewRecorder()

	GetAccountIcon(accountsSvc, avatarsSvc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if resp.Body.Len() != len(payload) {
		t.Fatalf("expected raw image body, got %d bytes", resp.Body.Len())
	}
}

func TestGetAccountIconDerivationFails(t *testing.T) {
	id := uuid.New()
	avatarsSvc := &testAvatarsService{
		iconFn: func(_ context.Context, _ string) ([]byte, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "deriving icon")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id.String()+"/icon", nil)
	req = addRouteParam(req, "accountId", id.String())
	resp := httptest.NewRecorder()

	GetAccountIcon(&testAccountsService{}, avatarsSvc, testLogger())(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json error envelope, got %s", ct)
	}
}

func TestGetAccountIconAccountMissing(t *testing.T) {
	id := uuid.New()
	accountsSvc := &testAccountsService{
		originImageFn: func(_ context.Context, _ uuid.UUID) (string, error) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id.String()+"/icon", nil)
	req = addRouteParam(req, "accountId", id.String())
	resp := httptest.NewRecorder()

	GetAccountIcon(accountsSvc, &testAvatarsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
