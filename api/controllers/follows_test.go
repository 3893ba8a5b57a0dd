package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/monologue-app/monologue-backend/internal/accounts"
	pkgerrors "github.com/monologue-app/monologue-backend/pkg/errors"
)

func followRequest(method, action string, accountID, targetID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/accounts/"+accountID.String()+"/"+action+"/"+targetID.String(), nil)
	req = addRouteParam(req, "accountId", accountID.String())
	req = addRouteParam(req, "targetId", targetID.String())
	return req
}

func TestFollowAccountNoContent(t *testing.T) {
	follower := uuid.New()
	followee := uuid.New()
	called := false
	svc := &testAccountsService{
		followFn: func(_ context.Context, gotFollower, gotFollowee uuid.UUID) error {
			called = true
			if gotFollower != follower || gotFollowee != followee {
				t.Fatalf("unexpected edge %s -> %s", gotFollower, gotFollowee)
			}
			return nil
		},
	}

	resp := httptest.NewRecorder()
	FollowAccount(svc, testLogger())(resp, followRequest(http.MethodPut, "following", follower, followee))

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestFollowAccountSelfRejected(t *testing.T) {
	id := uuid.New()
	svc := &testAccountsService{
		followFn: func(_ context.Context, _, _ uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeValidation, "account cannot follow itself")
		},
	}

	resp := httptest.NewRecorder()
	FollowAccount(svc, testLogger())(resp, followRequest(http.MethodPut, "following", id, id))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestFollowAccountInvalidTarget(t *testing.T) {
	follower := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/accounts/"+follower.String()+"/following/garbage", nil)
	req = addRouteParam(req, "accountId", follower.String())
	req = addRouteParam(req, "targetId", "garbage")
	resp := httptest.NewRecorder()

	FollowAccount(&testAccountsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUnfollowAccountMissingEdge(t *testing.T) {
	svc := &testAccountsService{
		unfollowFn: func(_ context.Context, _, _ uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "follow relation not found")
		},
	}

	resp := httptest.NewRecorder()
	UnfollowAccount(svc, testLogger())(resp, followRequest(http.MethodDelete, "following", uuid.New(), uuid.New()))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListFollowers(t *testing.T) {
	id := uuid.New()
	fan := accounts.AccountRefDTO{ID: uuid.New(), ScreenName: "Fan", Username: "fan"}
	svc := &testAccountsService{
		followersFn: func(_ context.Context, got uuid.UUID) ([]accounts.AccountRefDTO, error) {
			if got != id {
				t.Fatalf("unexpected id %s", got)
			}
			return []accounts.AccountRefDTO{fan}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id.String()+"/followers", nil)
	req = addRouteParam(req, "accountId", id.String())
	resp := httptest.NewRecorder()

	ListFollowers(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []accounts.AccountRefDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Username != "fan" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}
