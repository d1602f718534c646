package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
)

type mockUserSearcher struct {
	users []*model.User
	err   error
}

func (m *mockUserSearcher) SearchUsers(_ context.Context, _ string, _ int) ([]*model.User, error) {
	return m.users, m.err
}

type mockRevoker struct {
	revoked int64
	err     error
	gotID   string
}

func (m *mockRevoker) RevokeAllTokens(_ context.Context, userID string) (int64, error) {
	m.gotID = userID
	return m.revoked, m.err
}

func TestAdminHandler_ListUsers(t *testing.T) {
	searcher := &mockUserSearcher{users: []*model.User{
		{ID: "user_1", Email: "a@company.com"},
		{ID: "user_2", Email: "b@company.com"},
	}}
	h := NewAdminHandler(searcher, &mockRevoker{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?q=company", nil)
	rec := httptest.NewRecorder()
	h.ListUsers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp dto.UserListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}

func TestAdminHandler_ListUsers_Error(t *testing.T) {
	h := NewAdminHandler(&mockUserSearcher{err: errors.New("db down")}, &mockRevoker{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	rec := httptest.NewRecorder()
	h.ListUsers(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAdminHandler_RevokeTokens(t *testing.T) {
	revoker := &mockRevoker{revoked: 3}
	h := NewAdminHandler(&mockUserSearcher{}, revoker, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/user_2/revoke-tokens", nil)
	req = withURLParam(req, "id", "user_2")
	rec := httptest.NewRecorder()
	h.RevokeTokens(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if revoker.gotID != "user_2" {
		t.Errorf("revoked user = %q, want user_2", revoker.gotID)
	}

	var resp dto.RevokeTokensResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Revoked != 3 {
		t.Errorf("revoked = %d, want 3", resp.Revoked)
	}
}

func TestMetricsHandler(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncUserRegistered()
	recorder.IncLogin("success")
	recorder.IncLogin("failure")
	recorder.IncTagCreated()

	h := NewMetricsHandler(recorder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/metrics", nil)
	rec := httptest.NewRecorder()
	h.Metrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"recipebox_users_registered_total 1",
		`recipebox_logins_total{status="success"} 1`,
		`recipebox_logins_total{status="failure"} 1`,
		"recipebox_tags_created_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/metrics", nil)
	rec := httptest.NewRecorder()
	h.Metrics(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
