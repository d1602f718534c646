package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/service"
)

type mockTags struct {
	createFn func(ctx context.Context, userID, name string) (*model.Tag, error)
	listFn   func(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error)
	updateFn func(ctx context.Context, userID, id, name string) (*model.Tag, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (m *mockTags) CreateTag(ctx context.Context, userID, name string) (*model.Tag, error) {
	return m.createFn(ctx, userID, name)
}

func (m *mockTags) ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
	return m.listFn(ctx, userID, assignedOnly)
}

func (m *mockTags) UpdateTag(ctx context.Context, userID, id, name string) (*model.Tag, error) {
	return m.updateFn(ctx, userID, id, name)
}

func (m *mockTags) DeleteTag(ctx context.Context, userID, id string) error {
	return m.deleteFn(ctx, userID, id)
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTagHandler_Create(t *testing.T) {
	tags := &mockTags{
		createFn: func(_ context.Context, userID, name string) (*model.Tag, error) {
			if userID != "user_1" {
				t.Errorf("userID = %q", userID)
			}
			return &model.Tag{ID: "tag_1", Name: name, UserID: userID, CreatedAt: time.Now()}, nil
		},
	}
	h := NewTagHandler(tags, testLogger())

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/recipe/tags",
		strings.NewReader(`{"name":"Dessert"}`)), "user_1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp dto.TagResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "Dessert" {
		t.Errorf("name = %q, want Dessert", resp.Name)
	}
}

func TestTagHandler_Create_EmptyName(t *testing.T) {
	tags := &mockTags{
		createFn: func(_ context.Context, _, _ string) (*model.Tag, error) {
			return nil, service.ErrNameRequired
		},
	}
	h := NewTagHandler(tags, testLogger())

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/recipe/tags",
		strings.NewReader(`{"name":""}`)), "user_1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTagHandler_Create_DuplicateName(t *testing.T) {
	tags := &mockTags{
		createFn: func(_ context.Context, _, _ string) (*model.Tag, error) {
			return nil, service.ErrNameTaken
		},
	}
	h := NewTagHandler(tags, testLogger())

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/recipe/tags",
		strings.NewReader(`{"name":"Dessert"}`)), "user_1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestTagHandler_List(t *testing.T) {
	testCases := []struct {
		name             string
		target           string
		wantAssignedOnly bool
	}{
		{"all tags", "/api/v1/recipe/tags", false},
		{"assigned only numeric", "/api/v1/recipe/tags?assigned_only=1", true},
		{"assigned only boolean", "/api/v1/recipe/tags?assigned_only=true", true},
		{"assigned only off", "/api/v1/recipe/tags?assigned_only=0", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotAssignedOnly bool
			tags := &mockTags{
				listFn: func(_ context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
					gotAssignedOnly = assignedOnly
					return []*model.Tag{
						{ID: "tag_1", Name: "Vegan", UserID: userID},
						{ID: "tag_2", Name: "Dessert", UserID: userID},
					}, nil
				},
			}
			h := NewTagHandler(tags, testLogger())

			req := authedRequest(httptest.NewRequest(http.MethodGet, tc.target, nil), "user_1")
			rec := httptest.NewRecorder()
			h.List(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if gotAssignedOnly != tc.wantAssignedOnly {
				t.Errorf("assignedOnly = %v, want %v", gotAssignedOnly, tc.wantAssignedOnly)
			}

			var resp dto.TagListResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Total != 2 {
				t.Errorf("total = %d, want 2", resp.Total)
			}
		})
	}
}

func TestTagHandler_Update_ForeignTag(t *testing.T) {
	tags := &mockTags{
		updateFn: func(_ context.Context, _, _, _ string) (*model.Tag, error) {
			return nil, service.ErrTagNotFound
		},
	}
	h := NewTagHandler(tags, testLogger())

	req := authedRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/recipe/tags/tag_other",
		strings.NewReader(`{"name":"Mine now"}`)), "user_1")
	req = withURLParam(req, "id", "tag_other")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTagHandler_Delete(t *testing.T) {
	var gotID string
	tags := &mockTags{
		deleteFn: func(_ context.Context, _, id string) error {
			gotID = id
			return nil
		},
	}
	h := NewTagHandler(tags, testLogger())

	req := authedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/recipe/tags/tag_1", nil), "user_1")
	req = withURLParam(req, "id", "tag_1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if gotID != "tag_1" {
		t.Errorf("deleted id = %q, want tag_1", gotID)
	}
}
