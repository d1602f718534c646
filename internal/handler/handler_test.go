package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest attaches an auth context for user userID to the request.
func authedRequest(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.ContextWithAuth(r.Context(), &model.AuthContext{
		TokenID:  "tok_test",
		UserID:   userID,
		CacheKey: "cachekey_test",
	}))
}

func TestHandler_Hello(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Hello(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["message"] != "Recipe Box API" {
		t.Errorf("message = %q, want Recipe Box API", body["message"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWriteServiceError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty name", service.ErrNameRequired, http.StatusBadRequest},
		{"bad email", service.ErrInvalidEmail, http.StatusBadRequest},
		{"unknown association", service.ErrUnknownAssociation, http.StatusBadRequest},
		{"duplicate name", service.ErrNameTaken, http.StatusConflict},
		{"duplicate email", service.ErrEmailTaken, http.StatusConflict},
		{"missing tag", service.ErrTagNotFound, http.StatusNotFound},
		{"missing recipe", service.ErrRecipeNotFound, http.StatusNotFound},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive account", service.ErrUserInactive, http.StatusUnauthorized},
		{"unknown error", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestWriteServiceError_CredentialsBodyIsUniform(t *testing.T) {
	// Unknown email and wrong password must produce identical bodies
	recA := httptest.NewRecorder()
	writeServiceError(recA, service.ErrInvalidCredentials)
	recB := httptest.NewRecorder()
	writeServiceError(recB, service.ErrUserInactive)

	if recA.Body.String() != recB.Body.String() {
		t.Errorf("credential failure bodies differ: %q vs %q", recA.Body.String(), recB.Body.String())
	}
}
