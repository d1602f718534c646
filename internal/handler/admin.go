package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/model"
)

// AdminUserSearcher defines the interface for staff user lookups.
type AdminUserSearcher interface {
	SearchUsers(ctx context.Context, emailQuery string, limit int) ([]*model.User, error)
}

// AdminTokenRevoker defines the interface for bulk token revocation.
type AdminTokenRevoker interface {
	RevokeAllTokens(ctx context.Context, userID string) (int64, error)
}

// AdminHandler provides staff-only endpoints for operations.
type AdminHandler struct {
	users   AdminUserSearcher
	revoker AdminTokenRevoker
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users AdminUserSearcher, revoker AdminTokenRevoker, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:   users,
		revoker: revoker,
		logger:  logger,
	}
}

// ListUsers handles GET /api/v1/admin/users?q={email}&limit={n}
// Lists accounts, optionally filtered by email substring.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.users.SearchUsers(ctx, query, limit)
	if err != nil {
		h.logger.Error("failed to search users",
			slog.String("error", err.Error()),
			slog.String("query", truncateForLog(query, 100)),
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to search users")
		return
	}

	response := dto.UserListResponse{
		Users: make([]dto.UserResponse, 0, len(users)),
		Total: len(users),
	}
	for _, user := range users {
		response.Users = append(response.Users, dto.NewUserResponse(user))
	}

	writeJSON(w, http.StatusOK, response)
}

// RevokeTokens handles POST /api/v1/admin/users/{id}/revoke-tokens
// Revokes every active token for the given user. Superuser only.
func (h *AdminHandler) RevokeTokens(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	revoked, err := h.revoker.RevokeAllTokens(ctx, userID)
	if err != nil {
		h.logger.Error("failed to revoke tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to revoke tokens")
		return
	}

	h.logger.Info("tokens revoked by admin",
		slog.String("user_id", userID),
		slog.Int64("revoked", revoked),
	)

	writeJSON(w, http.StatusOK, dto.RevokeTokensResponse{Revoked: revoked})
}

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
