package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/service"
)

// AccountManager defines the account operations the user handler needs.
// Satisfied by *service.UserService.
type AccountManager interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, *service.IssuedToken, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, input service.UpdateProfileInput) (*model.User, error)
	Logout(ctx context.Context, tokenID, cacheKey string) error
}

// UserHandler serves account endpoints.
type UserHandler struct {
	accounts AccountManager
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts AccountManager, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// Register handles POST /api/v1/users
// Creates an account. Open to unauthenticated callers.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("user registered",
		slog.String("user_id", user.ID),
	)

	writeJSON(w, http.StatusCreated, dto.NewUserResponse(user))
}

// Token handles POST /api/v1/users/token
// Exchanges email and password for an auth token.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	user, issued, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("token issued",
		slog.String("user_id", user.ID),
	)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	})
}

// Me handles GET /api/v1/users/me
// Returns the authenticated caller's own account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	user, err := h.accounts.GetUser(r.Context(), authCtx.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// UpdateMe handles PATCH /api/v1/users/me
// Updates the caller's email and/or password.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.UpdateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), authCtx.UserID, service.UpdateProfileInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("user updated",
		slog.String("user_id", user.ID),
	)

	writeJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// Logout handles POST /api/v1/users/me/logout
// Revokes the presenting token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	if err := h.accounts.Logout(r.Context(), authCtx.TokenID, authCtx.CacheKey); err != nil {
		h.logger.Error("logout failed",
			slog.String("error", err.Error()),
			slog.String("user_id", authCtx.UserID),
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	h.logger.Info("token revoked",
		slog.String("user_id", authCtx.UserID),
		slog.String("token_id", authCtx.TokenID),
	)

	w.WriteHeader(http.StatusNoContent)
}
