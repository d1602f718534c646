package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// TokenStore resolves auth tokens and their owners from storage.
// Satisfied by *repository.Repository.
type TokenStore interface {
	GetTokensByPrefix(ctx context.Context, prefix string) ([]*model.AuthToken, error)
	UpdateTokenLastUsed(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthContextCache caches resolved auth contexts between requests.
// Satisfied by *cache.Cache.
type AuthContextCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, authCtx *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Store   TokenStore
	Cache   AuthContextCache
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates API requests.
// It extracts the auth token from the Authorization header, verifies it
// against stored token hashes, and injects the auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				recorder.ObserveAuthDuration(elapsed)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			token := extractToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			parsed, err := auth.ParseToken(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_format"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(token)
			var authCtx *model.AuthContext
			if cfg.Cache != nil {
				authCtx, _ = cfg.Cache.GetAuthContext(r.Context(), cacheKey)
			}

			if authCtx != nil {
				recorder.IncAuthCacheHit()
				authCtx.CacheKey = cacheKey

				cfg.Logger.Info("authentication successful",
					slog.String("token_id", authCtx.TokenID),
					slog.String("token_prefix", authCtx.TokenPrefix),
					slog.String("user_id", authCtx.UserID),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Bool("cache_hit", true),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				ctx := auth.ContextWithAuth(r.Context(), authCtx)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			recorder.IncAuthCacheMiss()

			// Cache miss - lookup usable tokens by prefix
			candidates, err := cfg.Store.GetTokensByPrefix(r.Context(), parsed.Prefix)
			if err != nil {
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Verify against each candidate (handles prefix collisions)
			var matched *model.AuthToken
			for _, t := range candidates {
				match, err := auth.VerifyPassword(token, t.TokenHash)
				if err != nil {
					continue
				}
				if match {
					matched = t
					break
				}
			}

			if matched == nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			user, err := cfg.Store.GetUserByID(r.Context(), matched.UserID)
			if err != nil || !user.IsActive {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "inactive_user"),
					slog.String("user_id", matched.UserID),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			authCtx = &model.AuthContext{
				TokenID:     matched.ID,
				TokenPrefix: matched.TokenPrefix,
				UserID:      user.ID,
				IsStaff:     user.IsStaff,
				IsSuperuser: user.IsSuperuser,
				CacheKey:    cacheKey,
			}

			if cfg.Cache != nil {
				_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)
			}

			// Update last_used_at asynchronously
			tokenID := matched.ID
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = cfg.Store.UpdateTokenLastUsed(ctx, tokenID)
			}()

			cfg.Logger.Info("authentication successful",
				slog.String("token_id", authCtx.TokenID),
				slog.String("token_prefix", authCtx.TokenPrefix),
				slog.String("user_id", authCtx.UserID),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Bool("cache_hit", false),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the auth token from the request.
// Supports both "Authorization: Bearer <token>" and "X-Auth-Token: <token>" headers.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	return r.Header.Get("X-Auth-Token")
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing auth token"}}`))
}
