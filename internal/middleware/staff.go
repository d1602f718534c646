package middleware

import (
	"log/slog"
	"net/http"

	"github.com/recipebox/recipebox/internal/auth"
)

// RequireStaff returns middleware that rejects non-staff callers.
// Must be applied after Auth middleware.
func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	return requireFlag(logger, "staff", func(isStaff, isSuperuser bool) bool {
		return isStaff || isSuperuser
	})
}

// RequireSuperuser returns middleware that rejects non-superuser callers.
// Must be applied after Auth middleware.
func RequireSuperuser(logger *slog.Logger) func(http.Handler) http.Handler {
	return requireFlag(logger, "superuser", func(_, isSuperuser bool) bool {
		return isSuperuser
	})
}

func requireFlag(logger *slog.Logger, role string, allowed func(isStaff, isSuperuser bool) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w)
				return
			}

			if !allowed(authCtx.IsStaff, authCtx.IsSuperuser) {
				logger.Warn("permission denied",
					slog.String("required_role", role),
					slog.String("user_id", authCtx.UserID),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"Insufficient permissions"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
