package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/HerbHall/chatgate/internal/server"
	"go.uber.org/zap"
)

// sessionKey is a context key for the validated admin session.
type sessionKey struct{}

// SessionFromContext returns the admin session from the request context.
// Returns nil if the request did not pass through Middleware.
func SessionFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(sessionKey{}).(*Claims); ok {
		return c
	}
	return nil
}

// Middleware rejects requests without a valid admin_session cookie.
func Middleware(sessions *SessionService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				server.Unauthorized(w, "admin session required")
				return
			}

			claims, err := sessions.Validate(cookie.Value)
			if errors.Is(err, ErrForbidden) {
				logger.Warn("admin session for unexpected account",
					zap.String("email", claims.Email),
					zap.String("request_id", server.RequestID(r.Context())),
				)
				server.WriteError(w, http.StatusForbidden, "not an admin")
				return
			}
			if err != nil {
				logger.Debug("admin session rejected", zap.Error(err))
				server.Unauthorized(w, "invalid or expired admin session")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
