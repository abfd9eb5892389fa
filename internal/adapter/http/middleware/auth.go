package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/lnstable/internal/domain"
	"github.com/iho/lnstable/internal/infrastructure/auth"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UsernameContextKey is the context key for the authenticated username
	UsernameContextKey ContextKey = "username"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the token's
// username in the request context.
func Auth(tokens TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	observe := func(outcome string) {
		if m != nil {
			m.AuthAttempts.WithLabelValues(outcome).Inc()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				observe("missing")
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				observe("malformed")
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				if errors.Is(err, domain.ErrExpiredToken) {
					observe("expired")
					writeError(w, http.StatusUnauthorized, "token has expired")
					return
				}
				observe("invalid")
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			observe("ok")
			next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), claims.Username)))
		})
	}
}

// WithUsername returns a copy of ctx carrying username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameContextKey, username)
}

// UsernameFromContext extracts the authenticated username from context
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameContextKey).(string)
	return username, ok && username != ""
}
