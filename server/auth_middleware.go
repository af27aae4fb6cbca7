package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/acmeid/accounts-api/token"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID.
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyClaims stores the verified token claims.
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth validates a Bearer access token and injects the verified
// claims into the request context. Identity always comes from the codec's
// typed claims; handlers never parse the token themselves.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := s.codec.Verify(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, token.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserIDFromContext returns the authenticated user id set by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok && id != ""
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
