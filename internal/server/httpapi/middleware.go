package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/mediaplanhq/campaignstore/internal/server/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// authMiddleware verifies the bearer capability token and attaches its
// claims to the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
			return
		}

		claims, err := auth.ParseToken(token, s.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// claimsFrom returns the claims attached by authMiddleware.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
