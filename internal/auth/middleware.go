package auth

import (
	"net/http"
	"strings"

	"github.com/infowows/trg-crm-sub000/internal/platform/httpx"
	"github.com/infowows/trg-crm-sub000/internal/shared"
)

// BearerToken extracts the token from the Authorization header, or "" when
// absent.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

// Middleware verifies the bearer token and stores the actor in context.
// Requests without a valid token are rejected with 401.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			claims, err := tokens.Verify(r.Context(), raw)
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or revoked token")
				return
			}
			actor := &shared.Actor{
				ID:    claims.Subject,
				Name:  claims.Name,
				Email: claims.Email,
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
		})
	}
}
