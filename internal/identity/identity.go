// Package identity is the boundary to the external identity provider.
// The core never interprets the signed-in user beyond its existence:
// the token is opaque and verified elsewhere.
package identity

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// UserFromContext returns the opaque user token, if any.
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(ctxKey{}).(string)
	return user
}

// Middleware extracts the bearer token into the context. When required
// is true, requests without a token are rejected; the token itself is
// never inspected.
func Middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			token = strings.TrimSpace(token)

			if required && token == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			if token != "" {
				r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, token))
			}
			next.ServeHTTP(w, r)
		})
	}
}
