package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/FarahBaraket-03/ChatTily/internal/core/services"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AuthMiddleware resolves the connection's identity from the bearer token.
// Connections without a resolvable identity are refused here, before any
// registry state exists for them.
func AuthMiddleware(tokenSvc *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}
			userID, err := tokenSvc.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter for websocket handshakes where browsers cannot set headers.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
