package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jfcastellanos/prestamos-engine/pkg/response"
	"github.com/jfcastellanos/prestamos-engine/pkg/token"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates the bearer token and stores the resolved
// identity in the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Unauthorized(w, "Missing or malformed authorization header")
				return
			}

			claims, err := token.Validate(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin callers. Must run after AuthMiddleware.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if claims == nil || !claims.IsAdmin {
			response.Forbidden(w, "Administrator privileges required")
			return
		}
		next(w, r)
	}
}

func claimsFrom(r *http.Request) *token.Claims {
	claims, _ := r.Context().Value(claimsKey).(*token.Claims)
	return claims
}

// collectorScope resolves which collector a request acts as. Non-admin
// callers are always pinned to their own ID; admins may select another
// collector with the collector_id query parameter.
func collectorScope(r *http.Request) uuid.UUID {
	claims := claimsFrom(r)
	if claims == nil {
		return uuid.Nil
	}

	if claims.IsAdmin {
		if raw := r.URL.Query().Get("collector_id"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				return id
			}
		}
	}

	return claims.UserID
}
