// Package middleware provides HTTP middleware for the trading proxy.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tradebot/internal/auth"
	apperrors "tradebot/internal/errors"
	"tradebot/internal/models"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ClaimsContextKey is the context key for verified token claims.
const ClaimsContextKey ContextKey = "claims"

// TokenVerifier verifies local access tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware enforces the local bearer token on API routes.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireToken rejects requests without a valid bearer token with 401 and
// stores the verified claims in the request context.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Authenticate(r)
		if err != nil {
			WriteError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate verifies the bearer token carried by r.
func (m *AuthMiddleware) Authenticate(r *http.Request) (*auth.Claims, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, apperrors.Unauthorized("No token provided")
	}
	return m.verifier.Verify(token)
}

// GetClaims returns the verified claims from the request context, or nil.
func GetClaims(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(ClaimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WriteError writes err as {"error": message} with its mapped status code.
// Validation errors about a single field also carry "field".
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperrors.HTTPStatus(err), models.ErrorResponse{
		Error: apperrors.Message(err),
		Field: apperrors.Field(err),
	})
}

// WriteJSON writes v as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
