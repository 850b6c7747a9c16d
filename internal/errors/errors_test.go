package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("Missing epic, direction, or size"), http.StatusBadRequest},
		{"authentication", Authentication("Session failed: error.security.invalid-details"), http.StatusUnauthorized},
		{"unauthorized", Unauthorized(""), http.StatusUnauthorized},
		{"invalid token", InvalidToken(nil), http.StatusUnauthorized},
		{"not configured", NotConfigured(), http.StatusUnauthorized},
		{"vendor", New(ErrVendor, "API error: error.service.marketdata"), http.StatusInternalServerError},
		{"rate limit", New(ErrRateLimit, "Too many requests"), http.StatusTooManyRequests},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("opening position: %w", ErrValidation), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppError_IsMatchesType(t *testing.T) {
	err := ValidationField("epic", "epic is required")

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrAuthentication)
}

func TestField(t *testing.T) {
	assert.Equal(t, "epic", Field(fmt.Errorf("open: %w", ValidationField("epic", "Invalid epic"))))
	assert.Empty(t, Field(Validation("Missing required fields")))
	assert.Empty(t, Field(errors.New("boom")))
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := Internal("encoding response", errors.New("broken pipe"))

	assert.Equal(t, "encoding response: broken pipe", err.Error())
	assert.Equal(t, "encoding response", Message(err))
}

func TestMessage_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("login: %w", Authentication("Missing session tokens"))

	assert.Equal(t, "Missing session tokens", Message(err))
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
