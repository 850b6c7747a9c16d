// Package models contains the request and response bodies of the dashboard API.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	APIKey      string `json:"apiKey"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Environment string `json:"environment"`
}

// LoginResponse is returned after a successful vendor login.
type LoginResponse struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	Environment string `json:"environment"`
}

// VerifyResponse is returned by GET /api/auth/verify.
type VerifyResponse struct {
	Valid   bool         `json:"valid"`
	Decoded TokenPayload `json:"decoded"`
}

// TokenPayload is the decoded content of a local access token.
type TokenPayload struct {
	Environment string `json:"environment"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
	ID          string `json:"jti,omitempty"`
}

// SuccessResponse acknowledges an action with no other result.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// OpenPositionRequest is the body of POST /api/portfolio/positions.
type OpenPositionRequest struct {
	Epic          string           `json:"epic"`
	Direction     string           `json:"direction"`
	Size          *decimal.Decimal `json:"size"`
	OrderType     string           `json:"orderType,omitempty"`
	StopDistance  *decimal.Decimal `json:"stopDistance,omitempty"`
	LimitDistance *decimal.Decimal `json:"limitDistance,omitempty"`
}

// ClosePositionRequest is the body of DELETE /api/portfolio/positions/{dealId}.
// Direction is the direction the position was opened with.
type ClosePositionRequest struct {
	Direction string           `json:"direction"`
	Size      *decimal.Decimal `json:"size"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Epic      string           `json:"epic"`
	Direction string           `json:"direction"`
	Size      *decimal.Decimal `json:"size"`
	Level     *decimal.Decimal `json:"level"`
	Type      string           `json:"type"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse reports an ok status at now.
func NewHealthResponse(now time.Time) HealthResponse {
	return HealthResponse{Status: "ok", Timestamp: now.UTC().Format(time.RFC3339)}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	// Field is set when a validation error concerns one request field.
	Field string `json:"field,omitempty"`
}
