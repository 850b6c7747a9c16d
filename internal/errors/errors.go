// Package errors provides typed errors for the trading proxy.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common error cases.
var (
	// ErrValidation indicates missing or malformed caller input.
	ErrValidation = errors.New("validation error")

	// ErrAuthentication indicates the vendor rejected the supplied credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrUnauthorized indicates the caller did not present a bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken indicates a local access token with a bad signature or past its expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotConfigured indicates a vendor call was attempted before login.
	ErrNotConfigured = errors.New("IG not configured")

	// ErrVendor indicates the vendor answered with a non-success status.
	ErrVendor = errors.New("vendor request failed")

	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimit indicates too many requests.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrInternal indicates an internal server error.
	ErrInternal = errors.New("internal error")
)

// AppError is a structured application error.
type AppError struct {
	// Type is the error type (sentinel error).
	Type error
	// Message is the user-facing error message.
	Message string
	// Field names the request field a validation error is about, if any.
	Field string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error type.
func (e *AppError) Unwrap() error {
	return e.Type
}

// Is checks if this error matches the target.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Type, target)
}

// New creates a new AppError.
func New(errType error, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Validation creates a validation error.
func Validation(message string) *AppError {
	return &AppError{
		Type:    ErrValidation,
		Message: message,
	}
}

// ValidationField creates a validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Type:    ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Authentication creates an error for a vendor credential rejection.
func Authentication(message string) *AppError {
	return &AppError{
		Type:    ErrAuthentication,
		Message: message,
	}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Type:    ErrUnauthorized,
		Message: message,
	}
}

// InvalidToken creates an invalid token error.
func InvalidToken(cause error) *AppError {
	return &AppError{
		Type:    ErrInvalidToken,
		Message: "Invalid token",
		Cause:   cause,
	}
}

// NotConfigured creates the error returned before vendor credentials are set.
func NotConfigured() *AppError {
	return &AppError{
		Type:    ErrNotConfigured,
		Message: "IG not configured",
	}
}

// Internal creates an internal error.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrInternal,
		Message: message,
		Cause:   cause,
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthentication),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrNotConfigured):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message for an error.
// AppError messages are used as-is; other errors fall back to Error().
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Field returns the request field err is about, or "".
func Field(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
