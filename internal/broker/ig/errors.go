// Package ig provides a session-managing client for the IG Markets REST API.
package ig

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "tradebot/internal/errors"
)

// VendorError is returned when IG answers a request with a non-success status.
type VendorError struct {
	Status int
	// Code is IG's errorCode when the body carried one, otherwise the status text.
	Code string
}

// Error implements the error interface.
func (e *VendorError) Error() string {
	return "API error: " + e.Code
}

// Unwrap lets errors.Is match apperrors.ErrVendor.
func (e *VendorError) Unwrap() error {
	return apperrors.ErrVendor
}

// newVendorError builds a VendorError from a failed response.
func newVendorError(status int, body []byte) *VendorError {
	return &VendorError{Status: status, Code: errorCode(status, body)}
}

// authenticationError wraps a rejected POST /session.
func authenticationError(status int, body []byte) error {
	return apperrors.Authentication(fmt.Sprintf("Session failed: %s", errorCode(status, body)))
}

// errorCode extracts IG's errorCode, falling back to the HTTP status text.
// Error bodies are not guaranteed to be JSON.
func errorCode(status int, body []byte) string {
	var parsed vendorErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.ErrorCode != "" {
		return parsed.ErrorCode
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}
