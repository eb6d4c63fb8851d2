// internal/infrastructure/backend/errors.go
package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultErrorMessage is used when the backend gives no usable message
const DefaultErrorMessage = "Request failed"

// APIError carries the HTTP status and message of a failed backend call.
// StatusCode is 0 for transport failures.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the call never got an HTTP answer
func (e *APIError) IsTransport() bool {
	return e.StatusCode == 0
}

// StatusOf returns the backend status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the credential
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether the backend answered 404
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsTransport reports whether err is a network-level failure
func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsTransport()
}

// MessageOf returns the backend's message for err, or fallback
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 && apiErr.Message != "" && apiErr.Message != DefaultErrorMessage {
		return apiErr.Message
	}
	return fallback
}
