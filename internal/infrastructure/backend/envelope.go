// internal/infrastructure/backend/envelope.go
package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Unwrap normalizes the backend's two response shapes. A {success, data}
// envelope yields data; any other body is returned as is. An envelope with
// success=false becomes an *APIError.
func Unwrap(status int, body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return json.RawMessage(trimmed), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return json.RawMessage(trimmed), nil
	}

	if raw, ok := fields["success"]; ok {
		var success bool
		if err := json.Unmarshal(raw, &success); err == nil && !success {
			return nil, &APIError{StatusCode: status, Message: extractMessage(fields)}
		}
	}

	data, hasData := fields["data"]
	if !hasData {
		return json.RawMessage(trimmed), nil
	}

	_, hasSuccess := fields["success"]
	_, hasMessage := fields["message"]
	if hasSuccess || hasMessage || len(fields) == 1 {
		return data, nil
	}
	return json.RawMessage(trimmed), nil
}

// ErrorFromBody builds the APIError for a non-2xx response
func ErrorFromBody(status int, body []byte) *APIError {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &fields); err != nil {
		return &APIError{StatusCode: status, Message: DefaultErrorMessage}
	}
	return &APIError{StatusCode: status, Message: extractMessage(fields)}
}

// extractMessage looks for message, error or error.message
func extractMessage(fields map[string]json.RawMessage) string {
	for _, key := range []string{"message", "error", "msg"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}

		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return DefaultErrorMessage
}
