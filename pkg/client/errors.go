package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	Timestamp  time.Time // zero when the server sent none
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// MessageOr returns the server-provided message carried by err, or fallback
// when err carries none.
func MessageOr(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && strings.TrimSpace(httpErr.Message) != "" {
		return httpErr.Message
	}
	return fallback
}

// errorEnvelope is the body of every API error: {status, message, timestamp}.
type errorEnvelope struct {
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
}

func readError(resp *http.Response) *HTTPError {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var env errorEnvelope
	if json.Unmarshal(respBody, &env) == nil && env.Message != "" {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
			Timestamp:  parseTimestamp(env.Timestamp),
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}

// parseTimestamp accepts epoch milliseconds or an RFC 3339 string.
func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var ms int64
	if json.Unmarshal(raw, &ms) == nil {
		return time.UnixMilli(ms)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
