package client

import (
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"strconv"
	"time"
)

// Kind classifies an API failure. Callers branch on it to decide whether to
// surface, retry later, or re-authenticate.
type Kind string

const (
	// KindAuthentication marks a rejected or missing credential (401).
	KindAuthentication Kind = "authentication"
	// KindValidation marks a request the server considers malformed (400).
	KindValidation Kind = "validation"
	// KindNotFound marks an absent resource (404).
	KindNotFound Kind = "not_found"
	// KindRateLimit marks a throttled call (429); RetryAfter carries the
	// server-suggested wait.
	KindRateLimit Kind = "rate_limit"
	// KindServer marks an upstream 5xx the pipeline treats as transient.
	KindServer Kind = "server"
	// KindSDK marks everything else: network failures, malformed local
	// requests, and unclassified status codes.
	KindSDK Kind = "sdk"
)

// DefaultRetryAfter is used when a 429 response carries no parsable
// Retry-After header.
const DefaultRetryAfter = 60 * time.Second

// Error is the single failure type raised by the pipeline. Status is zero
// when no response was received; RetryAfter is only set for KindRateLimit.
type Error struct {
	Kind       Kind
	Message    string
	Code       string
	Status     int
	RetryAfter time.Duration
	Body       []byte
	wrapped    error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0:
		return fmt.Sprintf("%s error: %s (status: %d)", e.Kind, e.Message, e.Status)
	case e.wrapped != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.wrapped)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// NewNetworkError creates a KindSDK error for a call that received no
// response.
func NewNetworkError(message string, wrapped error) *Error {
	return &Error{
		Kind:    KindSDK,
		Message: "network failure: " + message,
		wrapped: wrapped,
	}
}

// NewRequestError creates a KindSDK error for a request that could not be
// constructed locally; no connection attempt was made.
func NewRequestError(message string, wrapped error) *Error {
	return &Error{
		Kind:    KindSDK,
		Message: "request construction failed: " + message,
		wrapped: wrapped,
	}
}

// IsKind reports whether err is a pipeline Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// errorEnvelope is the shape the API wraps failures in. Both the nested and
// flat forms occur in the wild.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// classifyStatus maps a non-2xx response onto the error taxonomy.
func classifyStatus(status int, headers nethttp.Header, body []byte) *Error {
	message, code := parseErrorBody(body)

	e := &Error{
		Message: message,
		Code:    code,
		Status:  status,
		Body:    body,
	}

	switch status {
	case nethttp.StatusBadRequest:
		e.Kind = KindValidation
	case nethttp.StatusUnauthorized:
		e.Kind = KindAuthentication
	case nethttp.StatusNotFound:
		e.Kind = KindNotFound
	case nethttp.StatusTooManyRequests:
		e.Kind = KindRateLimit
		e.RetryAfter = parseRetryAfter(headers)
	case nethttp.StatusInternalServerError,
		nethttp.StatusBadGateway,
		nethttp.StatusServiceUnavailable,
		nethttp.StatusGatewayTimeout:
		e.Kind = KindServer
	default:
		e.Kind = KindSDK
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

// parseErrorBody extracts a message and machine code from an API error
// payload, best effort.
func parseErrorBody(body []byte) (message, code string) {
	if len(body) == 0 {
		return "", ""
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", ""
	}
	if env.Error.Message != "" || env.Error.Code != "" {
		return env.Error.Message, env.Error.Code
	}
	return env.Message, env.Code
}

// parseRetryAfter reads the Retry-After header as integer seconds, falling
// back to DefaultRetryAfter when absent or unparsable.
func parseRetryAfter(headers nethttp.Header) time.Duration {
	raw := headers.Get("Retry-After")
	if raw == "" {
		return DefaultRetryAfter
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return DefaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// isRetryableStatus reports whether a status code is worth another attempt:
// 429 plus the transient 5xx family. Other client errors are permanent and
// surface immediately.
func isRetryableStatus(status int) bool {
	switch status {
	case nethttp.StatusTooManyRequests,
		nethttp.StatusInternalServerError,
		nethttp.StatusBadGateway,
		nethttp.StatusServiceUnavailable,
		nethttp.StatusGatewayTimeout:
		return true
	}
	return false
}
