package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is matched by errors.Is for every 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError represents a failure to obtain an HTTP response at all:
// connection refused, DNS failure, TLS failure or a cancelled context. A
// response whose body breaks off is classified by its status instead.
type NetworkError struct {
	// Cause is the underlying transport error
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("server not responding: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// UnauthorizedError represents an HTTP 401 response. Callers typically
// refresh the credential and try again.
type UnauthorizedError struct {
	// Message is the error detail from the response body, if any
	Message string
}

// Error implements the error interface.
func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized (status 401)"
	}
	return fmt.Sprintf("unauthorized (status 401): %s", e.Message)
}

// Is reports whether target is ErrUnauthorized.
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// APIError represents any non-200, non-401 response.
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int

	// Message is the API's error message, or the raw body when the body is
	// not an API error document
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// DecodeError represents a 200 response whose body did not match the
// expected shape.
type DecodeError struct {
	// Body is the raw response body that failed to decode
	Body []byte

	// Cause is the underlying decode error
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Outcome labels used in exchanges, logs and metrics.
const (
	OutcomeOK           = "ok"
	OutcomeNetwork      = "network"
	OutcomeUnauthorized = "unauthorized"
	OutcomeAPIError     = "api_error"
	OutcomeDecode       = "decode"
	OutcomeError        = "error"
)

// Outcome classifies err into one of the outcome labels. A nil error is
// OutcomeOK; errors outside the transport taxonomy are OutcomeError.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}

	var netErr *NetworkError
	var apiErr *APIError
	var decErr *DecodeError
	switch {
	case errors.As(err, &netErr):
		return OutcomeNetwork
	case errors.Is(err, ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.As(err, &decErr):
		return OutcomeDecode
	default:
		return OutcomeError
	}
}

// errorMessage extracts error.message from an API error document, falling
// back to the trimmed body.
func errorMessage(body []byte) string {
	var doc struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &doc); err == nil && doc.Error != nil && doc.Error.Message != "" {
		return doc.Error.Message
	}
	return strings.TrimSpace(string(body))
}
