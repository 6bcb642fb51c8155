package ts

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies an APIError into the client's error taxonomy.
type ErrorKind string

const (
	// ErrorKindAuth covers 401/403 responses and refresh failures.
	ErrorKindAuth ErrorKind = "auth"

	// ErrorKindRateLimit covers 429 responses.
	ErrorKindRateLimit ErrorKind = "rate_limit"

	// ErrorKindValidation covers 400 responses.
	ErrorKindValidation ErrorKind = "validation"

	// ErrorKindNotFound covers 404 responses.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindServer covers 5xx responses.
	ErrorKindServer ErrorKind = "server"

	// ErrorKindNetwork covers connect and transport failures.
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindTimeout covers deadline and timeout failures.
	ErrorKindTimeout ErrorKind = "timeout"
)

// APIError is the single error type surfaced for failed API calls. The
// transport layer is the only place that constructs these; service clients
// and callers never see raw transport errors.
type APIError struct {
	Kind       ErrorKind     `json:"kind"                  yaml:"kind"`
	StatusCode int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Message    string        `json:"message"               yaml:"message"`
	Path       string        `json:"path,omitempty"        yaml:"path,omitempty"`
	RequestID  string        `json:"request_id,omitempty"  yaml:"request_id,omitempty"`
	Snippet    string        `json:"snippet,omitempty"     yaml:"snippet,omitempty"`
	RetryAfter time.Duration `json:"-"                     yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error: %s (status: %d, path: %s)", e.Kind, e.Message, e.StatusCode, e.Path)
	}

	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Retryable reports whether the transport layer may retry this error class.
// Auth, validation, and not-found errors always propagate on first
// occurrence.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case ErrorKindRateLimit, ErrorKindServer, ErrorKindNetwork, ErrorKindTimeout:
		return true
	case ErrorKindAuth, ErrorKindValidation, ErrorKindNotFound:
		return false
	default:
		return false
	}
}

// StreamError is surfaced to stream consumers for connection or parse
// faults on the streaming path. Terminal marks faults after which the
// stream produces no further events; a stall is non-terminal.
type StreamError struct {
	Message  string `json:"message"  yaml:"message"`
	Terminal bool   `json:"terminal" yaml:"terminal"`
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return "stream error: " + e.Message
}

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrEnvironmentRequired  = errors.New("environment must be specified in config or ENVIRONMENT env var")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrClientIDRequired     = errors.New("client ID is required")
	ErrNoSymbols            = errors.New("at least one symbol is required")
	ErrNoAccountIDs         = errors.New("at least one account ID is required")
	ErrOrderIDRequired      = errors.New("order ID is required")
	ErrOrderRequestRequired = errors.New("order request is required")
	ErrSymbolRequired       = errors.New("symbol is required")
)

// errorKind extracts the kind from err, or "" when err is not an APIError.
func errorKind(err error) ErrorKind {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	return ""
}

// IsAuthError checks if the error is an authentication or authorization error.
func IsAuthError(err error) bool {
	return errorKind(err) == ErrorKindAuth
}

// IsRateLimitError checks if the error is a rate limit error.
func IsRateLimitError(err error) bool {
	return errorKind(err) == ErrorKindRateLimit
}

// IsValidationError checks if the error is a request validation error.
func IsValidationError(err error) bool {
	return errorKind(err) == ErrorKindValidation
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errorKind(err) == ErrorKindNotFound
}

// IsServerError checks if the error is a server-side (5xx) error.
func IsServerError(err error) bool {
	return errorKind(err) == ErrorKindServer
}

// IsNetworkError checks if the error is a transport failure.
func IsNetworkError(err error) bool {
	return errorKind(err) == ErrorKindNetwork
}

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool {
	return errorKind(err) == ErrorKindTimeout
}

// IsStreamError checks if the error came from the streaming path.
func IsStreamError(err error) bool {
	streamErr := &StreamError{}

	return errors.As(err, &streamErr)
}
