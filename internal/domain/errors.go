package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error kinds form the complete failure taxonomy of the core. Every failure
// leaving a service boundary wraps exactly one of these sentinels.
var (
	// ErrInvalidImage means the uploaded bytes do not decode to a usable
	// raster image. Recoverable by resubmission.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidInput covers malformed request fields outside the image
	// payload itself.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoUsableArtifact means the model directory contains no supported
	// artifact format. A deployment error, fatal to serving.
	ErrNoUsableArtifact = errors.New("no usable model artifact")

	// ErrModelUnavailable means no adapter is loaded or the loaded adapter
	// is flagged degenerate.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInferenceFailure covers any error raised during an adapter call.
	// Scoped to the failing request.
	ErrInferenceFailure = errors.New("inference failure")

	// ErrPersistenceFailure covers storage-layer errors. Triggers
	// compensating cleanup of partial writes.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrTenancyViolation marks an internal invariant breach: a read or
	// write that crossed doctor boundaries. Never reachable through normal
	// code paths.
	ErrTenancyViolation = errors.New("tenancy violation")

	// ErrNotFound is returned for doctor-scoped lookups with no match.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired is a distinct identity failure so clients can
	// re-authenticate instead of retrying.
	ErrTokenExpired = errors.New("token expired")

	// ErrDuplicateEmail is returned when a signup collides with an
	// existing account.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Stable error codes exposed in API payloads.
const (
	CodeInvalidImage       = "INVALID_IMAGE"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeModelUnavailable   = "MODEL_UNAVAILABLE"
	CodeInferenceFailure   = "INFERENCE_FAILURE"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// APIError is the structured error payload returned to callers. Internal
// detail stays in the logs, never in the payload.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError builds a payload with the current UTC timestamp.
func NewAPIError(code, message, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ErrorCode maps an error kind to its stable payload code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidImage):
		return CodeInvalidImage
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrModelUnavailable), errors.Is(err, ErrNoUsableArtifact):
		return CodeModelUnavailable
	case errors.Is(err, ErrInferenceFailure):
		return CodeInferenceFailure
	case errors.Is(err, ErrPersistenceFailure):
		return CodePersistenceFailure
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return CodeDuplicateEmail
	default:
		return CodeInternal
	}
}

// HTTPStatus maps an error kind to the HTTP boundary. 503 is reserved for
// "model not loaded or degenerate".
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, ErrModelUnavailable), errors.Is(err, ErrNoUsableArtifact):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInferenceFailure), errors.Is(err, ErrPersistenceFailure):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
