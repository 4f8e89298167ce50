package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the pipeline error taxonomy.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("resource not found")
	ErrConfiguration   = errors.New("missing configuration")
	ErrExternalService = errors.New("external service error")
	ErrUserRejected    = errors.New("rejected by backend")
	ErrInternal        = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates a 400 error for malformed or missing request input.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// NotFound creates a 404 error. In batch flows this is swallowed per product
// rather than surfaced to the caller.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Configuration creates a 500 error naming the missing setting.
func Configuration(setting string) *AppError {
	return &AppError{
		Code:    "CONFIGURATION_ERROR",
		Message: fmt.Sprintf("required setting %s is not configured", setting),
		Status:  http.StatusInternalServerError,
		Err:     ErrConfiguration,
	}
}

// ExternalService creates a 502 error for a failure inside a downstream
// service (commerce API, image compositing backend).
func ExternalService(service string, err error) *AppError {
	return &AppError{
		Code:    "EXTERNAL_SERVICE_ERROR",
		Message: fmt.Sprintf("%s request failed", service),
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrExternalService, err),
	}
}

// UserRejected creates a 422 error for a semantic rejection reported by the
// commerce backend (GraphQL userErrors).
func UserRejected(message string) *AppError {
	return &AppError{
		Code:    "USER_ERROR",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrUserRejected,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
