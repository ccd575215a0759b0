package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewConfigurationError marks invalid startup configuration. The service
// refuses to start on these rather than renormalizing values.
func NewConfigurationError(message string, details map[string]any) error {
	return NewDomainError("CONFIGURATION", message, http.StatusInternalServerError, details)
}

// NewProviderUnavailable marks a failed or timed-out external provider call.
func NewProviderUnavailable(provider string, err error) error {
	return &DomainError{
		Code:       "PROVIDER_UNAVAILABLE",
		Message:    fmt.Sprintf("%s provider unavailable", provider),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewDataIntegrity rejects writes whose evidence is inconsistent, such as
// feedback outside 1-5 or a negative usage count.
func NewDataIntegrity(message string, details map[string]any) error {
	return NewDomainError("DATA_INTEGRITY", message, http.StatusUnprocessableEntity, details)
}

// NewConcurrencyConflict surfaces a lost update or a double-promotion race
// that survived the retry.
func NewConcurrencyConflict(message string, details map[string]any) error {
	return NewDomainError("CONCURRENCY_CONFLICT", message, http.StatusConflict, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if notFound, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return notFound
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
