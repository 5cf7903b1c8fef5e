package model

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable code for a pipeline failure. The set is
// closed: the presentation layer maps each code to a user-facing response,
// so new codes are an API change, not just a new message.
type ErrorCode string

const (
	// Quality gate failures.
	CodeDPITooLow      ErrorCode = "DPI_TOO_LOW"
	CodeImageTooSmall  ErrorCode = "IMAGE_TOO_SMALL"
	CodeWrongColorMode ErrorCode = "WRONG_COLOR_MODE"

	// Provider failures, raised by port adapters.
	CodeModelUnavailable    ErrorCode = "MODEL_UNAVAILABLE"
	CodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"
	CodeProviderRateLimited ErrorCode = "PROVIDER_RATE_LIMITED"

	// Policy violations on the request itself.
	CodePageLimitExceeded ErrorCode = "PAGE_LIMIT_EXCEEDED"
	CodeResolutionTooHigh ErrorCode = "RESOLUTION_TOO_HIGH"

	// Malformed requests and illegal lifecycle transitions.
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// Infrastructure failures (filesystem, database) behind the ports.
	CodeStorage ErrorCode = "STORAGE_ERROR"
)

// DomainError is a structured, serializable failure. It carries a closed
// code, a human message, and an actionable hint for the operator, so it can
// be logged or returned over the API without losing information. It is a
// value, not just a signal — callers inspect the code, not the text.
type DomainError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// NewDomainError creates a DomainError with the given code, message, and hint.
func NewDomainError(code ErrorCode, message, hint string) *DomainError {
	return &DomainError{Code: code, Message: message, Hint: hint}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// With attaches a context key/value and returns the error for chaining.
func (e *DomainError) With(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ValidationError builds the distinct validation-error kind used for
// malformed requests and illegal lifecycle transitions. The message must
// name the offending field or status.
func ValidationError(message, hint string) *DomainError {
	return NewDomainError(CodeValidation, message, hint)
}

// AsDomainError unwraps err into a *DomainError if one is in the chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err is (or wraps) a DomainError with the code.
func HasCode(err error, code ErrorCode) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}

// IsValidation reports whether err is the validation-error kind.
func IsValidation(err error) bool {
	return HasCode(err, CodeValidation)
}
