package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so that errors.Is matches
// a specialised message against one of the predefined errors below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by every bounded context
const (
	CodeNotFound                 = "NOT_FOUND"
	CodeAlreadyExists            = "ALREADY_EXISTS"
	CodeInvalidInput             = "INVALID_INPUT"
	CodeConcurrencyConflict      = "CONCURRENCY_CONFLICT"
	CodeInvalidState             = "INVALID_STATE"
	CodeAllocationExceedsBalance = "ALLOCATION_EXCEEDS_BALANCE"
)

// Common domain errors
var (
	ErrNotFound                 = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists            = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput             = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict      = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState             = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrAllocationExceedsBalance = NewDomainError(CodeAllocationExceedsBalance, "Allocation exceeds the remaining balance")
)

// InvalidInput returns an INVALID_INPUT error with a specific message
func InvalidInput(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// NotFound returns a NOT_FOUND error with a specific message
func NotFound(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// CodeOf extracts the domain error code from err, or "" when err is not a DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
