package dto

import "net/http"

// Error codes carried in the response envelope. Domain errors keep their
// shared.DomainError code on the wire.
const (
	ErrCodeInvalidInput             = "INVALID_INPUT"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeAlreadyExists            = "ALREADY_EXISTS"
	ErrCodeConflict                 = "CONFLICT"
	ErrCodeConcurrencyConflict      = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState             = "INVALID_STATE"
	ErrCodeAllocationExceedsBalance = "ALLOCATION_EXCEEDS_BALANCE"
)

// Transport error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTenantRequired  = "TENANT_REQUIRED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInvalidInput:             http.StatusBadRequest,
	ErrCodeNotFound:                 http.StatusNotFound,
	ErrCodeAlreadyExists:            http.StatusConflict,
	ErrCodeConflict:                 http.StatusConflict,
	ErrCodeConcurrencyConflict:      http.StatusConflict,
	ErrCodeInvalidState:             http.StatusUnprocessableEntity,
	ErrCodeAllocationExceedsBalance: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTenantRequired:  http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode returns code when it is part of the public error
// vocabulary and INTERNAL_ERROR otherwise
func NormalizeErrorCode(code string) string {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
