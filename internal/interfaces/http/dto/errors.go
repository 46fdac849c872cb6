package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Budget engine error codes
const (
	ErrCodeInvalidAmount       = "ERR_INVALID_AMOUNT"
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeDuplicateAllocation = "ERR_DUPLICATE_ALLOCATION"
	ErrCodeBudgetExpired       = "ERR_BUDGET_EXPIRED"
	ErrCodeMonthlyCapExceeded  = "ERR_MONTHLY_CAP_EXCEEDED"
	ErrCodeContention          = "ERR_CONTENTION"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidAmount:       http.StatusBadRequest,
	ErrCodeInsufficientBalance: http.StatusUnprocessableEntity,
	ErrCodeDuplicateAllocation: http.StatusConflict,
	ErrCodeBudgetExpired:       http.StatusUnprocessableEntity,
	ErrCodeMonthlyCapExceeded:  http.StatusUnprocessableEntity,
	ErrCodeContention:          http.StatusServiceUnavailable,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes fall back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping converts domain error codes to API error
// codes. Cross-tenant and isolation violations deliberately collapse
// into codes that do not reveal whether the foreign entity exists.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeBadRequest,
	"INVALID_STATE":          ErrCodeInvalidState,
	"UNAUTHORIZED":           ErrCodeUnauthorized,
	"FORBIDDEN":              ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"INVALID_AMOUNT":         ErrCodeInvalidAmount,
	"INSUFFICIENT_BALANCE":   ErrCodeInsufficientBalance,
	"DUPLICATE_ALLOCATION":   ErrCodeDuplicateAllocation,
	"BUDGET_EXPIRED":         ErrCodeBudgetExpired,
	"MONTHLY_CAP_EXCEEDED":   ErrCodeMonthlyCapExceeded,
	"CONTENTION":             ErrCodeContention,
	"CURRENCY_MISMATCH":      ErrCodeBadRequest,
	"CROSS_TENANT_VIOLATION": ErrCodeNotFound,
	"ISOLATION_BYPASS":       ErrCodeInternal,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"BAD_REQUEST":            ErrCodeBadRequest,
	"INTERNAL_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
