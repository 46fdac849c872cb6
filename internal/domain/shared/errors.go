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

// Is makes sentinel DomainErrors comparable with errors.Is even after
// they have been recreated with a more specific message via WithMessage.
func (e *DomainError) Is(target error) bool {
	var dErr *DomainError
	if !errors.As(target, &dErr) {
		return false
	}
	return e.Code == dErr.Code
}

// WithMessage returns a copy of the error carrying the same code but a
// more specific message. errors.Is against the sentinel still matches.
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Budget engine error taxonomy. Contention is the only retryable
// member; everything else is terminal for the caller.
var (
	ErrInvalidAmount        = NewDomainError("INVALID_AMOUNT", "Amount must be a positive value")
	ErrInsufficientBalance  = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
	ErrContention           = NewDomainError("CONTENTION", "Could not acquire lock on a contended balance row")
	ErrCrossTenant          = NewDomainError("CROSS_TENANT_VIOLATION", "Operation references entities from different tenants")
	ErrIsolationBypass      = NewDomainError("ISOLATION_BYPASS", "Unscoped query against a tenant-scoped entity was blocked")
	ErrDuplicateAllocation  = NewDomainError("DUPLICATE_ALLOCATION", "An allocation with this idempotency key was already applied")
	ErrBudgetExpired        = NewDomainError("BUDGET_EXPIRED", "Budget has passed its expiry date")
	ErrMonthlyCapExceeded   = NewDomainError("MONTHLY_CAP_EXCEEDED", "Distribution would exceed the department's monthly cap")
	ErrCurrencyMismatch     = NewDomainError("CURRENCY_MISMATCH", "Points currencies do not match")
)

// IsRetryable reports whether the caller may retry the operation.
// Only lock contention qualifies; precondition failures and security
// violations are terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
