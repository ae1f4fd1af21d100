package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context. The HTTP layer maps them to
// status codes; keep them stable.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeOverReceipt         = "OVER_RECEIPT"
	CodeInvalidState        = "INVALID_STATE"
	CodeForbidden           = "FORBIDDEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, shared.ErrNotFound) matches any NOT_FOUND error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error bound to a request field
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewNotFoundError creates a NOT_FOUND error naming the missing document
func NewNotFoundError(resource, key string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, key))
}

// Common domain errors
var (
	ErrValidation          = NewDomainError(CodeValidation, "Validation failed")
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrDuplicateKey        = ErrAlreadyExists
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrOverReceipt         = NewDomainError(CodeOverReceipt, "Receive quantity exceeds the remaining balance")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInternal            = NewDomainError(CodeInternal, "Internal error")
)

// ValidationErrors collects every field error found while validating a
// document so the caller can report them together.
type ValidationErrors []*DomainError

// Add appends a field error
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, NewValidationError(field, message))
}

// Err returns nil when no error was collected, otherwise a single
// VALIDATION_ERROR whose message is the first problem found.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationFailure{Errors: v}
}

// ValidationFailure wraps a set of field errors
type ValidationFailure struct {
	Errors ValidationErrors
}

// Error implements the error interface
func (f *ValidationFailure) Error() string {
	if len(f.Errors) == 1 {
		return f.Errors[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", f.Errors[0].Message, len(f.Errors)-1)
}

// Unwrap exposes the first field error so errors.As finds a DomainError
func (f *ValidationFailure) Unwrap() error {
	return f.Errors[0]
}
