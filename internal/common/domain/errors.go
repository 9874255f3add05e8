package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a DomainError for the HTTP layer.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInvalidState ErrorCode = "INVALID_STATE"
	CodeBusinessRule ErrorCode = "BUSINESS_RULE"
)

// FieldIssue describes a single invalid input field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DomainError is an expected, user-facing failure. Anything that is not a
// DomainError is treated as an internal error by the response layer.
type DomainError struct {
	Code    ErrorCode
	Message string
	Details []FieldIssue
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError returns a VALIDATION_ERROR with the given message.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewFieldValidationError returns a VALIDATION_ERROR carrying per-field issues.
func NewFieldValidationError(message string, issues []FieldIssue) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message, Details: issues}
}

// NewUnauthorizedError returns an UNAUTHORIZED error.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Code: CodeUnauthorized, Message: message}
}

// NewForbiddenError returns a FORBIDDEN error.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

// NewNotFoundError returns a NOT_FOUND error for the given entity and key.
func NewNotFoundError(entity, key string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("Không tìm thấy %s (%s)", entity, key),
	}
}

// NewConflictError returns a CONFLICT error.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// NewInvalidStateError reports a rejected status transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("Không thể chuyển trạng thái từ %s sang %s", from, to),
	}
}

// NewBusinessRuleError returns a BUSINESS_RULE error.
func NewBusinessRuleError(message string) *DomainError {
	return &DomainError{Code: CodeBusinessRule, Message: message}
}

// AsDomainError unwraps err into a DomainError if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND DomainError.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }
