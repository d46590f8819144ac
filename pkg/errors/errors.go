package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Business logic errors
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound   ErrorCode = "NOT_FOUND"

	// Technical errors
	ErrorCodeInternal  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeTimeout   ErrorCode = "TIMEOUT_ERROR"
	ErrorCodeRateLimit ErrorCode = "RATE_LIMIT_ERROR"

	// Request errors
	ErrorCodeBadRequest  ErrorCode = "BAD_REQUEST"
	ErrorCodeInvalidJSON ErrorCode = "INVALID_JSON"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Field names the offending input field for validation failures.
	Field string `json:"field,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %s)", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetHTTPStatus returns the appropriate HTTP status code for the error
func (e *AppError) GetHTTPStatus() int {
	switch e.Code {
	case ErrorCodeValidation, ErrorCodeBadRequest, ErrorCodeInvalidJSON:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case ErrorCodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewAppErrorWithCause creates a new application error with an underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Predefined error constructors for common cases

// ValidationError creates a validation error
func ValidationError(message string) *AppError {
	return NewAppError(ErrorCodeValidation, message)
}

// FieldValidationError creates a validation error pointing at one input field
func FieldValidationError(field, message string) *AppError {
	err := NewAppError(ErrorCodeValidation, message)
	err.Field = field
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resource string) *AppError {
	return NewAppError(ErrorCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// InternalError creates an internal server error
func InternalError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeInternal, message, cause)
}

// TimeoutError creates a timeout error
func TimeoutError(operation string) *AppError {
	return NewAppError(ErrorCodeTimeout, fmt.Sprintf("timeout during %s", operation))
}

// BadRequestError creates a bad request error
func BadRequestError(message string) *AppError {
	return NewAppError(ErrorCodeBadRequest, message)
}

// InvalidJSONError creates an invalid JSON error
func InvalidJSONError(field string, cause error) *AppError {
	err := NewAppErrorWithCause(ErrorCodeInvalidJSON, "Invalid JSON format", cause)
	if field != "" {
		err.Field = field
		err.Message = fmt.Sprintf("%s has an invalid type", field)
	}
	return err
}

// Error handling utilities

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not found AppError
func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == ErrorCodeNotFound
}

// IsValidation reports whether err is a validation AppError
func IsValidation(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == ErrorCodeValidation
}
