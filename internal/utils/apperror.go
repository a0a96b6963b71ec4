// internal/utils/apperror.go
package utils

import (
	"fmt"
	"net/http"
)

// ErrorCode classifies operational failures so handlers can map them to HTTP
// statuses without string matching.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation"
	CodeNotFound          ErrorCode = "not_found"
	CodeInsufficientStock ErrorCode = "insufficient_stock"
	CodeForbidden         ErrorCode = "forbidden"
	CodeConflict          ErrorCode = "conflict"
)

// AppError is an operational, client-facing failure. Anything that is not an
// AppError is treated as an infrastructure fault and surfaced as a generic 500.
type AppError struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewInsufficientStockError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeInsufficientStock, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeForbidden, Status: http.StatusForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeConflict, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}
