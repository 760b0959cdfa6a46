// Package errors defines the application error taxonomy and its HTTP
// rendering. Pipeline stages classify their failures with an AppError so the
// caller can tell a recoverable degradation (missing column, unmatched join
// key, empty summary group) from the one fatal condition, an unavailable
// source table.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	// ErrTypeSourceUnavailable is fatal to a run: no provider could supply
	// a source table, so the pipeline has nothing to operate on.
	ErrTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"
	// ErrTypeMissingColumn is recoverable: a dimension axis column is
	// absent, the dimension is built empty.
	ErrTypeMissingColumn ErrorType = "MISSING_COLUMN"
	// ErrTypeJoinMismatch is a warning: a source row had no matching
	// dimension entry and keeps a nil surrogate key.
	ErrTypeJoinMismatch ErrorType = "JOIN_MISMATCH"
	// ErrTypeInsufficientData is recoverable: an empty summary group is
	// omitted from the output.
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"

	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeInternal   ErrorType = "INTERNAL"
)

// AppError is the application-specific error carrying a type, message,
// wrapped cause, and free-form context for logs and reports.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value pair to the error context.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSourceUnavailableError creates the fatal no-source error.
func NewSourceUnavailableError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSourceUnavailable, message, cause)
}

// NewMissingColumnError creates a missing dimension column error.
func NewMissingColumnError(column string) *AppError {
	return NewAppError(ErrTypeMissingColumn, fmt.Sprintf("column %s is absent from the source table", column), nil).
		WithContext("column", column)
}

// NewInsufficientDataError creates an empty-group error.
func NewInsufficientDataError(group string) *AppError {
	return NewAppError(ErrTypeInsufficientData, fmt.Sprintf("group %s has no usable rows", group), nil).
		WithContext("group", group)
}

// NewNetworkError creates a network-related error.
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError creates a parsing-related error.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error.
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsSourceUnavailable reports whether err is the fatal no-source condition,
// the only error that aborts an entire pipeline run.
func IsSourceUnavailable(err error) bool {
	return IsType(err, ErrTypeSourceUnavailable)
}

// IsMissingColumn reports whether err is a recoverable missing-column error.
func IsMissingColumn(err error) bool {
	return IsType(err, ErrTypeMissingColumn)
}

// IsInsufficientData reports whether err is a recoverable empty-group error.
func IsInsufficientData(err error) bool {
	return IsType(err, ErrTypeInsufficientData)
}
