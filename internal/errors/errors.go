// Package errors provides structured error types for the Hashcol engine.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryAnnotation ErrorCategory = "ANNOTATION"
	ErrCategoryRender     ErrorCategory = "RENDER"
	ErrCategoryMigration  ErrorCategory = "MIGRATION"
	ErrCategorySnapshot   ErrorCategory = "SNAPSHOT"
	ErrCategoryArtifact   ErrorCategory = "ARTIFACT"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeUnknownAlgorithm  = "UNKNOWN_ALGORITHM"
	CodeEmptySourceList   = "EMPTY_SOURCE_LIST"
	CodeDuplicateSource   = "DUPLICATE_SOURCE"
	CodeInvalidTargetType = "INVALID_TARGET_TYPE"

	// Annotation codes
	CodeMalformedAnnotation = "MALFORMED_ANNOTATION"

	// Render codes
	CodeIncompatibleStorageType = "INCOMPATIBLE_STORAGE_TYPE"

	// Migration codes
	CodeInvalidOperation = "INVALID_OPERATION"

	// Snapshot codes
	CodeSnapshotIO       = "SNAPSHOT_IO"
	CodeSnapshotNotFound = "SNAPSHOT_NOT_FOUND"

	// Artifact codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// HashcolError is the structured error type used throughout the system.
type HashcolError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *HashcolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *HashcolError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *HashcolError) Is(target error) bool {
	var t *HashcolError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new HashcolError.
func New(category ErrorCategory, code, message string) *HashcolError {
	return &HashcolError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Newf creates a new HashcolError with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *HashcolError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap creates a new HashcolError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *HashcolError {
	return &HashcolError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *HashcolError) WithDetails(details map[string]interface{}) *HashcolError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var he *HashcolError
	if errors.As(err, &he) {
		return he.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a HashcolError.
func GetCategory(err error) ErrorCategory {
	var he *HashcolError
	if errors.As(err, &he) {
		return he.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a HashcolError.
func GetCode(err error) string {
	var he *HashcolError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. A model-definition
// defect is never retryable; only snapshot and artifact I/O may be.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategorySnapshot && code == CodeSnapshotIO:
		return true
	case category == ErrCategoryArtifact && code == CodeUploadFailed:
		return true
	case category == ErrCategoryArtifact && code == CodeDownloadFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *HashcolError {
	return New(ErrCategoryValidation, code, message)
}

func NewAnnotationError(message string) *HashcolError {
	return New(ErrCategoryAnnotation, CodeMalformedAnnotation, message)
}

func NewRenderError(code, message string) *HashcolError {
	return New(ErrCategoryRender, code, message)
}

func NewMigrationError(code, message string) *HashcolError {
	return New(ErrCategoryMigration, code, message)
}

func NewSnapshotError(code, message string, cause error) *HashcolError {
	return Wrap(ErrCategorySnapshot, code, message, cause)
}

func NewArtifactError(code, message string, cause error) *HashcolError {
	return Wrap(ErrCategoryArtifact, code, message, cause)
}

func NewInternalError(message string, cause error) *HashcolError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
