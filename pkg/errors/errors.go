package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryExpression    ErrorCategory = "expression"
	CategoryPlanning      ErrorCategory = "planning"
	CategoryStorage       ErrorCategory = "storage"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeInvalidValue ErrorCode = "invalid_value"
	CodeDuplicate    ErrorCode = "duplicate"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Expression errors
	CodeExpressionInvalid ErrorCode = "expression_invalid"

	// Planning errors
	CodeEmptyResult ErrorCode = "empty_result"
	CodeNoMatch     ErrorCode = "no_match"

	// Storage errors
	CodeNotFound         ErrorCode = "not_found"
	CodeConnectionFailed ErrorCode = "connection_failed"
	CodeWriteFailed      ErrorCode = "write_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// PlannerError is the base error type for all application errors
type PlannerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *PlannerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *PlannerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *PlannerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation, CategoryExpression:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryPlanning, CategoryInternal:
		return 5
	case CategoryStorage:
		return 6
	default:
		return 1
	}
}

// HTTPStatus returns the HTTP status the error should be reported with.
func (e *PlannerError) HTTPStatus() int {
	switch {
	case e.Code == CodeNotFound:
		return 404
	case e.Code == CodeDuplicate:
		return 409
	case e.Category == CategoryStorage, e.Category == CategoryInternal:
		return 500
	default:
		return 400
	}
}

// WithContext adds context information to the error
func (e *PlannerError) WithContext(key string, value interface{}) *PlannerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *PlannerError) WithSuggestion(suggestion string) *PlannerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PlannerError
func New(category ErrorCategory, code ErrorCode, message string) *PlannerError {
	return &PlannerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with PlannerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *PlannerError {
	if err == nil {
		return nil
	}

	return &PlannerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *PlannerError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *PlannerError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, source string, line int, detail string, err error) *PlannerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in %s at line %d: %s", source, line, detail)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column %q in %s", detail, source)
		suggestion = "verify the file has all required columns with correct headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in %s at line %d: %s", source, line, detail)
		suggestion = "correct the data format or remove the invalid entry"
	default:
		message = fmt.Sprintf("parse error in %s at line %d", source, line)
		suggestion = "check the file format and data integrity"
	}

	var result *PlannerError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("source", source).
		WithContext("line", line)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *PlannerError {
	var message string
	var suggestion string

	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field %q is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidValue:
		message = fmt.Sprintf("invalid value in field %q: %v", field, value)
		suggestion = "check the field value and format"
	case CodeDuplicate:
		message = fmt.Sprintf("duplicate value in field %q: %v", field, value)
		suggestion = "use a unique value or update the existing record"
	default:
		message = fmt.Sprintf("validation error in field %q: %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *PlannerError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *PlannerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for %q: %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *PlannerError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// ExpressionError creates a filter-expression error
func ExpressionError(expression string, err error) *PlannerError {
	message := fmt.Sprintf("invalid filter expression %q", expression)

	var result *PlannerError
	if err != nil {
		result = Wrap(err, CategoryExpression, CodeExpressionInvalid, message)
	} else {
		result = New(CategoryExpression, CodeExpressionInvalid, message)
	}

	return result.
		WithSuggestion("use a single comparison over limit, stock and order, e.g. 'order > 5'").
		WithContext("expression", expression)
}

// EmptyResultError reports a planning run whose result contains no rows.
func EmptyResultError(storeName string) *PlannerError {
	return New(CategoryPlanning, CodeEmptyResult,
		fmt.Sprintf("order for %q is empty: no products matched the configured limits", storeName)).
		WithSuggestion("check the store's limit catalog and the uploaded stock names").
		WithContext("store", storeName)
}

// NotFoundError reports a missing stored entity.
func NotFoundError(entity, id string) *PlannerError {
	return New(CategoryStorage, CodeNotFound, fmt.Sprintf("%s not found: %s", entity, id)).
		WithContext("entity", entity).
		WithContext("id", id)
}

// StorageError creates a database-related error
func StorageError(code ErrorCode, operation string, err error) *PlannerError {
	var message string
	var suggestion string

	switch code {
	case CodeConnectionFailed:
		message = fmt.Sprintf("database connection failed during %s", operation)
		suggestion = "check the database URI and that the server is reachable"
	case CodeWriteFailed:
		message = fmt.Sprintf("database write failed during %s", operation)
		suggestion = "check database availability and try again"
	default:
		message = fmt.Sprintf("storage error during %s", operation)
		suggestion = "check database availability and try again"
	}

	var result *PlannerError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *PlannerError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *PlannerError
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	} else {
		result = New(CategoryInternal, CodeUnexpectedError, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// Utility functions

// IsPlannerError checks if an error is a PlannerError
func IsPlannerError(err error) bool {
	_, ok := err.(*PlannerError)
	return ok
}

// AsPlannerError extracts a PlannerError from an error chain
func AsPlannerError(err error) (*PlannerError, bool) {
	var plannerErr *PlannerError
	if errors.As(err, &plannerErr) {
		return plannerErr, true
	}
	return nil, false
}

// IsEmptyResult reports whether the error is the empty planning result error.
func IsEmptyResult(err error) bool {
	if pe, ok := AsPlannerError(err); ok {
		return pe.Code == CodeEmptyResult
	}
	return false
}

// IsNotFound reports whether the error is a missing-entity storage error.
func IsNotFound(err error) bool {
	if pe, ok := AsPlannerError(err); ok {
		return pe.Code == CodeNotFound
	}
	return false
}

// WrapIfNeeded wraps an error if it's not already a PlannerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *PlannerError {
	if err == nil {
		return nil
	}

	if plannerErr, ok := AsPlannerError(err); ok {
		return plannerErr
	}

	return Wrap(err, category, code, message)
}
