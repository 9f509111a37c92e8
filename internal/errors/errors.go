package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether the error carries the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes.
//
// The analysis codes mirror the failure kinds the computation layer can
// produce; the boundary layer maps each one to an HTTP status.
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternalError   = "INTERNAL_ERROR"

	CodeInputFormat         = "INPUT_FORMAT_ERROR"
	CodeEmptyInput          = "EMPTY_INPUT"
	CodeInsufficientData    = "INSUFFICIENT_DATA"
	CodeColumnNotFound      = "COLUMN_NOT_FOUND"
	CodeUnsupportedMethod   = "UNSUPPORTED_METHOD"
	CodeNoApplicableColumns = "NO_APPLICABLE_COLUMNS"

	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
)

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// InputFormat signals that a byte source could not be parsed as its declared format
func InputFormat(message string, cause error) *AppError {
	return &AppError{Code: CodeInputFormat, Message: message, Cause: cause}
}

// EmptyInput signals that a parsed source contained zero data rows
func EmptyInput(message string) *AppError {
	return New(CodeEmptyInput, message)
}

// InsufficientData signals that an analysis needs more data than the table holds
func InsufficientData(operation string) *AppError {
	return New(CodeInsufficientData, fmt.Sprintf("insufficient data for %s", operation))
}

// ColumnNotFound signals that a caller-specified column does not exist
func ColumnNotFound(column string) *AppError {
	return New(CodeColumnNotFound, fmt.Sprintf("column %q not found in dataset", column))
}

// UnsupportedMethod signals a method string outside the defined enumeration
func UnsupportedMethod(operation, method string) *AppError {
	return New(CodeUnsupportedMethod, fmt.Sprintf("unsupported %s method: %q", operation, method))
}

// NoApplicableColumns signals that no column of the required class exists
func NoApplicableColumns(message string) *AppError {
	return New(CodeNoApplicableColumns, message)
}

func InvalidFileType(allowed []string) *AppError {
	return New(CodeInvalidFileType, fmt.Sprintf("file type not allowed, supported types: %v", allowed))
}

func FileTooLarge(maxBytes int64) *AppError {
	return New(CodeFileTooLarge, fmt.Sprintf("file size exceeds maximum of %d bytes", maxBytes))
}
