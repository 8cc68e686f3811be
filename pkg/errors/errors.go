package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Kernel metadata errors
	ErrUnknownKernelVersion ErrorCode = "UNKNOWN_KERNEL_VERSION"
	ErrMissingDataFile      ErrorCode = "MISSING_DATA_FILE"
	ErrMalformedAlias       ErrorCode = "MALFORMED_ALIAS"

	// Query errors
	ErrAliasNotFound  ErrorCode = "ALIAS_NOT_FOUND"
	ErrDeviceNotFound ErrorCode = "DEVICE_NOT_FOUND"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
)

// KmoddbError represents a structured error with code and details
type KmoddbError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KmoddbError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KmoddbError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KmoddbError) Is(target error) bool {
	var targetErr *KmoddbError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KmoddbError with the given code and message
func New(code ErrorCode, message string) *KmoddbError {
	return &KmoddbError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KmoddbError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KmoddbError {
	return &KmoddbError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KmoddbError
func Wrap(err error, code ErrorCode, message string) *KmoddbError {
	if err == nil {
		return nil
	}
	return &KmoddbError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KmoddbError {
	if err == nil {
		return nil
	}
	return &KmoddbError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KmoddbError) WithDetail(key string, value interface{}) *KmoddbError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var kerr *KmoddbError
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a KmoddbError
func GetErrorCode(err error) ErrorCode {
	var kerr *KmoddbError
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return ErrUnknown
}
