// Package errors provides structured error handling for the ChronoDB driver
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal driver errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeFrame represents malformed wire envelope errors
	ErrorTypeFrame ErrorType = "frame"
	// ErrorTypeTypeMismatch represents column type mismatch errors during scanning
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	// ErrorTypeNullness represents NULL values scanned into non-nullable targets
	ErrorTypeNullness ErrorType = "nullness"
	// ErrorTypeDriverStatus represents non-zero status codes from the native library
	ErrorTypeDriverStatus ErrorType = "driver_status"
	// ErrorTypeConnection represents transport connection errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeTimeout represents timeout errors
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents data decoding errors outside the envelope framing
	ErrorTypeData ErrorType = "data"
	// ErrorTypeCapability represents operations a backend does not support
	ErrorTypeCapability ErrorType = "capability"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// NewTypeMismatch creates a type mismatch error identifying the offending column.
func NewTypeMismatch(column string, want, got string) *Error {
	return Newf(ErrorTypeTypeMismatch, "column %q: cannot convert %s to %s", column, got, want).
		WithDetail("column", column)
}

// NewNullness creates an error for a NULL value scanned into a non-nullable target.
func NewNullness(column string) *Error {
	return Newf(ErrorTypeNullness, "column %q: NULL value scanned into non-nullable target", column).
		WithDetail("column", column)
}

// NewDriverStatus creates an error for a non-zero native status code.
func NewDriverStatus(code int32, message string) *Error {
	if message == "" {
		message = "native call failed"
	}
	return Newf(ErrorTypeDriverStatus, "%s (status %d)", message, code).
		WithDetail("code", code)
}

// IsRetryable returns true if the error is retryable
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeConnection:
		return true
	default:
		return false
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
