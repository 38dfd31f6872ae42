// Package errors provides domain-specific errors for the quacktokenscope application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	// ErrInitialization indicates a tokenizer variant exhausted all of its
	// initialization strategies. Recovered by the registry; never propagates
	// past it.
	ErrInitialization = errors.New("tokenizer initialization failed")

	// ErrNotInitialized indicates a tokenizer operation was invoked before a
	// successful initialize.
	ErrNotInitialized = errors.New("tokenizer not initialized")

	// ErrNotReady indicates the orchestrator has no ready tokenizers.
	ErrNotReady = errors.New("token scope not ready")

	// ErrUnknownTokenizer indicates a lookup by an unregistered tokenizer name.
	ErrUnknownTokenizer = errors.New("unknown tokenizer")

	// ErrUnknownModel indicates a pricing lookup for a model absent from the
	// pricing table. Never silently defaulted.
	ErrUnknownModel = errors.New("unknown model in pricing table")

	// ErrFileAccess indicates the file-store capability failed. Treated as an
	// initialization failure scoped to the affected variant.
	ErrFileAccess = errors.New("file store access failed")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation     ErrorCode = "VALIDATION"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeInitialization ErrorCode = "INIT"
	CodeLifecycle      ErrorCode = "LIFECYCLE"
	CodeFileStore      ErrorCode = "FILE_STORE"
	CodeConfiguration  ErrorCode = "CONFIG"
)

// ScopeError wraps errors with additional context for debugging and handling.
type ScopeError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *ScopeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *ScopeError) Unwrap() error {
	return e.Cause
}

// NewError creates a new ScopeError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *ScopeError {
	return &ScopeError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding multiple context values.
func WithContext(err *ScopeError, key string, value interface{}) *ScopeError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// Is reports whether err matches target using errors.Is semantics.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
