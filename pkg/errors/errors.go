// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for the substrate.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies substrate errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidConfiguration indicates a configuration value was rejected,
	// e.g. an unknown strategy name or a duplicate module registration.
	CodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeMemoryError indicates a memory system error.
	CodeMemoryError ErrorCode = "MEMORY_ERROR"

	// CodeModuleFailure indicates a cognitive module failed to process input.
	CodeModuleFailure ErrorCode = "MODULE_FAILURE"
)

// SubstrateError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type SubstrateError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *SubstrateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *SubstrateError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *SubstrateError) MarshalJSON() ([]byte, error) {
	type Alias SubstrateError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new SubstrateError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *SubstrateError {
	return &SubstrateError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
	}
}

// Newf creates a new SubstrateError with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *SubstrateError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *SubstrateError) WithContext(key string, value interface{}) *SubstrateError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *SubstrateError) WithRecoverable(recoverable bool) *SubstrateError {
	e.Recoverable = recoverable
	return e
}

// AsSubstrateError attempts to convert an error to a SubstrateError.
// Returns the error as SubstrateError if it is one, or wraps it otherwise.
func AsSubstrateError(err error) *SubstrateError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SubstrateError); ok {
		return se
	}
	return New(CodeInternal, "wrapped error", err)
}

// IsCode reports whether err is a SubstrateError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	se, ok := err.(*SubstrateError)
	return ok && se.Code == code
}
