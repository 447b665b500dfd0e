// Package errors provides error wrapping utilities for consistent error handling.
package errors

import (
	"fmt"
)

// ErrorWrapper provides context-aware error wrapping.
type ErrorWrapper struct {
	operation string
	module    string
}

// NewWrapper creates a new error wrapper with operation and module context.
func NewWrapper(module, operation string) *ErrorWrapper {
	return &ErrorWrapper{
		module:    module,
		operation: operation,
	}
}

// Wrap wraps an error with operation context.
// Returns nil if err is nil.
func (w *ErrorWrapper) Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation: w.operation,
		Module:    w.module,
		Cause:     err,
	}
}

// WrappedError records where in the bot an error surfaced.
type WrappedError struct {
	Operation string // e.g. "fetch_listings", "format_cards"
	Module    string // e.g. "nearby", "greeting"
	Cause     error
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %v", e.Module, e.Operation, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// Module returns the module recorded on the outermost WrappedError in err's chain.
// Returns "unknown" when err carries no module context.
func Module(err error) string {
	var wrapped *WrappedError
	if As(err, &wrapped) {
		return wrapped.Module
	}
	return "unknown"
}
