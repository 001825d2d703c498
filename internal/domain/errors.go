package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoMatchingTicket is returned when a confirmation answer does not match the session's live ticket.
	ErrNoMatchingTicket = errors.New("no matching pending command")
	// ErrTicketExpired is returned when the matching ticket passed its expiry.
	ErrTicketExpired = errors.New("confirmation expired")
	// ErrUnsupportedModule is returned when no handler is registered for a target module.
	ErrUnsupportedModule = errors.New("unsupported module")
	// ErrHandlerTimeout is returned when a handler does not answer within the dispatch timeout.
	ErrHandlerTimeout = errors.New("handler timed out")
)

// HandlerError is a domain handler failure whose Message is safe to show users.
type HandlerError struct {
	Module  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s: %s", e.Module, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *HandlerError) Unwrap() error {
	return e.Cause
}

// NewHandlerError creates a HandlerError.
func NewHandlerError(module, message string) *HandlerError {
	return &HandlerError{Module: module, Message: message}
}

// NewHandlerErrorWithCause creates a HandlerError wrapping an underlying cause.
func NewHandlerErrorWithCause(module, message string, cause error) *HandlerError {
	return &HandlerError{Module: module, Message: message, Cause: cause}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
