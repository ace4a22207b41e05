// Package errors provides domain-specific error types for ifconf.
//
// Every failure surfaced by a conf-mode handler carries one of the codes below,
// so callers and tests can branch on the category with errors.Is against the
// exported sentinels instead of matching message text.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeMissingIdentifier indicates the entity name was not supplied to a handler.
	ErrCodeMissingIdentifier ErrorCode = "MISSING_IDENTIFIER"

	// ErrCodeValidation indicates the proposed configuration violates a constraint.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeCommand indicates an external command failed.
	ErrCodeCommand ErrorCode = "COMMAND_ERROR"

	// ErrCodeNoVariant indicates an interface name matched no registered variant.
	ErrCodeNoVariant ErrorCode = "NO_VARIANT"

	// ErrCodeDuplicateRegistration indicates a prefix or section was registered twice.
	ErrCodeDuplicateRegistration ErrorCode = "DUPLICATE_REGISTRATION"

	// ErrCodeRender indicates a template could not be rendered or written.
	ErrCodeRender ErrorCode = "RENDER_ERROR"

	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeInterface indicates an error related to network interfaces.
	ErrCodeInterface ErrorCode = "INTERFACE_ERROR"

	// ErrCodeZeroTier indicates an error communicating with the ZeroTier service.
	ErrCodeZeroTier ErrorCode = "ZEROTIER_ERROR"

	// ErrCodeNetwork indicates a firewall or routing error.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Only the code is compared.
var (
	ErrMissingIdentifier     = &Error{Code: ErrCodeMissingIdentifier}
	ErrValidation            = &Error{Code: ErrCodeValidation}
	ErrCommand               = &Error{Code: ErrCodeCommand}
	ErrNoVariant             = &Error{Code: ErrCodeNoVariant}
	ErrDuplicateRegistration = &Error{Code: ErrCodeDuplicateRegistration}
	ErrRender                = &Error{Code: ErrCodeRender}
	ErrConfig                = &Error{Code: ErrCodeConfig}
	ErrInterface             = &Error{Code: ErrCodeInterface}
	ErrZeroTier              = &Error{Code: ErrCodeZeroTier}
	ErrInternal              = &Error{Code: ErrCodeInternal}
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CommandError describes a failed external command.
type CommandError struct {
	Command    string
	ExitStatus int
	Output     string
	Cause      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("[%s] command %q failed with exit status %d", ErrCodeCommand, e.Command, e.ExitStatus)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// Is matches ErrCommand.
func (e *CommandError) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Code == ErrCodeCommand
	}
	return false
}

// NewMissingIdentifierError reports that no entity name was provided.
func NewMissingIdentifierError(what string) *Error {
	return New(ErrCodeMissingIdentifier, fmt.Sprintf("%s name not specified", what))
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// Validationf creates a validation error from a format string.
func Validationf(format string, args ...any) *Error {
	return New(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// NewNoVariantError reports that name resolved to no interface variant.
func NewNoVariantError(name string) *Error {
	return New(ErrCodeNoVariant, fmt.Sprintf("no interface variant registered for %q", name))
}

// NewDuplicateRegistrationError reports a second registration of key.
func NewDuplicateRegistrationError(kind, key string) *Error {
	return New(ErrCodeDuplicateRegistration, fmt.Sprintf("%s %q already registered", kind, key))
}

// NewRenderError creates a new template rendering error.
func NewRenderError(message string, cause error) *Error {
	return Wrap(ErrCodeRender, message, cause)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewInterfaceError creates a new interface-related error.
func NewInterfaceError(message string, cause error) *Error {
	return Wrap(ErrCodeInterface, message, cause)
}

// NewZeroTierError creates a new ZeroTier service error.
func NewZeroTierError(message string, cause error) *Error {
	return Wrap(ErrCodeZeroTier, message, cause)
}

// NewNetworkError creates a new firewall or routing error.
func NewNetworkError(message string, cause error) *Error {
	return Wrap(ErrCodeNetwork, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
