package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInitializerNotFound indicates that no creator is registered for
	// the requested initializer name
	ErrInitializerNotFound = errors.New("initializer not found")

	// ErrConstructionFailed indicates that a registered creator failed to
	// construct an initializer instance
	ErrConstructionFailed = errors.New("initializer construction failed")

	// ErrVertexMismatch indicates that an event was delivered to a manager
	// owning a different vertex
	ErrVertexMismatch = errors.New("event targets a different vertex")

	// ErrMissingTargetInput indicates that an event carries no target input name
	ErrMissingTargetInput = errors.New("target input name must be set")

	// ErrUnknownInput indicates that an event targets an input with no
	// registered initializer
	ErrUnknownInput = errors.New("unknown target input")

	// ErrEventHandlingFailed indicates that an initializer's event handler
	// returned an error
	ErrEventHandlingFailed = errors.New("initializer event handling failed")

	// ErrAlreadyRunning indicates that RunInputInitializers was invoked
	// more than once on the same manager
	ErrAlreadyRunning = errors.New("input initializers already running")

	// ErrManagerStopped indicates that an operation was attempted on a
	// manager that has been shut down
	ErrManagerStopped = errors.New("initializer manager stopped")
)

// Error represents a structured manager error
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsConstruction checks if an error is an initializer construction error
func IsConstruction(err error) bool {
	return errors.Is(err, ErrConstructionFailed) || errors.Is(err, ErrInitializerNotFound)
}

// IsUnknownInput checks if an error is an unknown target input error
func IsUnknownInput(err error) bool {
	return errors.Is(err, ErrUnknownInput)
}
