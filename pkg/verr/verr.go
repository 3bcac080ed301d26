// Package verr defines the error taxonomy of the framework
// and maps each kind to a process exit code.
package verr

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	ExitSuccess  = 0
	ExitFailures = 1
	ExitUsage    = 2
)

// Kind is a stable error category.
type Kind string

// Error kinds.
const (
	// Assertion is a non-fatal assertion failure.
	Assertion Kind = "ASSERTION"

	// FatalAssertion is a failed Require that ended a body.
	FatalAssertion Kind = "FATAL_ASSERTION"

	// Uncaught is a panic that escaped a test body.
	Uncaught Kind = "UNCAUGHT"

	// Fault is a memory fault, arithmetic fault or signal
	// that ended a test.
	Fault Kind = "FAULT"

	// RegistryCollision is two different tests registered
	// under one name.
	RegistryCollision Kind = "REGISTRY_COLLISION"

	// NoMatchingTests is a selection that matched nothing.
	NoMatchingTests Kind = "NO_MATCHING_TESTS"

	// Config is an invalid configuration file or value.
	Config Kind = "CONFIG"

	// Usage is a command line error.
	Usage Kind = "USAGE"

	// IO is a failure reading or writing files.
	IO Kind = "IO"

	// TestFailures is a run in which some test did not pass.
	TestFailures Kind = "TEST_FAILURES"
)

// ExitCode returns the process exit code for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case Config, Usage, NoMatchingTests:
		return ExitUsage
	default:
		return ExitFailures
	}
}

// Error is the structured error type of the framework.
type Error struct {
	Kind    Kind
	Message string
	Test    string // test name if applicable
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Test != "" {
		msg = fmt.Sprintf("[%s] %s", e.Test, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error.
func (e *Error) ExitCode() int {
	return e.Kind.ExitCode()
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates an Error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ForTest creates an Error attributed to a test.
func ForTest(kind Kind, test, message string) *Error {
	return &Error{Kind: kind, Test: test, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain,
// or the empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode returns the exit code for err: 0 for nil, the
// kind's code for an *Error, and ExitFailures otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitFailures
}
