// Package testcase defines registered test cases, the per-test
// assertion handle T, and the outcome model shared by the
// runner and the reporters.
package testcase

import (
	"fmt"
	"reflect"
)

// Identity distinguishes test bodies. Two registrations with
// the same Identity are the same test, whatever their names.
type Identity struct {
	// Kind names the TestCase variant, e.g. "func".
	Kind string

	// Key is the code pointer of the body.
	Key uintptr
}

// String renders the identity for logs.
func (id Identity) String() string {
	return fmt.Sprintf("%s@%#x", id.Kind, id.Key)
}

// TestCase is the capability every registered test provides.
type TestCase interface {
	// Invoke runs the test body against t.
	Invoke(t *T)

	// Identity returns the deduplication key of the body.
	Identity() Identity

	// Clone returns an independent copy of the test case.
	Clone() TestCase
}

// Func is a test case backed by a plain function. Its
// identity is the function's code pointer, so a named
// function registered twice is one test.
type Func func(t *T)

// Invoke calls the function.
func (f Func) Invoke(t *T) { f(t) }

// Identity returns the function's code pointer.
func (f Func) Identity() Identity {
	return Identity{
		Kind: "func",
		Key:  reflect.ValueOf(f).Pointer(),
	}
}

// Clone returns f; functions carry no mutable state.
func (f Func) Clone() TestCase { return f }

// Method is a test case backed by a method expression on a
// fixture type. Each invocation runs against a fresh zero
// fixture.
type Method[F any] func(fixture *F, t *T)

// Invoke creates a fresh fixture and calls the method.
func (m Method[F]) Invoke(t *T) {
	var fixture F
	m(&fixture, t)
}

// Identity returns the method's code pointer.
func (m Method[F]) Identity() Identity {
	return Identity{
		Kind: "method",
		Key:  reflect.ValueOf(m).Pointer(),
	}
}

// Clone returns m.
func (m Method[F]) Clone() TestCase { return m }

// Info describes one registered test.
type Info struct {
	// Name is the test name; unique within a run only by
	// convention.
	Name string `json:"name"`

	// Description is free text shown in reports.
	Description string `json:"description,omitempty"`

	// File is the source file of the registration.
	File string `json:"file"`

	// Line is the source line of the registration.
	Line int `json:"line"`

	// Case is the runnable test.
	Case TestCase `json:"-"`
}

// Identity returns the identity of the underlying test case.
func (i Info) Identity() Identity {
	if i.Case == nil {
		return Identity{}
	}
	return i.Case.Identity()
}

// Location returns "file:line" of the registration.
func (i Info) Location() string {
	return fmt.Sprintf("%s:%d", i.File, i.Line)
}
