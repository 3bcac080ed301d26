// Package assertion turns evaluated expressions into
// assertion results and routes them to the per-test
// collector.
package assertion

import (
	"fmt"
	"strings"
)

// Mode selects the strength and polarity of an assertion.
type Mode uint8

// Assertion modes.
const (
	// ModeCheck records a failure and continues the test.
	ModeCheck Mode = iota

	// ModeRequire records a failure and ends the test body.
	ModeRequire

	// ModeCheckFalse is ModeCheck with the condition negated.
	ModeCheckFalse

	// ModeRequireFalse is ModeRequire with the condition
	// negated.
	ModeRequireFalse

	// ModeFail is an explicit fatal failure.
	ModeFail

	// ModeSucceed is an explicit success.
	ModeSucceed
)

var macros = map[Mode]string{
	ModeCheck:        "CHECK",
	ModeRequire:      "REQUIRE",
	ModeCheckFalse:   "CHECK_FALSE",
	ModeRequireFalse: "REQUIRE_FALSE",
	ModeFail:         "FAIL",
	ModeSucceed:      "SUCCEED",
}

// Fatal reports whether a failure in this mode ends the test
// body.
func (m Mode) Fatal() bool {
	return m == ModeRequire || m == ModeRequireFalse ||
		m == ModeFail
}

// Negated reports whether the condition is inverted.
func (m Mode) Negated() bool {
	return m == ModeCheckFalse || m == ModeRequireFalse
}

// Macro returns the report name of the mode.
func (m Mode) Macro() string {
	if s, ok := macros[m]; ok {
		return s
	}
	return fmt.Sprintf("MODE(%d)", uint8(m))
}

// Result is the outcome of a single assertion.
type Result struct {
	// Macro names the assertion kind, e.g. "REQUIRE".
	Macro string `json:"macro"`

	// Expression is the source text of the asserted
	// expression.
	Expression string `json:"expression"`

	// LHS is the rendered left (or only) operand.
	LHS string `json:"lhs"`

	// Operator is the relational operator, empty for unary
	// captures.
	Operator string `json:"operator,omitempty"`

	// RHS is the rendered right operand.
	RHS string `json:"rhs,omitempty"`

	// Expanded is the expression with operand values
	// substituted.
	Expanded string `json:"expanded"`

	// Passed indicates whether the assertion succeeded.
	Passed bool `json:"passed"`

	// Fatal is set for assertions that end the test body on
	// failure.
	Fatal bool `json:"fatal"`

	// File is the source file of the assertion.
	File string `json:"file"`

	// Line is the source line of the assertion.
	Line int `json:"line"`

	// Message is the optional user message.
	Message string `json:"message,omitempty"`

	// Note carries diagnostics about the evaluation.
	Note string `json:"note,omitempty"`
}

// Location returns "file:line".
func (r Result) Location() string {
	return fmt.Sprintf("%s:%d", r.File, r.Line)
}

// Original renders the assertion as written, e.g.
// "REQUIRE( x == 7 )".
func (r Result) Original() string {
	if r.Expression == "" {
		return r.Macro
	}
	return r.Macro + "( " + r.Expression + " )"
}

// HasExpansion reports whether the expanded form adds
// information over the source text.
func (r Result) HasExpansion() bool {
	return r.Expanded != "" && r.Expanded != r.Expression
}

// String renders the result for plain-text output.
func (r Result) String() string {
	var b strings.Builder
	status := "PASSED"
	if !r.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "%s: %s:\n  %s\n", r.Location(), status, r.Original())
	if r.HasExpansion() {
		fmt.Fprintf(&b, "with expansion:\n  %s\n", r.Expanded)
	}
	if r.Message != "" {
		fmt.Fprintf(&b, "with message:\n  %s\n", r.Message)
	}
	if r.Note != "" {
		fmt.Fprintf(&b, "note: %s\n", r.Note)
	}
	return b.String()
}

// FormatMessage builds a user message from testify-style
// msgAndArgs: a single value is printed as is, several values
// led by a string are a format string and its arguments, and
// anything else is printed space separated.
func FormatMessage(msgAndArgs ...any) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	parts := make([]string, len(msgAndArgs))
	for i, v := range msgAndArgs {
		parts[i] = fmt.Sprintf("%+v", v)
	}
	return strings.Join(parts, " ")
}
