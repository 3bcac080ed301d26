// Package expr decomposes assertion expressions. A test
// author writes That(a).Eq(b) instead of a == b; the left
// operand is captured first, the operator and right operand
// complete a Comparison, and the truth value is derived only
// when the Comparison is decomposed, so both operand strings
// survive regardless of the outcome.
//
// Logical && and || are never decomposed: a condition built
// from them is captured as one opaque boolean.
package expr

import (
	"fmt"
	"reflect"

	"digital.vasic.verify/pkg/operand"
)

// Operator is a relational or equality operator.
type Operator string

// Supported operators.
const (
	OpEq Operator = "=="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpLe Operator = "<="
	OpGt Operator = ">"
	OpGe Operator = ">="
)

// Expression is anything an assertion can evaluate into a
// Decomposition.
type Expression interface {
	Decompose() Decomposition
}

// Decomposition is the evaluated form of an expression: the
// operand texts, the operator and the truth value.
type Decomposition struct {
	// LHS is the rendered left operand, or the only operand
	// for unary captures.
	LHS string

	// Op is the operator, empty for unary captures.
	Op Operator

	// RHS is the rendered right operand.
	RHS string

	// Passed is the truth value of the expression.
	Passed bool

	// Opaque is set when only the overall boolean was
	// captured and operand values are unavailable.
	Opaque bool

	// Note explains anything unusual about the evaluation.
	Note string
}

// Expanded renders the decomposition as "lhs op rhs", or
// just the operand for unary captures.
func (d Decomposition) Expanded() string {
	if d.Op == "" {
		return d.LHS
	}
	return d.LHS + " " + string(d.Op) + " " + d.RHS
}

// Pending is a captured left operand waiting for an operator.
// On its own it is a unary expression over a boolean value.
type Pending struct {
	lhs operand.Operand
}

// That captures the left operand of an assertion expression.
func That(v any) Pending {
	return Pending{lhs: operand.Capture(v)}
}

// Operand returns the captured operand.
func (p Pending) Operand() operand.Operand { return p.lhs }

// Eq completes the comparison lhs == rhs.
func (p Pending) Eq(rhs any) Comparison { return p.compare(OpEq, rhs) }

// Ne completes the comparison lhs != rhs.
func (p Pending) Ne(rhs any) Comparison { return p.compare(OpNe, rhs) }

// Lt completes the comparison lhs < rhs.
func (p Pending) Lt(rhs any) Comparison { return p.compare(OpLt, rhs) }

// Le completes the comparison lhs <= rhs.
func (p Pending) Le(rhs any) Comparison { return p.compare(OpLe, rhs) }

// Gt completes the comparison lhs > rhs.
func (p Pending) Gt(rhs any) Comparison { return p.compare(OpGt, rhs) }

// Ge completes the comparison lhs >= rhs.
func (p Pending) Ge(rhs any) Comparison { return p.compare(OpGe, rhs) }

func (p Pending) compare(op Operator, rhs any) Comparison {
	return Comparison{
		LHS: p.lhs,
		Op:  op,
		RHS: operand.Capture(rhs),
	}
}

// Decompose evaluates the captured operand as a boolean.
func (p Pending) Decompose() Decomposition {
	d := Decomposition{LHS: p.lhs.String()}
	b, ok := AsBool(p.lhs.Value)
	if !ok {
		d.Note = fmt.Sprintf(
			"operand of type %T is not a boolean", p.lhs.Value,
		)
		return d
	}
	d.Passed = b
	return d
}

// AsBool reports the truth value of v when its underlying
// type is bool, named bool types included.
func AsBool(v any) (value, ok bool) {
	if b, isBool := v.(bool); isBool {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return false, false
	}
	return rv.Bool(), true
}

// Comparison is a pending binary relation between two
// captured operands.
type Comparison struct {
	LHS operand.Operand
	Op  Operator
	RHS operand.Operand
}

// Decompose evaluates the relation and renders both operands.
func (c Comparison) Decompose() Decomposition {
	passed, note := Evaluate(c.Op, c.LHS.Value, c.RHS.Value)
	return Decomposition{
		LHS:    c.LHS.String(),
		Op:     c.Op,
		RHS:    c.RHS.String(),
		Passed: passed,
		Note:   note,
	}
}

// Opaque captures a plain boolean whose operands are not
// available.
type Opaque bool

// Decompose returns the boolean with Opaque set.
func (o Opaque) Decompose() Decomposition {
	return Decomposition{
		LHS:    operand.Stringify(bool(o)),
		Passed: bool(o),
		Opaque: true,
	}
}
