package expr

import (
	"cmp"
	"fmt"
	"math"
	"reflect"

	"github.com/stretchr/testify/assert"

	"digital.vasic.verify/pkg/operand"
)

// Evaluator decides an operator from a three-way ordering
// result (-1, 0 or +1).
type Evaluator func(order int) bool

// unordered marks a comparison involving NaN: every relation
// except != is false.
const unordered = 2

var evaluators = map[Operator]Evaluator{
	OpEq: func(c int) bool { return c == 0 },
	OpNe: func(c int) bool { return c != 0 },
	OpLt: func(c int) bool { return c < 0 },
	OpLe: func(c int) bool { return c <= 0 },
	OpGt: func(c int) bool { return c > 0 },
	OpGe: func(c int) bool { return c >= 0 },
}

// Evaluate applies op to lhs and rhs. Numeric operands are
// widened to a common domain before comparing; the returned
// note is non-empty when the operands could not be compared.
func Evaluate(op Operator, lhs, rhs any) (bool, string) {
	evaluator, exists := evaluators[op]
	if !exists {
		return false, fmt.Sprintf("unknown operator: %s", op)
	}

	if a, ok := rhs.(operand.Approximation); ok {
		return evaluateApprox(op, lhs, a, false)
	}
	if a, ok := lhs.(operand.Approximation); ok {
		return evaluateApprox(op, rhs, a, true)
	}

	if op == OpEq || op == OpNe {
		equal := equals(lhs, rhs)
		return equal == (op == OpEq), ""
	}

	c, ok := order(lhs, rhs)
	if !ok {
		return false, fmt.Sprintf(
			"operands of type %T and %T are not ordered",
			lhs, rhs,
		)
	}
	if c == unordered {
		return false, ""
	}
	return evaluator(c), ""
}

// equals reports native equality after widening, deep
// equality for everything that has no natural order.
func equals(lhs, rhs any) bool {
	if operand.IsNil(lhs) || operand.IsNil(rhs) {
		return operand.IsNil(lhs) && operand.IsNil(rhs)
	}
	if c, ok := order(lhs, rhs); ok {
		return c == 0
	}
	return assert.ObjectsAreEqual(lhs, rhs)
}

// evaluateApprox compares x against an approximation. When
// approxLeft is set the approximation is the left operand.
func evaluateApprox(
	op Operator,
	x any,
	a operand.Approximation,
	approxLeft bool,
) (bool, string) {
	f, ok := toFloat(x)
	if !ok {
		return false, fmt.Sprintf(
			"operand of type %T cannot be compared "+
				"with an approximation", x,
		)
	}

	switch op {
	case OpEq:
		return a.Equals(f), ""
	case OpNe:
		return !a.Equals(f), ""
	}

	c := compareFloat(f, a.Value)
	if approxLeft && c != unordered {
		c = -c
	}
	if c == unordered {
		return false, ""
	}
	return evaluators[op](c), ""
}

type numericClass int

const (
	classNone numericClass = iota
	classSigned
	classUnsigned
	classFloat
	classString
)

func classify(v any) (reflect.Value, numericClass) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64:
		return rv, classSigned
	case reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv, classUnsigned
	case reflect.Float32, reflect.Float64:
		return rv, classFloat
	case reflect.String:
		return rv, classString
	}
	return rv, classNone
}

// order returns the three-way ordering of lhs and rhs, or
// false when they have no common ordered domain.
//
// Signed against unsigned compares mathematically: a negative
// value is less than every unsigned value. Go rejects mixed
// signedness at compile time, so there is no builtin
// behaviour to mirror for that case.
func order(lhs, rhs any) (int, bool) {
	lv, lc := classify(lhs)
	rv, rc := classify(rhs)

	if lc == classNone || rc == classNone {
		return 0, false
	}
	if lc == classString || rc == classString {
		if lc != rc {
			return 0, false
		}
		return cmp.Compare(lv.String(), rv.String()), true
	}

	switch {
	case lc == classFloat || rc == classFloat:
		lf, _ := toFloat(lhs)
		rf, _ := toFloat(rhs)
		return compareFloat(lf, rf), true
	case lc == classSigned && rc == classSigned:
		return cmp.Compare(lv.Int(), rv.Int()), true
	case lc == classUnsigned && rc == classUnsigned:
		return cmp.Compare(lv.Uint(), rv.Uint()), true
	case lc == classSigned:
		return compareMixed(lv.Int(), rv.Uint()), true
	default:
		return -compareMixed(rv.Int(), lv.Uint()), true
	}
}

func compareMixed(i int64, u uint64) int {
	if i < 0 {
		return -1
	}
	return cmp.Compare(uint64(i), u)
}

func compareFloat(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return unordered
	}
	return cmp.Compare(a, b)
}

func toFloat(v any) (float64, bool) {
	rv, c := classify(v)
	switch c {
	case classSigned:
		return float64(rv.Int()), true
	case classUnsigned:
		return float64(rv.Uint()), true
	case classFloat:
		return rv.Float(), true
	}
	return 0, false
}
