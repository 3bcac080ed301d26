// Package operand captures assertion operands and renders them
// as diagnostic text. It also provides Approximation, the
// tolerance wrapper used for floating-point equality.
package operand

import (
	"fmt"
	"reflect"
	"strconv"
)

// Unprintable is the text used for values that have no
// derivable textual representation.
const Unprintable = "{?}"

// Operand is a type-erased snapshot of one side of an
// assertion expression. Capturing only stores the interface
// value; the expression that produced it is never evaluated
// again.
type Operand struct {
	// Value is the captured value.
	Value any
}

// Capture wraps v as an Operand.
func Capture(v any) Operand {
	return Operand{Value: v}
}

// String renders the captured value for diagnostics.
func (o Operand) String() string {
	return Stringify(o.Value)
}

// IsNil reports whether the captured value is nil or a nil
// pointer, map, slice, func, chan or interface.
func (o Operand) IsNil() bool {
	return IsNil(o.Value)
}

// Stringify renders v the way failed assertions print their
// operands. It never panics: values whose String or Error
// method panics render as Unprintable.
func Stringify(v any) (s string) {
	defer func() {
		if recover() != nil {
			s = Unprintable
		}
	}()

	switch x := v.(type) {
	case nil:
		return "nil"
	case Approximation:
		return x.String()
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case error:
		return x.Error()
	case fmt.Stringer:
		if IsNil(v) {
			return "nil"
		}
		return x.String()
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.String:
		return strconv.Quote(rv.String())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return Unprintable
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil"
		}
		return fmt.Sprintf("0x%x", rv.Pointer())
	case reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
	}
	return fmt.Sprintf("%v", v)
}

// IsNil reports whether v is nil or holds a nil reference
// type.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.Interface,
		reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
