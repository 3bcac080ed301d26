package operand

import (
	"math"
	"reflect"
	"strconv"
)

// DefaultEpsilon is the relative tolerance used by Approx:
// one hundred times the float32 machine epsilon.
const DefaultEpsilon = float64(1.1920929e-07) * 100

// Number is the set of types Approx accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Approximation marks an operand that compares equal to any
// value within a relative tolerance of Value.
type Approximation struct {
	Value   float64
	Epsilon float64
	Scale   float64

	// bitSize is 32 when Value came from a float32, so it
	// renders as written.
	bitSize int
}

// Approx wraps v for tolerant equality with the default
// epsilon and a scale of 1.
func Approx[N Number](v N) Approximation {
	a := Approximation{
		Value:   float64(v),
		Epsilon: DefaultEpsilon,
		Scale:   1,
		bitSize: 64,
	}
	if reflect.TypeOf(v).Kind() == reflect.Float32 {
		a.bitSize = 32
	}
	return a
}

// WithEpsilon returns a copy using the given relative
// tolerance.
func (a Approximation) WithEpsilon(eps float64) Approximation {
	a.Epsilon = eps
	return a
}

// WithScale returns a copy using the given scale.
func (a Approximation) WithScale(scale float64) Approximation {
	a.Scale = scale
	return a
}

// Equals reports whether x lies within the tolerance:
// |x - Value| < Epsilon * (Scale + max(|x|, |Value|)).
func (a Approximation) Equals(x float64) bool {
	if math.IsNaN(x) || math.IsNaN(a.Value) {
		return false
	}
	margin := a.Epsilon *
		(a.Scale + math.Max(math.Abs(x), math.Abs(a.Value)))
	return math.Abs(x-a.Value) < margin
}

// String renders the approximation as "Approx( 9.1 )".
func (a Approximation) String() string {
	bitSize := a.bitSize
	if bitSize == 0 {
		bitSize = 64
	}
	return "Approx( " +
		strconv.FormatFloat(a.Value, 'g', -1, bitSize) + " )"
}
