package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.verify/pkg/operand"
)

type fixture struct {
	Int     int
	Float   float64
	Float32 float32
	Str     string
	Ptr     *int
}

func newFixture() fixture {
	return fixture{
		Int:     7,
		Float:   9.1,
		Float32: 9.1,
		Str:     "hello",
	}
}

// =====================================================================
// Decomposition
// =====================================================================

func TestComparison_Decompose_KeepsOperandText(t *testing.T) {
	data := newFixture()

	tests := []struct {
		name     string
		expr     Expression
		expanded string
		passed   bool
	}{
		{"int eq pass", That(data.Int).Eq(7), "7 == 7", true},
		{"int eq fail", That(data.Int).Eq(8), "7 == 8", false},
		{"int ne", That(data.Int).Ne(7), "7 != 7", false},
		{"int lt", That(data.Int).Lt(10), "7 < 10", true},
		{"int le", That(data.Int).Le(7), "7 <= 7", true},
		{"int gt fail", That(data.Int).Gt(7), "7 > 7", false},
		{"int ge", That(data.Int).Ge(0), "7 >= 0", true},
		{"string eq", That(data.Str).Eq("hello"),
			`"hello" == "hello"`, true},
		{"string lt", That(data.Str).Lt("goodbye"),
			`"hello" < "goodbye"`, false},
		{"string gt", That(data.Str).Gt("a"), `"hello" > "a"`, true},
		{"float approx", That(data.Float).Eq(operand.Approx(9.1)),
			"9.1 == Approx( 9.1 )", true},
		{"float32 approx", That(data.Float32).Eq(operand.Approx(9.1)),
			"9.1 == Approx( 9.1 )", true},
		{"float32 vs double", That(data.Float32).Eq(9.1),
			"9.1 == 9.1", false},
		{"nil pointer", That(data.Ptr).Eq(nil), "nil == nil", true},
		{"nil pointer ne", That(data.Ptr).Ne(nil), "nil != nil", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.expr.Decompose()
			assert.Equal(t, tt.expanded, d.Expanded())
			assert.Equal(t, tt.passed, d.Passed)
			assert.False(t, d.Opaque)
		})
	}
}

func TestComparison_Decompose_Parts(t *testing.T) {
	d := That(1).Lt(2).Decompose()
	assert.Equal(t, "1", d.LHS)
	assert.Equal(t, OpLt, d.Op)
	assert.Equal(t, "2", d.RHS)
	assert.True(t, d.Passed)
	assert.Empty(t, d.Note)
}

func TestThat_EvaluatesOperandsOnce(t *testing.T) {
	calls := 0
	next := func() int {
		calls++
		return calls
	}

	c := That(next()).Eq(next())
	first := c.Decompose()
	second := c.Decompose()

	assert.Equal(t, "1 == 2", first.Expanded())
	assert.Equal(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestPending_Unary(t *testing.T) {
	d := That(true).Decompose()
	assert.True(t, d.Passed)
	assert.Equal(t, "true", d.Expanded())
	assert.Equal(t, Operator(""), d.Op)

	d = That(false).Decompose()
	assert.False(t, d.Passed)
	assert.Equal(t, "false", d.Expanded())

	d = That(42).Decompose()
	assert.False(t, d.Passed)
	assert.Contains(t, d.Note, "not a boolean")
}

type verdict bool

func TestAsBool(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		value bool
		ok    bool
	}{
		{"bool", true, true, true},
		{"named bool", verdict(true), true, true},
		{"named false", verdict(false), false, true},
		{"int", 1, false, false},
		{"string", "true", false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := AsBool(tt.in)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPending_NamedBool(t *testing.T) {
	d := That(verdict(true)).Decompose()
	assert.True(t, d.Passed)
	assert.Empty(t, d.Note)

	d = That(verdict(false)).Decompose()
	assert.False(t, d.Passed)
	assert.Empty(t, d.Note)
}

func TestOpaque(t *testing.T) {
	a, b := 1, 2
	d := Opaque(a == 1 && b == 2).Decompose()
	assert.True(t, d.Passed)
	assert.True(t, d.Opaque)
	assert.Equal(t, "true", d.Expanded())

	d = Opaque(a == 2 || b == 1).Decompose()
	assert.False(t, d.Passed)
	assert.Equal(t, "false", d.LHS)
}

// =====================================================================
// Evaluation
// =====================================================================

func TestEvaluate_Widening(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		lhs  any
		rhs  any
		want bool
	}{
		{"int8 vs int64", OpEq, int8(5), int64(5), true},
		{"uint8 vs uint64", OpLt, uint8(5), uint64(300), true},
		{"int vs float", OpEq, 2, 2.0, true},
		{"float vs uint", OpGt, 2.5, uint(2), true},
		{"negative vs unsigned lt", OpLt, -1, uint(0), true},
		{"negative vs unsigned eq", OpEq, -1, uint64(math.MaxUint64), false},
		{"unsigned vs negative gt", OpGt, uint(0), -1, true},
		{"large unsigned vs int", OpGt, uint64(math.MaxUint64), math.MaxInt64, true},
		{"positive mixed eq", OpEq, 7, uint(7), true},
		{"nan eq", OpEq, math.NaN(), math.NaN(), false},
		{"nan ne", OpNe, math.NaN(), 1.0, true},
		{"nan lt", OpLt, math.NaN(), 1.0, false},
		{"nan gt", OpGt, math.NaN(), 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, note := Evaluate(tt.op, tt.lhs, tt.rhs)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, note)
		})
	}
}

func TestEvaluate_Equality(t *testing.T) {
	type pair struct{ A, B int }
	err := errors.New("x")

	got, _ := Evaluate(OpEq, pair{1, 2}, pair{1, 2})
	assert.True(t, got)

	got, _ = Evaluate(OpNe, pair{1, 2}, pair{2, 1})
	assert.True(t, got)

	got, _ = Evaluate(OpEq, []int{1, 2}, []int{1, 2})
	assert.True(t, got)

	got, _ = Evaluate(OpEq, true, true)
	assert.True(t, got)

	got, _ = Evaluate(OpEq, err, err)
	assert.True(t, got)

	got, _ = Evaluate(OpEq, nil, 0)
	assert.False(t, got)

	got, _ = Evaluate(OpEq, "1", 1)
	assert.False(t, got)
}

func TestEvaluate_Unordered(t *testing.T) {
	got, note := Evaluate(OpLt, true, false)
	assert.False(t, got)
	assert.Contains(t, note, "not ordered")

	got, note = Evaluate(OpGe, "a", 1)
	assert.False(t, got)
	assert.Contains(t, note, "string")
}

func TestEvaluate_UnknownOperator(t *testing.T) {
	got, note := Evaluate(Operator("=~"), 1, 1)
	assert.False(t, got)
	assert.Contains(t, note, "unknown operator")
}

func TestEvaluate_Approx(t *testing.T) {
	a := operand.Approx(1.3)

	got, _ := Evaluate(OpEq, 1.1+0.1+0.1, a)
	assert.True(t, got)

	got, _ = Evaluate(OpEq, a, 1.1+0.1+0.1)
	assert.True(t, got, "approximation on the left")

	got, _ = Evaluate(OpNe, 1.301, a)
	assert.True(t, got)

	got, _ = Evaluate(OpLt, 1.0, a)
	assert.True(t, got)

	got, _ = Evaluate(OpLt, a, 1.0)
	assert.False(t, got)

	got, _ = Evaluate(OpGt, a, 1.0)
	assert.True(t, got)

	got, note := Evaluate(OpEq, "1.3", a)
	require.False(t, got)
	assert.Contains(t, note, "approximation")
}
