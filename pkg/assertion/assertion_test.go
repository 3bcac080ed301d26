package assertion

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.verify/pkg/expr"
)

// --- stub ---

// checker mimics an assertion method so Locate sees a call of
// "Check" in this file.
type checker struct{}

func (checker) Check(_ any) CallSite { return Locate(1, "Check") }

// =====================================================================
// Locate
// =====================================================================

func TestLocate_Comparison(t *testing.T) {
	var p checker
	x := 7

	site := p.Check(expr.That(x).Eq(8))
	assert.Equal(t, "x == 8", site.Expression)
	assert.Equal(t, "assertion_test.go", filepath.Base(site.File))
	assert.Positive(t, site.Line)
	assert.Empty(t, site.Note)

	site = p.Check(expr.That(x + 1).Ge(x))
	assert.Equal(t, "x + 1 >= x", site.Expression)
}

func TestLocate_Unary(t *testing.T) {
	var p checker
	ok := true

	site := p.Check(expr.That(ok))
	assert.Equal(t, "ok", site.Expression)
	assert.Empty(t, site.Note)
}

func TestLocate_MultiLine(t *testing.T) {
	var p checker
	x := 7

	site := p.Check(
		expr.That(x).
			Lt(10),
	)
	assert.Equal(t, "x < 10", site.Expression)
}

func TestLocate_PlainBoolNotes(t *testing.T) {
	var p checker
	x, ok := 7, false

	tests := []struct {
		name string
		site CallSite
		expr string
		note string
	}{
		{"comparison", p.Check(x == 7), "x == 7", NoteComparison},
		{"negation", p.Check(!ok), "!ok", NoteNegation},
		{"logical and", p.Check(x == 7 && ok), "x == 7 && ok", NoteLogical},
		{"logical or", p.Check((x > 1 || ok)), "(x > 1 || ok)", NoteLogical},
		{"identifier", p.Check(ok), "ok", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expr, tt.site.Expression)
			assert.Equal(t, tt.note, tt.site.Note)
		})
	}
}

// =====================================================================
// Evaluate
// =====================================================================

func site(expression string) CallSite {
	return CallSite{File: "file.go", Line: 12, Expression: expression}
}

func TestEvaluate_Comparison(t *testing.T) {
	r := Evaluate(
		expr.That(7).Eq(8), ModeRequire, site("x == 8"), "",
	)

	assert.False(t, r.Passed)
	assert.True(t, r.Fatal)
	assert.Equal(t, "REQUIRE", r.Macro)
	assert.Equal(t, "x == 8", r.Expression)
	assert.Equal(t, "7", r.LHS)
	assert.Equal(t, "==", r.Operator)
	assert.Equal(t, "8", r.RHS)
	assert.Equal(t, "7 == 8", r.Expanded)
	assert.Equal(t, "REQUIRE( x == 8 )", r.Original())
	assert.Equal(t, "file.go:12", r.Location())
	assert.True(t, r.HasExpansion())
}

func TestEvaluate_Negated(t *testing.T) {
	r := Evaluate(
		expr.That(1).Eq(2), ModeCheckFalse, site("a == b"), "",
	)
	assert.True(t, r.Passed)
	assert.False(t, r.Fatal)
	assert.Equal(t, "!(1 == 2)", r.Expanded)

	r = Evaluate(
		expr.That(true).Lt(false), ModeCheckFalse, site(""), "",
	)
	assert.False(t, r.Passed, "unordered operands never pass")
	assert.NotEmpty(t, r.Note)
}

func TestEvaluate_PlainBool(t *testing.T) {
	s := site("a && b")
	s.Note = NoteLogical

	r := Evaluate(true, ModeCheck, s, "")
	assert.True(t, r.Passed)
	assert.Equal(t, "true", r.Expanded)
	assert.Equal(t, NoteLogical, r.Note)

	r = Evaluate(false, ModeRequireFalse, s, "")
	assert.True(t, r.Passed)
	assert.Equal(t, "!(false)", r.Expanded)
}

type enabled bool

func TestEvaluate_NamedBool(t *testing.T) {
	r := Evaluate(enabled(true), ModeCheck, site("on"), "")
	assert.True(t, r.Passed)
	assert.Equal(t, "true", r.Expanded)
	assert.Empty(t, r.Note)

	r = Evaluate(enabled(false), ModeCheckFalse, site("on"), "")
	assert.True(t, r.Passed)
	assert.Equal(t, "!(false)", r.Expanded)

	r = Evaluate(expr.That(enabled(true)), ModeRequire, site("on"), "")
	assert.True(t, r.Passed)

	r = Evaluate(expr.That(enabled(true)), ModeCheckFalse, site("on"), "")
	assert.False(t, r.Passed)
	assert.Empty(t, r.Note)
}

func TestEvaluate_NotABoolean(t *testing.T) {
	r := Evaluate(42, ModeCheck, site("n"), "")
	assert.False(t, r.Passed)
	assert.Contains(t, r.Note, "int")

	r = Evaluate(42, ModeCheckFalse, site("n"), "")
	assert.False(t, r.Passed)
}

func TestEvaluate_ExpressionFallback(t *testing.T) {
	r := Evaluate(expr.That(7).Eq(8), ModeCheck, CallSite{}, "")
	assert.Equal(t, "7 == 8", r.Expression)
	assert.False(t, r.HasExpansion())
}

func TestExplicit(t *testing.T) {
	r := Explicit(ModeFail, site(""), "gave up")
	assert.False(t, r.Passed)
	assert.True(t, r.Fatal)
	assert.Equal(t, "FAIL", r.Original())
	assert.Contains(t, r.String(), "gave up")

	r = Explicit(ModeSucceed, site(""), "")
	assert.True(t, r.Passed)
	assert.False(t, r.Fatal)
}

func TestMode(t *testing.T) {
	assert.True(t, ModeRequire.Fatal())
	assert.True(t, ModeRequireFalse.Fatal())
	assert.False(t, ModeCheck.Fatal())
	assert.True(t, ModeCheckFalse.Negated())
	assert.False(t, ModeRequire.Negated())
	assert.Equal(t, "CHECK_FALSE", ModeCheckFalse.Macro())
	assert.Equal(t, "MODE(99)", Mode(99).Macro())
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "", FormatMessage())
	assert.Equal(t, "plain", FormatMessage("plain"))
	assert.Equal(t, "42", FormatMessage(42))

	args := []any{"x=%d", 3}
	assert.Equal(t, "x=3", FormatMessage(args...))

	nonFormat := []any{7, "apples", true}
	assert.Equal(t, "7 apples true", FormatMessage(nonFormat...))
}

// =====================================================================
// Collector
// =====================================================================

func TestCollector_CountsAndForwards(t *testing.T) {
	var seen []Result
	c := NewCollector(func(r Result) { seen = append(seen, r) })

	c.Record(Result{Passed: true})
	c.Record(Result{Passed: false, Expanded: "1 == 2"})
	c.Record(Result{Passed: true})

	passed, failed := c.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
	require.Len(t, c.Failures(), 1)
	assert.Equal(t, "1 == 2", c.Failures()[0].Expanded)
	assert.Len(t, seen, 3)
}

func TestCollector_Seal(t *testing.T) {
	calls := 0
	c := NewCollector(func(Result) { calls++ })

	c.Record(Result{Passed: false})
	c.Seal()
	c.Seal()
	c.Record(Result{Passed: false})

	_, failed := c.Counts()
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, calls)
	assert.True(t, c.Sealed())
}

func TestCollector_NilListener(t *testing.T) {
	c := NewCollector(nil)
	c.Record(Result{Passed: true})
	passed, _ := c.Counts()
	assert.Equal(t, 1, passed)
}
