package assertion

import (
	"fmt"

	"digital.vasic.verify/pkg/expr"
	"digital.vasic.verify/pkg/operand"
)

// Evaluate decomposes cond and builds the Result for an
// assertion made in the given mode at site. cond is either an
// expr.Expression or a value whose underlying type is bool;
// anything else fails.
func Evaluate(
	cond any,
	mode Mode,
	site CallSite,
	msg string,
) Result {
	var d expr.Decomposition
	c, isExpr := cond.(expr.Expression)
	b, isBool := expr.AsBool(cond)
	switch {
	case isExpr:
		d = c.Decompose()
	case isBool:
		d = expr.Opaque(b).Decompose()
		d.Note = site.Note
	default:
		d = expr.Decomposition{
			LHS: operand.Stringify(cond),
			Note: fmt.Sprintf(
				"condition of type %T is neither a boolean "+
					"nor an expression", cond,
			),
		}
	}

	// A note from an expression means it could not be
	// evaluated; negation must not turn that into a pass.
	invalid := d.Note != "" && !d.Opaque
	passed := d.Passed
	expanded := d.Expanded()
	if mode.Negated() {
		passed = !passed && !invalid
		expanded = "!(" + expanded + ")"
	}

	expression := site.Expression
	if expression == "" {
		expression = d.Expanded()
	}

	return Result{
		Macro:      mode.Macro(),
		Expression: expression,
		LHS:        d.LHS,
		Operator:   string(d.Op),
		RHS:        d.RHS,
		Expanded:   expanded,
		Passed:     passed,
		Fatal:      mode.Fatal(),
		File:       site.File,
		Line:       site.Line,
		Message:    msg,
		Note:       d.Note,
	}
}

// Explicit builds the Result of an explicit Fail or Succeed.
func Explicit(mode Mode, site CallSite, msg string) Result {
	return Result{
		Macro:   mode.Macro(),
		Passed:  mode == ModeSucceed,
		Fatal:   mode.Fatal(),
		File:    site.File,
		Line:    site.Line,
		Message: msg,
	}
}
