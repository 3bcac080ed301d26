// Package verify is the author-facing API: register test cases
// at package level, assert with That, and hand control to Main.
//
//	var _ = verify.TestCase("math/add", "adds ints", func(t *verify.T) {
//		t.Require(verify.That(add(2, 3)).Eq(5))
//	})
//
//	func main() { verify.Main() }
package verify

import (
	"context"
	"os"
	"runtime"

	"digital.vasic.verify/pkg/cli"
	"digital.vasic.verify/pkg/expr"
	"digital.vasic.verify/pkg/operand"
	"digital.vasic.verify/pkg/registry"
	"digital.vasic.verify/pkg/testcase"
)

// T is the assertion handle passed to test bodies.
type T = testcase.T

// Approximation compares floating point values within a
// tolerance.
type Approximation = operand.Approximation

// TestCase registers body with the process-wide registry under
// name, recording the caller's file and line. It returns true
// so it can initialize a package-level blank variable. A body
// already registered keeps its first registration.
func TestCase(name, description string, body func(t *T)) bool {
	register(name, description, testcase.Func(body))
	return true
}

// Method registers a method of fixture type F. Each run calls
// body on a fresh zero F.
func Method[F any](name, description string, body func(f *F, t *T)) bool {
	register(name, description, testcase.Method[F](body))
	return true
}

func register(name, description string, tc testcase.TestCase) {
	_, file, line, _ := runtime.Caller(2)
	registry.Default().Register(testcase.Info{
		Name:        name,
		Description: description,
		File:        file,
		Line:        line,
		Case:        tc,
	})
}

// That captures v as the left operand of a comparison.
func That(v any) expr.Pending {
	return expr.That(v)
}

// Approx wraps v for tolerant comparison.
func Approx[N operand.Number](v N) Approximation {
	return operand.Approx(v)
}

// Main runs the command line against the registered tests and
// exits with its status.
func Main() {
	os.Exit(Run(os.Args[1:]...))
}

// Run runs the command line with args against the registered
// tests and returns the exit code.
func Run(args ...string) int {
	return cli.Execute(context.Background(), registry.Default(),
		args, os.Stdout, os.Stderr)
}
