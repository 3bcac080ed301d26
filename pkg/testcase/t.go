package testcase

import (
	"runtime"
	"sync/atomic"

	"digital.vasic.verify/pkg/assertion"
)

// T is the handle a test body uses to make assertions. It is
// bound to one test execution and must not be retained after
// the body returns.
type T struct {
	name     string
	sink     assertion.Sink
	progress *ProgressReporter
	aborted  atomic.Bool
}

// NewT creates a handle recording into sink. progress may be
// nil, in which case ReportProgress is a no-op.
func NewT(
	name string,
	sink assertion.Sink,
	progress *ProgressReporter,
) *T {
	return &T{name: name, sink: sink, progress: progress}
}

// Name returns the name of the running test.
func (t *T) Name() string { return t.name }

// Aborted reports whether a fatal assertion ended the body.
func (t *T) Aborted() bool { return t.aborted.Load() }

// Require asserts cond and ends the test body if it fails.
// cond is an expression built with That or a plain bool.
func (t *T) Require(cond any, msgAndArgs ...any) {
	t.assert(cond, assertion.ModeRequire, "Require", msgAndArgs)
}

// RequireFalse asserts that cond is false and ends the test
// body otherwise.
func (t *T) RequireFalse(cond any, msgAndArgs ...any) {
	t.assert(
		cond, assertion.ModeRequireFalse, "RequireFalse",
		msgAndArgs,
	)
}

// Check asserts cond, recording a failure but letting the
// body continue. It returns whether the assertion passed.
func (t *T) Check(cond any, msgAndArgs ...any) bool {
	return t.assert(cond, assertion.ModeCheck, "Check", msgAndArgs)
}

// CheckFalse asserts that cond is false without ending the
// body.
func (t *T) CheckFalse(cond any, msgAndArgs ...any) bool {
	return t.assert(
		cond, assertion.ModeCheckFalse, "CheckFalse", msgAndArgs,
	)
}

// Fail records an explicit failure and ends the test body.
func (t *T) Fail(msgAndArgs ...any) {
	site := assertion.Locate(1, "Fail")
	t.record(assertion.Explicit(
		assertion.ModeFail, site,
		assertion.FormatMessage(msgAndArgs...),
	))
}

// Succeed records an explicit success.
func (t *T) Succeed(msgAndArgs ...any) {
	site := assertion.Locate(1, "Succeed")
	t.record(assertion.Explicit(
		assertion.ModeSucceed, site,
		assertion.FormatMessage(msgAndArgs...),
	))
}

// ReportProgress signals that a long-running body is alive.
func (t *T) ReportProgress(msg string, data map[string]any) {
	if t.progress != nil {
		t.progress.ReportProgress(msg, data)
	}
}

func (t *T) assert(
	cond any,
	mode assertion.Mode,
	method string,
	msgAndArgs []any,
) bool {
	site := assertion.Locate(2, method)
	r := assertion.Evaluate(
		cond, mode, site,
		assertion.FormatMessage(msgAndArgs...),
	)
	t.record(r)
	return r.Passed
}

// record hands r to the sink and unwinds the body on a fatal
// failure. Deferred calls in the body still run.
func (t *T) record(r assertion.Result) {
	if t.sink != nil {
		t.sink.Record(r)
	}
	if !r.Passed && r.Fatal {
		t.aborted.Store(true)
		runtime.Goexit()
	}
}
