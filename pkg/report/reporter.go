// Package report turns run events into reports: the Catch
// style XML document, JSON, colored console output, a
// Markdown summary and its HTML rendering.
package report

import (
	"time"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/testcase"
)

// RunInfo describes a run as it starts.
type RunInfo struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name"`
	Total     int       `json:"total"`
	StartTime time.Time `json:"start_time"`
}

// Reporter receives the events of a run in order: RunStarted,
// then per test TestStarted, any number of AssertionEnded and
// TestEnded, then RunEnded.
type Reporter interface {
	// RunStarted is called once before the first test.
	RunStarted(run RunInfo)

	// TestStarted is called before a test body runs.
	TestStarted(info testcase.Info)

	// AssertionEnded is called for every recorded assertion.
	AssertionEnded(info testcase.Info, r assertion.Result)

	// TestEnded is called with the classified outcome.
	TestEnded(info testcase.Info, r *testcase.Result)

	// RunEnded is called once with the final summary.
	RunEnded(s *testcase.Summary)
}

// outcomeText describes why a test ended without passing
// through its assertions, prefixed with the signal for
// crashes.
func outcomeText(res *testcase.Result) string {
	if res.Status == testcase.StatusCrashed && res.Signal != "" &&
		res.Error != "received "+res.Signal {
		return res.Signal + ": " + res.Error
	}
	return res.Error
}

// Nop is a Reporter that ignores every event.
type Nop struct{}

func (Nop) RunStarted(RunInfo)                             {}
func (Nop) TestStarted(testcase.Info)                      {}
func (Nop) AssertionEnded(testcase.Info, assertion.Result) {}
func (Nop) TestEnded(testcase.Info, *testcase.Result)      {}
func (Nop) RunEnded(*testcase.Summary)                     {}

// Multi fans every event out to several reporters in order.
type Multi []Reporter

// RunStarted forwards to every reporter.
func (m Multi) RunStarted(run RunInfo) {
	for _, r := range m {
		r.RunStarted(run)
	}
}

// TestStarted forwards to every reporter.
func (m Multi) TestStarted(info testcase.Info) {
	for _, r := range m {
		r.TestStarted(info)
	}
}

// AssertionEnded forwards to every reporter.
func (m Multi) AssertionEnded(
	info testcase.Info,
	res assertion.Result,
) {
	for _, r := range m {
		r.AssertionEnded(info, res)
	}
}

// TestEnded forwards to every reporter.
func (m Multi) TestEnded(
	info testcase.Info,
	res *testcase.Result,
) {
	for _, r := range m {
		r.TestEnded(info, res)
	}
}

// RunEnded forwards to every reporter.
func (m Multi) RunEnded(s *testcase.Summary) {
	for _, r := range m {
		r.RunEnded(s)
	}
}
