// Package runner provides the test execution engine. Tests run
// one at a time, each inside a fault boundary, so a memory
// fault, an arithmetic fault, a signal or an uncaught panic
// ends only the test that caused it.
package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/logging"
	"digital.vasic.verify/pkg/metrics"
	"digital.vasic.verify/pkg/report"
	"digital.vasic.verify/pkg/testcase"
)

// Runner defines the interface for test execution.
type Runner interface {
	// Run executes the given tests in order and returns the
	// aggregated summary. It never stops on a test outcome
	// unless abort or interrupt handling is configured.
	Run(
		ctx context.Context,
		tests []testcase.Info,
	) *testcase.Summary

	// RunOne executes a single test inside the fault
	// boundary and returns its classified outcome.
	RunOne(
		ctx context.Context,
		info testcase.Info,
	) *testcase.Result
}

// Hook is a function invoked before or after a test body.
type Hook func(ctx context.Context, info testcase.Info) error

// DefaultRunner is the standard Runner implementation.
type DefaultRunner struct {
	name            string
	logger          logging.Logger
	reporter        report.Reporter
	metrics         metrics.RunMetrics
	timeout         time.Duration
	staleThreshold  time.Duration
	abortAfter      int
	stopOnInterrupt bool
	preHooks        []Hook
	postHooks       []Hook

	// mu is held while a worker owns the fault handlers.
	mu sync.Mutex
}

// NewRunner creates a DefaultRunner with the supplied options.
// Without options there is no timeout, no liveness check, and
// events go nowhere.
func NewRunner(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{
		name:            "verify",
		logger:          logging.NullLogger{},
		reporter:        report.Nop{},
		metrics:         metrics.NoopMetrics{},
		stopOnInterrupt: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes tests in order. Once the run is stopped by
// abort-after, an interrupt or ctx cancellation, the remaining
// tests are recorded as skipped without being reported.
func (r *DefaultRunner) Run(
	ctx context.Context,
	tests []testcase.Info,
) *testcase.Summary {
	summary := testcase.NewSummary(r.name)

	r.reporter.RunStarted(report.RunInfo{
		RunID:     summary.RunID,
		Name:      r.name,
		Total:     len(tests),
		StartTime: summary.StartTime,
	})
	r.logEvent("run_started",
		logging.RunField(summary.RunID),
		logging.IntField("tests", len(tests)),
	)

	unsuccessful := 0
	stopped := false
	for _, info := range tests {
		if !stopped && ctx.Err() != nil {
			summary.Interrupted = true
			stopped = true
		}
		if stopped {
			summary.Add(skippedResult(info))
			continue
		}

		res := r.RunOne(ctx, info)
		summary.Add(res)

		if !res.Passed() {
			unsuccessful++
		}
		switch {
		case ctx.Err() != nil,
			r.stopOnInterrupt && res.Signal == SignalInterrupt:
			summary.Interrupted = true
			stopped = true
		case r.abortAfter > 0 && unsuccessful >= r.abortAfter:
			summary.Aborted = true
			stopped = true
		}
	}

	summary.Finish()
	r.metrics.IncrementRunTotal()
	r.logEvent("run_completed",
		logging.RunField(summary.RunID),
		logging.IntField("passed", summary.Passed),
		logging.IntField("unsuccessful", summary.Unsuccessful()),
		logging.DurationField("duration", summary.Duration),
	)
	r.reporter.RunEnded(summary)
	return summary
}

// RunOne executes a single test through its lifecycle:
// pre-hooks -> body inside the fault boundary -> classify ->
// post-hooks.
func (r *DefaultRunner) RunOne(
	ctx context.Context,
	info testcase.Info,
) *testcase.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := testcase.NewResult(info)
	r.reporter.TestStarted(info)
	r.logEvent("test_started",
		logging.TestField(info.Name),
		logging.StringField("location", info.Location()),
	)

	r.metrics.SetActiveTests(1)
	defer r.metrics.SetActiveTests(0)

	for _, hook := range r.preHooks {
		if err := hook(ctx, info); err != nil {
			result.Status = testcase.StatusExcepted
			result.Error = fmt.Sprintf(
				"pre-hook failed: %v", err,
			)
			r.finish(ctx, info, result)
			return result
		}
	}

	if info.Case == nil {
		result.Status = testcase.StatusExcepted
		result.Error = "test has no body"
		r.finish(ctx, info, result)
		return result
	}

	collector := assertion.NewCollector(
		func(a assertion.Result) {
			r.metrics.RecordAssertion(info.Name, a.Passed)
			r.reporter.AssertionEnded(info, a)
		},
	)

	out := r.execute(ctx, info, collector)

	// Nothing an abandoned worker does may reach this test's
	// result or a later test.
	collector.Seal()

	result.AssertionsPassed, result.AssertionsFailed =
		collector.Counts()
	if result.AssertionsFailed > 0 {
		result.Failures = collector.Failures()
	}
	r.classify(result, out)
	r.finish(ctx, info, result)
	return result
}

// execute runs the body on a worker goroutine and waits for
// the first of: the worker reporting, a fault signal, the
// timeout, the liveness monitor or ctx cancellation. In every
// case but the first the worker is abandoned.
func (r *DefaultRunner) execute(
	ctx context.Context,
	info testcase.Info,
	collector *assertion.Collector,
) outcome {
	progress := testcase.NewProgressReporter()
	defer progress.Close()

	t := testcase.NewT(info.Name, collector, progress)

	boundary := installBoundary()
	defer boundary.Uninstall()

	var timeoutCh <-chan time.Time
	if r.timeout > 0 {
		timer := time.NewTimer(r.timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	stopLiveness, stuck := startLivenessMonitor(
		progress, r.staleThreshold, r.logger, info.Name,
	)
	defer stopLiveness()

	done := make(chan outcome, 1)
	go work(info.Case, t, done)

	select {
	case out := <-done:
		return out

	case sig := <-boundary.Signals():
		return outcome{
			kind:   outcomeSignal,
			signal: signalName(sig),
		}

	case <-timeoutCh:
		return outcome{
			kind: outcomeTimeout,
			detail: fmt.Sprintf(
				"test timed out after %v", r.timeout,
			),
		}

	case <-stuck:
		return outcome{
			kind: outcomeStuck,
			detail: fmt.Sprintf(
				"test stuck: no progress reported within %v",
				r.staleThreshold,
			),
		}

	case <-ctx.Done():
		return outcome{
			kind:   outcomeCancelled,
			detail: fmt.Sprintf("run cancelled: %v", ctx.Err()),
		}
	}
}

// work is the worker goroutine. Memory faults in the body
// become recoverable panics for its duration.
func work(
	tc testcase.TestCase,
	t *testcase.T,
	done chan<- outcome,
) {
	completed := false
	defer func() {
		if completed {
			done <- outcome{kind: outcomeCompleted}
			return
		}
		if v := recover(); v != nil {
			done <- classifyPanic(v, debug.Stack())
			return
		}
		// runtime.Goexit, usually from a fatal assertion.
		done <- outcome{kind: outcomeAborted}
	}()

	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)

	tc.Invoke(t)
	completed = true
}

// classify sets the status of result from out and the
// assertion counts already folded into it.
func (r *DefaultRunner) classify(
	result *testcase.Result,
	out outcome,
) {
	switch out.kind {
	case outcomeCompleted, outcomeAborted:
		if result.AssertionsFailed > 0 {
			result.Status = testcase.StatusFailed
		} else {
			result.Status = testcase.StatusPassed
		}

	case outcomePanic:
		result.Status = testcase.StatusExcepted
		result.Error = out.detail
		result.Stack = out.stack

	case outcomeFault:
		result.Status = testcase.StatusCrashed
		result.Signal = out.signal
		result.Error = out.detail
		result.Stack = out.stack

	case outcomeSignal:
		result.Status = testcase.StatusCrashed
		result.Signal = out.signal
		result.Error = fmt.Sprintf("received %s", out.signal)

	case outcomeTimeout, outcomeStuck:
		result.Status = testcase.StatusTimedOut
		result.Error = out.detail

	case outcomeCancelled:
		result.Status = testcase.StatusCrashed
		result.Error = out.detail
	}
}

// finish stamps the result, runs the post-hooks and emits the
// completion events.
func (r *DefaultRunner) finish(
	ctx context.Context,
	info testcase.Info,
	result *testcase.Result,
) {
	result.Finish()

	for _, hook := range r.postHooks {
		if err := hook(ctx, info); err != nil {
			r.logger.Warn("post_hook_warning",
				logging.TestField(info.Name),
				logging.ErrorField(err),
			)
		}
	}

	r.metrics.RecordTest(
		info.Name, string(result.Status), result.Duration,
	)

	switch result.Status {
	case testcase.StatusCrashed, testcase.StatusExcepted:
		r.logger.Error("test_crashed",
			logging.TestField(info.Name),
			logging.StatusField(string(result.Status)),
			logging.StringField("signal", result.Signal),
			logging.StringField("error", result.Error),
		)
	case testcase.StatusTimedOut:
		r.logger.Error("test_timeout",
			logging.TestField(info.Name),
			logging.StringField("error", result.Error),
		)
	default:
		r.logEvent("test_completed",
			logging.TestField(info.Name),
			logging.StatusField(string(result.Status)),
			logging.IntField(
				"assertions_failed", result.AssertionsFailed,
			),
			logging.DurationField("duration", result.Duration),
		)
	}

	r.reporter.TestEnded(info, result)
}

// skippedResult is the outcome of a test the run never
// reached.
func skippedResult(info testcase.Info) *testcase.Result {
	res := testcase.NewResult(info)
	res.Status = testcase.StatusSkipped
	res.Finish()
	return res
}

// logEvent emits a structured info entry.
func (r *DefaultRunner) logEvent(
	event string,
	fields ...logging.Field,
) {
	r.logger.Info(event, fields...)
}
