package runner

import (
	"time"

	"digital.vasic.verify/pkg/logging"
	"digital.vasic.verify/pkg/metrics"
	"digital.vasic.verify/pkg/report"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithName sets the run name passed to reporters.
func WithName(name string) RunnerOption {
	return func(r *DefaultRunner) {
		r.name = name
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReporter sets the reporter that receives run events.
func WithReporter(rep report.Reporter) RunnerOption {
	return func(r *DefaultRunner) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.RunMetrics) RunnerOption {
	return func(r *DefaultRunner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithTimeout bounds each test body. Zero waits forever.
func WithTimeout(timeout time.Duration) RunnerOption {
	return func(r *DefaultRunner) {
		r.timeout = timeout
	}
}

// WithStaleThreshold enables progress-based liveness: a body
// that reports no progress for longer than d is timed out.
// Zero disables the check.
func WithStaleThreshold(d time.Duration) RunnerOption {
	return func(r *DefaultRunner) {
		r.staleThreshold = d
	}
}

// WithAbortAfter stops the run once n tests did not pass.
// Zero never aborts.
func WithAbortAfter(n int) RunnerOption {
	return func(r *DefaultRunner) {
		r.abortAfter = n
	}
}

// WithStopOnInterrupt controls whether a test crashed by
// SIGINT stops the run. The default is true.
func WithStopOnInterrupt(stop bool) RunnerOption {
	return func(r *DefaultRunner) {
		r.stopOnInterrupt = stop
	}
}

// WithPreHook adds a hook run before each test body. A
// failing pre-hook marks the test excepted without running
// it.
func WithPreHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.preHooks = append(r.preHooks, h)
	}
}

// WithPostHook adds a hook run after each test. Errors are
// logged as warnings.
func WithPostHook(h Hook) RunnerOption {
	return func(r *DefaultRunner) {
		r.postHooks = append(r.postHooks, h)
	}
}
