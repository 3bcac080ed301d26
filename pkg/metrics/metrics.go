// Package metrics records run statistics and exposes them in
// the Prometheus text format.
package metrics

import "time"

// RunMetrics defines the interface for recording test metrics.
type RunMetrics interface {
	// RecordTest records one finished test.
	RecordTest(test, status string, duration time.Duration)
	// RecordAssertion records an assertion evaluation.
	RecordAssertion(test string, passed bool)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
	// SetActiveTests sets the gauge of running tests.
	SetActiveTests(count int)
}

// NoopMetrics is a no-op implementation of RunMetrics used
// when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordTest(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordAssertion(_ string, _ bool)        {}
func (NoopMetrics) IncrementRunTotal()                      {}
func (NoopMetrics) SetActiveTests(_ int)                    {}
