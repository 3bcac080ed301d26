package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type testStatus struct {
	test   string
	status string
}

type testResult struct {
	test   string
	result string
}

// PrometheusMetrics implements RunMetrics with in-memory
// counters and writes them in the Prometheus text exposition
// format. It is safe for concurrent use.
type PrometheusMetrics struct {
	mu         sync.Mutex
	executions map[testStatus]int
	assertions map[testResult]int
	durations  map[string][]time.Duration
	runTotal   int
	active     int
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		executions: make(map[testStatus]int),
		assertions: make(map[testResult]int),
		durations:  make(map[string][]time.Duration),
	}
}

// RecordTest counts a finished test and keeps its duration.
func (m *PrometheusMetrics) RecordTest(
	test, status string,
	duration time.Duration,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executions[testStatus{test, status}]++
	m.durations[test] = append(m.durations[test], duration)
}

// RecordAssertion counts an assertion by outcome.
func (m *PrometheusMetrics) RecordAssertion(test string, passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assertions[testResult{test, result}]++
}

// IncrementRunTotal counts a finished run.
func (m *PrometheusMetrics) IncrementRunTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runTotal++
}

// SetActiveTests sets the running-tests gauge.
func (m *PrometheusMetrics) SetActiveTests(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = count
}

// ExecutionCount returns the count for a test and status.
func (m *PrometheusMetrics) ExecutionCount(test, status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executions[testStatus{test, status}]
}

// AssertionCount returns the count for a test and outcome
// ("passed" or "failed").
func (m *PrometheusMetrics) AssertionCount(test, result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assertions[testResult{test, result}]
}

// RunTotal returns the total number of runs.
func (m *PrometheusMetrics) RunTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runTotal
}

// ActiveTests returns the running-tests gauge.
func (m *PrometheusMetrics) ActiveTests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// WriteText writes every metric in the Prometheus text
// exposition format, series sorted by label values.
func (m *PrometheusMetrics) WriteText(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder

	writeHeader(&b, "verify_tests_total", "counter",
		"Finished tests by status.")
	execs := make([]testStatus, 0, len(m.executions))
	for k := range m.executions {
		execs = append(execs, k)
	}
	sort.Slice(execs, func(i, j int) bool {
		if execs[i].test != execs[j].test {
			return execs[i].test < execs[j].test
		}
		return execs[i].status < execs[j].status
	})
	for _, k := range execs {
		fmt.Fprintf(&b, "verify_tests_total{test=%q,status=%q} %d\n",
			k.test, k.status, m.executions[k])
	}

	writeHeader(&b, "verify_assertions_total", "counter",
		"Evaluated assertions by result.")
	asserts := make([]testResult, 0, len(m.assertions))
	for k := range m.assertions {
		asserts = append(asserts, k)
	}
	sort.Slice(asserts, func(i, j int) bool {
		if asserts[i].test != asserts[j].test {
			return asserts[i].test < asserts[j].test
		}
		return asserts[i].result < asserts[j].result
	})
	for _, k := range asserts {
		fmt.Fprintf(&b, "verify_assertions_total{test=%q,result=%q} %d\n",
			k.test, k.result, m.assertions[k])
	}

	writeHeader(&b, "verify_test_duration_seconds", "summary",
		"Test execution time.")
	tests := make([]string, 0, len(m.durations))
	for k := range m.durations {
		tests = append(tests, k)
	}
	sort.Strings(tests)
	for _, test := range tests {
		var sum time.Duration
		for _, d := range m.durations[test] {
			sum += d
		}
		fmt.Fprintf(&b, "verify_test_duration_seconds_sum{test=%q} %g\n",
			test, sum.Seconds())
		fmt.Fprintf(&b, "verify_test_duration_seconds_count{test=%q} %d\n",
			test, len(m.durations[test]))
	}

	writeHeader(&b, "verify_runs_total", "counter",
		"Finished runs.")
	fmt.Fprintf(&b, "verify_runs_total %d\n", m.runTotal)

	writeHeader(&b, "verify_active_tests", "gauge",
		"Tests currently running.")
	fmt.Fprintf(&b, "verify_active_tests %d\n", m.active)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func writeHeader(b *strings.Builder, name, kind, help string) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}
