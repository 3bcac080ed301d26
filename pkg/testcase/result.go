package testcase

import (
	"time"

	"github.com/google/uuid"

	"digital.vasic.verify/pkg/assertion"
)

// Status is the classified outcome of one test.
type Status string

// Status constants for test outcomes.
const (
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
	StatusExcepted Status = "excepted"
	StatusCrashed  Status = "crashed"
	StatusTimedOut Status = "timed_out"
	StatusSkipped  Status = "skipped"
)

// Result captures the outcome of a single test execution.
type Result struct {
	// Name is the test name.
	Name string `json:"name"`

	// Description is the test description.
	Description string `json:"description,omitempty"`

	// File is the source file of the registration.
	File string `json:"file"`

	// Line is the source line of the registration.
	Line int `json:"line"`

	// Status is one of the Status constants.
	Status Status `json:"status"`

	// Signal names the fault for crashed tests, e.g.
	// "SIGSEGV".
	Signal string `json:"signal,omitempty"`

	// Error holds the panic value or the reason for a
	// timeout.
	Error string `json:"error,omitempty"`

	// Stack is the goroutine stack at the point of a panic.
	Stack string `json:"stack,omitempty"`

	// AssertionsPassed counts passing assertions.
	AssertionsPassed int `json:"assertions_passed"`

	// AssertionsFailed counts failing assertions.
	AssertionsFailed int `json:"assertions_failed"`

	// Failures holds the failed assertion results.
	Failures []assertion.Result `json:"failures,omitempty"`

	// StartTime is when the body started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the outcome was classified.
	EndTime time.Time `json:"end_time"`

	// Duration is the wall-clock execution time.
	Duration time.Duration `json:"duration"`
}

// NewResult creates a Result for info with the start time set.
func NewResult(info Info) *Result {
	return &Result{
		Name:        info.Name,
		Description: info.Description,
		File:        info.File,
		Line:        info.Line,
		StartTime:   time.Now(),
	}
}

// Finish stamps the end time and duration.
func (r *Result) Finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Passed returns true if the test passed.
func (r *Result) Passed() bool {
	return r.Status == StatusPassed
}

// Summary aggregates the outcomes of one run.
type Summary struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Name is the name of the test binary or suite.
	Name string `json:"name"`

	// StartTime is when the run began.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run finished.
	EndTime time.Time `json:"end_time"`

	// Duration is the wall-clock run time.
	Duration time.Duration `json:"duration"`

	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Excepted int `json:"excepted"`
	Crashed  int `json:"crashed"`
	TimedOut int `json:"timed_out"`
	Skipped  int `json:"skipped"`

	// AssertionsPassed counts passing assertions across the
	// run.
	AssertionsPassed int `json:"assertions_passed"`

	// AssertionsFailed counts failing assertions across the
	// run.
	AssertionsFailed int `json:"assertions_failed"`

	// Interrupted is set when the run stopped early on an
	// interrupt or cancellation.
	Interrupted bool `json:"interrupted,omitempty"`

	// Aborted is set when the run stopped after too many
	// failed tests.
	Aborted bool `json:"aborted,omitempty"`

	// Results holds every test outcome in run order.
	Results []*Result `json:"results"`
}

// NewSummary creates an empty Summary with a fresh run ID.
func NewSummary(name string) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		Name:      name,
		StartTime: time.Now(),
		Results:   []*Result{},
	}
}

// Add folds a test result into the summary.
func (s *Summary) Add(r *Result) {
	s.Results = append(s.Results, r)
	s.Total++
	s.AssertionsPassed += r.AssertionsPassed
	s.AssertionsFailed += r.AssertionsFailed

	switch r.Status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
	case StatusExcepted:
		s.Excepted++
	case StatusCrashed:
		s.Crashed++
	case StatusTimedOut:
		s.TimedOut++
	case StatusSkipped:
		s.Skipped++
	}
}

// Finish stamps the end time and duration.
func (s *Summary) Finish() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// Unsuccessful returns the number of tests that did not pass.
func (s *Summary) Unsuccessful() int {
	return s.Total - s.Passed
}

// Succeeded returns true if every test passed.
func (s *Summary) Succeeded() bool {
	return s.Unsuccessful() == 0
}

// ExitCode returns 0 when every test passed and 1 otherwise.
func (s *Summary) ExitCode() int {
	if s.Succeeded() {
		return 0
	}
	return 1
}
