package monitor

import (
	"sync"
	"time"

	"digital.vasic.verify/pkg/testcase"
)

// Run statuses shown on the dashboard.
const (
	RunRunning   = "running"
	RunPassed    = "passed"
	RunFailed    = "failed"
	statePending = "pending"
	stateRunning = "running"
)

// DashboardData provides a real-time snapshot of run state.
type DashboardData struct {
	mu        sync.RWMutex
	RunID     string               `json:"run_id"`
	StartTime time.Time            `json:"start_time"`
	Status    string               `json:"status"`
	Expected  int                  `json:"expected"`
	Tests     map[string]TestState `json:"tests"`
	Summary   DashboardSummary     `json:"summary"`
}

// TestState represents the current state of a test in the
// dashboard.
type TestState struct {
	Name       string        `json:"name"`
	Location   string        `json:"location"`
	Status     string        `json:"status"`
	Assertions int           `json:"assertions"`
	Failures   int           `json:"failures"`
	StartTime  *time.Time    `json:"start_time,omitempty"`
	EndTime    *time.Time    `json:"end_time,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Crashed  int     `json:"crashed"`
	Running  int     `json:"running"`
	Pending  int     `json:"pending"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{
		RunID:     runID,
		StartTime: time.Now(),
		Status:    RunRunning,
		Tests:     make(map[string]TestState),
	}
}

// UpdateFromEvent updates dashboard state from a run event.
func (d *DashboardData) UpdateFromEvent(event TestEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch event.Type {
	case EventRunStarted:
		d.RunID = event.RunID
		d.StartTime = event.Timestamp
		d.Status = RunRunning
		d.Expected = event.Total
		d.Tests = make(map[string]TestState)
	case EventRunEnded:
		d.Status = event.Status
	default:
		d.updateTest(event)
	}
	d.recalcSummary()
}

func (d *DashboardData) updateTest(event TestEvent) {
	now := event.Timestamp
	state, exists := d.Tests[event.Test]
	if !exists {
		state = TestState{Name: event.Test, Status: statePending}
	}

	switch event.Type {
	case EventTestStarted:
		state.Status = stateRunning
		state.Location = event.Location
		state.StartTime = &now
	case EventAssertion:
		state.Assertions++
		if !event.Passed {
			state.Failures++
			state.Message = event.Message
		}
	case EventTestEnded:
		state.Status = event.Status
		state.EndTime = &now
		state.Duration = event.Duration
		if event.Message != "" {
			state.Message = event.Message
		}
	}

	d.Tests[event.Test] = state
}

func (d *DashboardData) recalcSummary() {
	s := DashboardSummary{}
	for _, t := range d.Tests {
		s.Total++
		switch testcase.Status(t.Status) {
		case testcase.StatusPassed:
			s.Passed++
		case testcase.StatusFailed, testcase.StatusExcepted,
			testcase.StatusTimedOut:
			s.Failed++
		case testcase.StatusCrashed:
			s.Crashed++
		case stateRunning:
			s.Running++
		}
	}
	if d.Expected > s.Total {
		s.Pending = d.Expected - s.Total
		s.Total = d.Expected
	}
	if completed := s.Passed + s.Failed + s.Crashed; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	s.Elapsed = time.Since(d.StartTime).Round(time.Millisecond).String()
	d.Summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() DashboardData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DashboardData{
		RunID:     d.RunID,
		StartTime: d.StartTime,
		Status:    d.Status,
		Expected:  d.Expected,
		Tests:     cloneTests(d.Tests),
		Summary:   d.Summary,
	}
}

func cloneTests(in map[string]TestState) map[string]TestState {
	out := make(map[string]TestState, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// SetStatus sets the overall run status.
func (d *DashboardData) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Status = status
}

// BuildDashboardData creates a DashboardData snapshot from an
// EventCollector by replaying all collected events.
func BuildDashboardData(
	collector *EventCollector,
) *DashboardData {
	data := NewDashboardData("snapshot")
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
