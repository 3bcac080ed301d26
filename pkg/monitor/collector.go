package monitor

import (
	"sync"
	"time"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/report"
	"digital.vasic.verify/pkg/testcase"
)

// EventCollector captures run events and timing data. It is a
// report.Reporter, so a runner feeds it like any other sink.
type EventCollector struct {
	mu       sync.RWMutex
	runID    string
	events   []TestEvent
	handlers []func(TestEvent)
	stats    CollectorStats
}

var _ report.Reporter = (*EventCollector)(nil)

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total            int           `json:"total"`
	Passed           int           `json:"passed"`
	Failed           int           `json:"failed"`
	Excepted         int           `json:"excepted"`
	Crashed          int           `json:"crashed"`
	TimedOut         int           `json:"timed_out"`
	AssertionsPassed int           `json:"assertions_passed"`
	AssertionsFailed int           `json:"assertions_failed"`
	StartTime        time.Time     `json:"start_time"`
	Duration         time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]TestEvent, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(TestEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event TestEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	if event.RunID == "" {
		event.RunID = c.runID
	}
	c.events = append(c.events, event)
	c.count(event)
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(TestEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

func (c *EventCollector) count(event TestEvent) {
	switch event.Type {
	case EventAssertion:
		if event.Passed {
			c.stats.AssertionsPassed++
		} else {
			c.stats.AssertionsFailed++
		}
	case EventTestEnded:
		c.stats.Total++
		switch testcase.Status(event.Status) {
		case testcase.StatusPassed:
			c.stats.Passed++
		case testcase.StatusFailed:
			c.stats.Failed++
		case testcase.StatusExcepted:
			c.stats.Excepted++
		case testcase.StatusCrashed:
			c.stats.Crashed++
		case testcase.StatusTimedOut:
			c.stats.TimedOut++
		}
	}
}

// RunStarted resets the statistics and emits a run event.
func (c *EventCollector) RunStarted(run report.RunInfo) {
	c.mu.Lock()
	c.runID = run.RunID
	c.stats = CollectorStats{StartTime: run.StartTime}
	if c.stats.StartTime.IsZero() {
		c.stats.StartTime = time.Now()
	}
	c.mu.Unlock()

	c.Emit(TestEvent{
		Type:    EventRunStarted,
		Message: run.Name,
		Total:   run.Total,
	})
}

// TestStarted emits a test started event.
func (c *EventCollector) TestStarted(info testcase.Info) {
	c.Emit(TestEvent{
		Type:     EventTestStarted,
		Test:     info.Name,
		Location: info.Location(),
	})
}

// AssertionEnded emits an assertion event.
func (c *EventCollector) AssertionEnded(
	info testcase.Info,
	res assertion.Result,
) {
	c.Emit(TestEvent{
		Type:       EventAssertion,
		Test:       info.Name,
		Location:   res.Location(),
		Expression: res.Original(),
		Expanded:   res.Expanded,
		Passed:     res.Passed,
		Message:    res.Message,
	})
}

// TestEnded emits a test ended event carrying the outcome.
func (c *EventCollector) TestEnded(
	info testcase.Info,
	res *testcase.Result,
) {
	c.Emit(TestEvent{
		Type:     EventTestEnded,
		Test:     info.Name,
		Location: info.Location(),
		Status:   string(res.Status),
		Passed:   res.Passed(),
		Signal:   res.Signal,
		Message:  res.Error,
		Duration: res.Duration,
	})
}

// RunEnded emits the final run event.
func (c *EventCollector) RunEnded(s *testcase.Summary) {
	status := "passed"
	if !s.Succeeded() {
		status = "failed"
	}
	c.Emit(TestEvent{
		Type:     EventRunEnded,
		Status:   status,
		Total:    s.Total,
		Duration: s.Duration,
	})
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []TestEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]TestEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.runID = ""
	c.stats = CollectorStats{StartTime: time.Now()}
}
