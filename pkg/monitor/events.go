package monitor

import (
	"time"
)

// EventType represents the type of run event.
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventTestStarted EventType = "test_started"
	EventAssertion   EventType = "assertion"
	EventTestEnded   EventType = "test_ended"
	EventRunEnded    EventType = "run_ended"
)

// TestEvent represents a lifecycle event during a run.
type TestEvent struct {
	Type       EventType     `json:"type"`
	RunID      string        `json:"run_id,omitempty"`
	Test       string        `json:"test,omitempty"`
	Location   string        `json:"location,omitempty"`
	Status     string        `json:"status,omitempty"`
	Expression string        `json:"expression,omitempty"`
	Expanded   string        `json:"expanded,omitempty"`
	Passed     bool          `json:"passed,omitempty"`
	Signal     string        `json:"signal,omitempty"`
	Message    string        `json:"message,omitempty"`
	Total      int           `json:"total,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
