package testcase

import (
	"sync"
	"time"
)

// ProgressUpdate is one heartbeat from a running test body.
type ProgressUpdate struct {
	// Timestamp is when the progress was reported.
	Timestamp time.Time `json:"timestamp"`

	// Message describes what the body is doing.
	Message string `json:"message"`

	// Data holds arbitrary progress values.
	Data map[string]any `json:"data,omitempty"`
}

// ProgressReporter carries heartbeats from a test body to the
// runner's liveness monitor. With a stale threshold
// configured, a body that stops reporting for longer than the
// threshold is treated as stuck; one that keeps reporting may
// run indefinitely.
type ProgressReporter struct {
	ch     chan ProgressUpdate
	mu     sync.Mutex
	last   *ProgressUpdate
	closed bool
}

// NewProgressReporter creates a reporter with a buffer of 64
// updates.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressUpdate, 64),
	}
}

// ReportProgress emits an update. It never blocks: when the
// buffer is full the update is dropped, though LastUpdate
// still reflects it.
func (p *ProgressReporter) ReportProgress(
	msg string,
	data map[string]any,
) {
	update := ProgressUpdate{
		Timestamp: time.Now(),
		Message:   msg,
		Data:      data,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &update
	if p.closed {
		return
	}

	select {
	case p.ch <- update:
	default:
	}
}

// Channel returns the stream of updates.
func (p *ProgressReporter) Channel() <-chan ProgressUpdate {
	return p.ch
}

// LastUpdate returns the most recent update, or nil.
func (p *ProgressReporter) LastUpdate() *ProgressUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Close ends the stream. Safe to call multiple times.
func (p *ProgressReporter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
}
