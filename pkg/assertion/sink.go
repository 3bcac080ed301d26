package assertion

import "sync"

// Sink receives assertion results.
type Sink interface {
	Record(r Result)
}

// Listener is notified of every result a Collector accepts.
type Listener func(r Result)

// Collector is the Sink scoped to one test. It counts passed
// and failed assertions, keeps the failed results and
// forwards everything to its listener. Once sealed it drops
// further results, so a worker abandoned after a fault cannot
// leak results into a later test.
type Collector struct {
	mu       sync.Mutex
	listener Listener
	passed   int
	failed   int
	failures []Result
	sealed   bool
}

// NewCollector creates a Collector forwarding to listener,
// which may be nil.
func NewCollector(listener Listener) *Collector {
	return &Collector{listener: listener}
}

// Record accepts a result unless the collector is sealed. The
// listener runs under the collector's lock, so once Seal
// returns no forward is in flight. It must not call back into
// the collector.
func (c *Collector) Record(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return
	}
	if r.Passed {
		c.passed++
	} else {
		c.failed++
		c.failures = append(c.failures, r)
	}
	if c.listener != nil {
		c.listener(r)
	}
}

// Counts returns the number of passed and failed assertions.
func (c *Collector) Counts() (passed, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passed, c.failed
}

// Failures returns a copy of the failed results.
func (c *Collector) Failures() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.failures))
	copy(out, c.failures)
	return out
}

// Seal stops the collector from accepting results. Safe to
// call multiple times.
func (c *Collector) Seal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
}

// Sealed reports whether Seal has been called.
func (c *Collector) Sealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}
