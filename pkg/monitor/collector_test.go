package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/report"
	"digital.vasic.verify/pkg/testcase"
)

// feedRun drives rep through a run of one passing and one
// crashing test.
func feedRun(rep report.Reporter) {
	ok := testcase.Info{Name: "ok", File: "a.go", Line: 3}
	bad := testcase.Info{Name: "bad", File: "a.go", Line: 9}

	rep.RunStarted(report.RunInfo{
		RunID: "run-1", Name: "suite", Total: 2,
		StartTime: time.Now(),
	})

	rep.TestStarted(ok)
	rep.AssertionEnded(ok, assertion.Result{
		Macro: "CHECK", Expression: "x == 1",
		Expanded: "1 == 1", Passed: true, File: "a.go", Line: 4,
	})
	passed := testcase.NewResult(ok)
	passed.Status = testcase.StatusPassed
	passed.AssertionsPassed = 1
	rep.TestEnded(ok, passed)

	rep.TestStarted(bad)
	crashed := testcase.NewResult(bad)
	crashed.Status = testcase.StatusCrashed
	crashed.Signal = "SIGSEGV"
	crashed.Error = "nil pointer dereference"
	rep.TestEnded(bad, crashed)

	summary := testcase.NewSummary("suite")
	summary.Add(passed)
	summary.Add(crashed)
	rep.RunEnded(summary)
}

func TestEventCollector_Emit(t *testing.T) {
	c := NewEventCollector()

	var received []TestEvent
	var mu sync.Mutex
	c.OnEvent(func(e TestEvent) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	c.Emit(TestEvent{Type: EventTestStarted, Test: "t"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, EventTestStarted, received[0].Type)
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestEventCollector_Reporter(t *testing.T) {
	c := NewEventCollector()
	feedRun(c)

	events := c.Events()
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
		assert.Equal(t, "run-1", e.RunID)
	}
	assert.Equal(t, []EventType{
		EventRunStarted,
		EventTestStarted, EventAssertion, EventTestEnded,
		EventTestStarted, EventTestEnded,
		EventRunEnded,
	}, types)

	crash := events[5]
	assert.Equal(t, "bad", crash.Test)
	assert.Equal(t, "crashed", crash.Status)
	assert.Equal(t, "SIGSEGV", crash.Signal)
	assert.Equal(t, "a.go:9", crash.Location)

	assert.Equal(t, "failed", events[6].Status)
	assert.Equal(t, 2, events[6].Total)
}

func TestEventCollector_Stats(t *testing.T) {
	c := NewEventCollector()
	feedRun(c)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Crashed)
	assert.Equal(t, 1, stats.AssertionsPassed)
	assert.Zero(t, stats.AssertionsFailed)
}

func TestEventCollector_RunStartedResetsStats(t *testing.T) {
	c := NewEventCollector()
	feedRun(c)
	c.RunStarted(report.RunInfo{RunID: "run-2"})

	assert.Zero(t, c.Stats().Total)
	events := c.Events()
	assert.Equal(t, "run-2", events[len(events)-1].RunID)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	feedRun(c)
	c.Reset()

	assert.Empty(t, c.Events())
	assert.Zero(t, c.Stats().Total)
}

func TestEventCollector_Concurrent(t *testing.T) {
	c := NewEventCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Emit(TestEvent{Type: EventTestEnded, Status: "passed"})
		}()
	}
	wg.Wait()

	assert.Len(t, c.Events(), 50)
	assert.Equal(t, 50, c.Stats().Passed)
}

func testInfo(name string) testcase.Info {
	return testcase.Info{Name: name, File: "a.go", Line: 1}
}
