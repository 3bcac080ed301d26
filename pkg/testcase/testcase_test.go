package testcase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/expr"
)

// --- helpers ---

// runBody executes body on its own goroutine, as the runner
// does, and reports whether it returned normally.
func runBody(
	body func(t *T),
) (*T, *assertion.Collector, bool) {
	c := assertion.NewCollector(nil)
	tt := NewT("case", c, nil)
	done := make(chan bool)
	go func() {
		completed := false
		defer func() { done <- completed }()
		body(tt)
		completed = true
	}()
	return tt, c, <-done
}

// =====================================================================
// T
// =====================================================================

func TestT_CheckContinuesAfterFailure(t *testing.T) {
	reached := false
	tt, c, completed := runBody(func(t *T) {
		t.Check(expr.That(1).Eq(2))
		t.Check(expr.That(2).Eq(2))
		reached = true
	})

	assert.True(t, completed)
	assert.True(t, reached)
	assert.False(t, tt.Aborted())
	passed, failed := c.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
}

func TestT_RequireStopsBody(t *testing.T) {
	reached := false
	deferred := false
	tt, c, completed := runBody(func(t *T) {
		defer func() { deferred = true }()
		t.Require(expr.That(1).Eq(2))
		reached = true
	})

	assert.False(t, completed)
	assert.False(t, reached)
	assert.True(t, deferred)
	assert.True(t, tt.Aborted())
	_, failed := c.Counts()
	assert.Equal(t, 1, failed)
}

func TestT_RequirePassingContinues(t *testing.T) {
	tt, c, completed := runBody(func(t *T) {
		t.Require(expr.That(3).Gt(2))
		t.RequireFalse(expr.That(3).Lt(2))
	})

	assert.True(t, completed)
	assert.False(t, tt.Aborted())
	passed, _ := c.Counts()
	assert.Equal(t, 2, passed)
}

func TestT_RequireFalseStopsBody(t *testing.T) {
	_, c, completed := runBody(func(t *T) {
		t.RequireFalse(expr.That(2).Eq(2))
	})

	assert.False(t, completed)
	failures := c.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "REQUIRE_FALSE", failures[0].Macro)
	assert.Equal(t, "!(2 == 2)", failures[0].Expanded)
}

func TestT_FailureCarriesSource(t *testing.T) {
	x := 7
	_, c, _ := runBody(func(t *T) {
		t.Check(expr.That(x).Eq(8), "x is %d", x)
	})

	failures := c.Failures()
	require.Len(t, failures, 1)
	f := failures[0]
	assert.Equal(t, "x == 8", f.Expression)
	assert.Equal(t, "7 == 8", f.Expanded)
	assert.Equal(t, "x is 7", f.Message)
	assert.Contains(t, f.File, "testcase_test.go")
	assert.False(t, f.Fatal)
}

func TestT_PlainBoolNote(t *testing.T) {
	ok := false
	_, c, _ := runBody(func(t *T) {
		t.Check(!ok)
		t.Check(ok)
	})

	passed, failed := c.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "ok", c.Failures()[0].Expression)
}

func TestT_FailAndSucceed(t *testing.T) {
	reached := false
	tt, c, completed := runBody(func(t *T) {
		t.Succeed("warm up")
		t.Fail("giving up")
		reached = true
	})

	assert.False(t, completed)
	assert.False(t, reached)
	assert.True(t, tt.Aborted())
	passed, failed := c.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "giving up", c.Failures()[0].Message)
}

func TestT_CheckReturnsOutcome(t *testing.T) {
	_, _, _ = runBody(func(tt *T) {
		assert.True(t, tt.Check(expr.That("a").Lt("b")))
		assert.False(t, tt.CheckFalse(expr.That("a").Lt("b")))
	})
}

func TestT_ReportProgress(t *testing.T) {
	p := NewProgressReporter()
	defer p.Close()

	tt := NewT("progress", assertion.NewCollector(nil), p)
	tt.ReportProgress("step", map[string]any{"n": 1})
	assert.Equal(t, "progress", tt.Name())

	last := p.LastUpdate()
	require.NotNil(t, last)
	assert.Equal(t, "step", last.Message)

	NewT("quiet", nil, nil).ReportProgress("ignored", nil)
}

// =====================================================================
// Identity
// =====================================================================

func bodyA(t *T) {}
func bodyB(t *T) {}

func TestFunc_Identity(t *testing.T) {
	assert.Equal(t, Func(bodyA).Identity(), Func(bodyA).Identity())
	assert.NotEqual(t, Func(bodyA).Identity(), Func(bodyB).Identity())
	assert.Equal(t, "func", Func(bodyA).Identity().Kind)
	assert.Contains(t, Func(bodyA).Identity().String(), "func@0x")
}

type counterFixture struct{ n int }

func (f *counterFixture) bump(t *T) {
	f.n++
	t.Check(expr.That(f.n).Eq(1))
}

func TestMethod_FreshFixture(t *testing.T) {
	m := Method[counterFixture]((*counterFixture).bump)
	c := assertion.NewCollector(nil)
	tt := NewT("fixture", c, nil)

	m.Invoke(tt)
	m.Clone().Invoke(tt)

	passed, failed := c.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, "method", m.Identity().Kind)
}

func TestInfo(t *testing.T) {
	info := Info{Name: "a", File: "x.go", Line: 3, Case: Func(bodyA)}
	assert.Equal(t, "x.go:3", info.Location())
	assert.Equal(t, Func(bodyA).Identity(), info.Identity())
	assert.Equal(t, Identity{}, Info{}.Identity())
}

// =====================================================================
// Summary
// =====================================================================

func TestSummary_Add(t *testing.T) {
	s := NewSummary("suite")
	require.NotEmpty(t, s.RunID)

	for _, st := range []Status{
		StatusPassed, StatusPassed, StatusFailed,
		StatusExcepted, StatusCrashed, StatusTimedOut,
		StatusSkipped,
	} {
		s.Add(&Result{
			Status:           st,
			AssertionsPassed: 2,
			AssertionsFailed: 1,
		})
	}
	s.Finish()

	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Excepted)
	assert.Equal(t, 1, s.Crashed)
	assert.Equal(t, 1, s.TimedOut)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 14, s.AssertionsPassed)
	assert.Equal(t, 7, s.AssertionsFailed)
	assert.Equal(t, 5, s.Unsuccessful())
	assert.False(t, s.Succeeded())
	assert.Equal(t, 1, s.ExitCode())
	assert.False(t, s.EndTime.Before(s.StartTime))
}

func TestSummary_AllPassed(t *testing.T) {
	s := NewSummary("suite")
	assert.True(t, s.Succeeded())

	r := NewResult(Info{Name: "ok"})
	r.Status = StatusPassed
	r.Finish()
	s.Add(r)

	assert.True(t, r.Passed())
	assert.Equal(t, 0, s.ExitCode())
	assert.NotEqual(t, s.RunID, NewSummary("suite").RunID)
}

// =====================================================================
// ProgressReporter
// =====================================================================

func TestProgressReporter_ReportProgress(t *testing.T) {
	p := NewProgressReporter()
	defer p.Close()

	p.ReportProgress("scanning", map[string]any{"files": 100})

	select {
	case update := <-p.Channel():
		assert.Equal(t, "scanning", update.Message)
		assert.Equal(t, 100, update.Data["files"])
		assert.False(t, update.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected progress update on channel")
	}
}

func TestProgressReporter_BufferFull_DropsUpdate(t *testing.T) {
	p := NewProgressReporter()
	defer p.Close()

	for i := 0; i < 100; i++ {
		p.ReportProgress("fill", map[string]any{"i": i})
	}

	last := p.LastUpdate()
	require.NotNil(t, last)
	assert.Equal(t, 99, last.Data["i"])
}

func TestProgressReporter_CloseIdempotent(t *testing.T) {
	p := NewProgressReporter()
	assert.NotPanics(t, func() {
		p.Close()
		p.Close()
		p.ReportProgress("after close", nil)
	})

	_, ok := <-p.Channel()
	assert.False(t, ok)
	require.NotNil(t, p.LastUpdate())
}

func TestProgressReporter_ConcurrentAccess(t *testing.T) {
	p := NewProgressReporter()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.ReportProgress("concurrent", map[string]any{
					"writer": n,
				})
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = p.LastUpdate()
			select {
			case <-p.Channel():
			default:
			}
		}
	}()

	wg.Wait()
	p.Close()
	assert.NotNil(t, p.LastUpdate())
}
