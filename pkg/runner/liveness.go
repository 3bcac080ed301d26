package runner

import (
	"sync"
	"time"

	"digital.vasic.verify/pkg/logging"
	"digital.vasic.verify/pkg/testcase"
)

// livenessMonitor watches a test's progress channel and flags
// the test as stuck if no progress arrives within the stale
// threshold. Long bodies that keep calling ReportProgress are
// never flagged.
type livenessMonitor struct {
	progress       *testcase.ProgressReporter
	staleThreshold time.Duration
	logger         logging.Logger
	test           string
}

// startLivenessMonitor starts the monitor goroutine. The
// returned stop function must be called once the body has
// been classified; the stuck channel is closed when the
// threshold is exceeded.
//
// If progress is nil or staleThreshold is not positive, the
// monitor is disabled: stop is a no-op and stuck is nil, which
// blocks forever in a select.
func startLivenessMonitor(
	progress *testcase.ProgressReporter,
	staleThreshold time.Duration,
	logger logging.Logger,
	test string,
) (stop func(), stuck <-chan struct{}) {
	if progress == nil || staleThreshold <= 0 {
		return func() {}, nil
	}

	m := &livenessMonitor{
		progress:       progress,
		staleThreshold: staleThreshold,
		logger:         logger,
		test:           test,
	}

	stopCh := make(chan struct{})
	stuckCh := make(chan struct{})

	go m.run(stopCh, stuckCh)

	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
	}, stuckCh
}

// run resets the stale timer on every update and closes
// stuckCh when it fires.
func (m *livenessMonitor) run(
	stopCh <-chan struct{},
	stuckCh chan<- struct{},
) {
	timer := time.NewTimer(m.staleThreshold)
	defer timer.Stop()

	progressCh := m.progress.Channel()

	for {
		select {
		case <-stopCh:
			return

		case _, ok := <-progressCh:
			if !ok {
				// Body finished; the runner will stop us.
				progressCh = nil
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(m.staleThreshold)

		case <-timer.C:
			if m.logger != nil {
				m.logger.Error(
					"test_stuck",
					logging.TestField(m.test),
					logging.DurationField(
						"stale_threshold", m.staleThreshold,
					),
				)
			}
			close(stuckCh)
			return
		}
	}
}
