// Package tracker records ordering and parallelization context for test
// executions: per-worker position in suite, best-effort global position,
// the previous test on the same worker, and suite elapsed time.
//
// Test frameworks call in concurrently from many workers; all state is
// held in per-worker slots so no caller-side locking is ever required.
// Within a single worker key ordering is strict; across workers the
// global position is a best-effort counter under concurrent claim.
package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/xping/xping-go/telemetry"
)

// TestSlot is the ordering context claimed for one test attempt.
type TestSlot struct {
	PositionInSuite     int
	GlobalPosition      int64
	ConcurrentWorkers   int
	PreviousTest        string
	PreviousFingerprint string
	PreviousOutcome     telemetry.TestOutcome
	SuiteElapsed        time.Duration
}

// previousTest is the completed-test tuple a worker hands to its next test.
type previousTest struct {
	name        string
	fingerprint string
	outcome     telemetry.TestOutcome
}

// workerState is only ever mutated by calls carrying the same worker key.
// Test frameworks run at most one test at a time per worker, so the
// fields need no locking; the map holding the states does.
type workerState struct {
	position  int // 1-based position of the worker's current test
	globalPos int64
	current   string
	previous  previousTest
}

// Tracker tracks execution ordering across concurrent workers.
type Tracker struct {
	workers sync.Map // worker id -> *workerState

	workerCount    atomic.Int64
	globalPosition atomic.Int64

	// suiteStart is the monotonic-clock capture of the first BeginTest,
	// in nanoseconds since suiteBase. 0 is the "not started" sentinel;
	// the first CompareAndSwap winner sets it exactly once.
	suiteStart atomic.Int64
	suiteBase  time.Time
}

// New creates a tracker. suiteBase anchors elapsed-time computation and
// is captured eagerly so the monotonic clock reading survives wall-clock
// adjustments during the run.
func New() *Tracker {
	return &Tracker{suiteBase: time.Now()}
}

// BeginTest claims the ordering slot for a test attempt.
//
// Attempt 1 claims the worker's next position and a new global position.
// Attempts >1 (retries) reuse the worker's existing slot: a flaky test
// retried three times occupies one position, so the next distinct test's
// position is previous+1, not previous+3. Skewed positions would corrupt
// position-based failure correlation on the backend.
func (t *Tracker) BeginTest(workerID, testName string, attempt int) TestSlot {
	t.markStarted()

	state := t.workerFor(workerID)

	if attempt <= 1 || state.position == 0 || state.current != testName {
		state.position++
		state.current = testName
		state.globalPos = t.globalPosition.Add(1)
	}

	return TestSlot{
		PositionInSuite:     state.position,
		GlobalPosition:      state.globalPos,
		ConcurrentWorkers:   int(t.workerCount.Load()),
		PreviousTest:        state.previous.name,
		PreviousFingerprint: state.previous.fingerprint,
		PreviousOutcome:     state.previous.outcome,
		SuiteElapsed:        t.SuiteElapsed(),
	}
}

// CompleteTest records the finished test as the worker's previous-test
// tuple, picked up by the worker's next BeginTest.
func (t *Tracker) CompleteTest(workerID, testName, fingerprint string, outcome telemetry.TestOutcome) {
	state := t.workerFor(workerID)
	state.previous = previousTest{name: testName, fingerprint: fingerprint, outcome: outcome}
}

// SuiteElapsed returns time since the first BeginTest, or 0 if no test
// has started.
func (t *Tracker) SuiteElapsed() time.Duration {
	start := t.suiteStart.Load()
	if start == 0 {
		return 0
	}
	return time.Since(t.suiteBase) - time.Duration(start)
}

// ConcurrentWorkers returns the number of distinct worker keys seen.
func (t *Tracker) ConcurrentWorkers() int {
	return int(t.workerCount.Load())
}

// GlobalPosition returns the current best-effort global test counter.
func (t *Tracker) GlobalPosition() int64 {
	return t.globalPosition.Load()
}

// Clear resets all counters and worker state to initial values. Used
// between independent run simulations (testing the SDK in-process).
func (t *Tracker) Clear() {
	t.workers.Range(func(key, _ any) bool {
		t.workers.Delete(key)
		return true
	})
	t.workerCount.Store(0)
	t.globalPosition.Store(0)
	t.suiteStart.Store(0)
	t.suiteBase = time.Now()
}

// markStarted sets the suite start offset exactly once, immune to races
// from multiple workers arriving simultaneously.
func (t *Tracker) markStarted() {
	if t.suiteStart.Load() != 0 {
		return
	}
	// Offset is since suiteBase; +1 keeps a 0ns offset from colliding
	// with the sentinel.
	offset := int64(time.Since(t.suiteBase)) + 1
	t.suiteStart.CompareAndSwap(0, offset)
}

func (t *Tracker) workerFor(workerID string) *workerState {
	if state, ok := t.workers.Load(workerID); ok {
		return state.(*workerState)
	}
	state, loaded := t.workers.LoadOrStore(workerID, &workerState{})
	if !loaded {
		t.workerCount.Add(1)
	}
	return state.(*workerState)
}
