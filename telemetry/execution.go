package telemetry

import (
	"time"

	"github.com/xping/xping-go/identity"
)

// RetryInfo records retry metadata for a flaky or explicitly retried test.
type RetryInfo struct {
	Attempt     int  `json:"attempt"`      // 1-based attempt number
	MaxAttempts int  `json:"max_attempts"` // configured retry ceiling, 0 if unknown
	Retried     bool `json:"retried"`      // true for attempts after the first
}

// ExecutionContext records where in the run a test executed: which worker
// ran it, its position in the suite, and what ran before it on the same
// worker. Position correlation is how the backend detects order-dependent
// failures.
type ExecutionContext struct {
	WorkerID            string        `json:"worker_id"`
	PositionInSuite     int           `json:"position_in_suite"` // 1-based, per worker
	GlobalPosition      int64         `json:"global_position"`   // best-effort across workers
	ConcurrentWorkers   int           `json:"concurrent_workers"`
	PreviousTest        string        `json:"previous_test,omitempty"`
	PreviousFingerprint string        `json:"previous_fingerprint,omitempty"`
	PreviousOutcome     TestOutcome   `json:"previous_outcome,omitempty"`
	SuiteElapsed        time.Duration `json:"suite_elapsed_ns"`
}

// TestExecution is one completed test's record. It is created by the
// adapter when the test finishes and is immutable thereafter: the
// collector owns it until drained, then the uploader owns it for the
// duration of one upload attempt.
type TestExecution struct {
	ExecutionID string                `json:"execution_id"` // unique per run
	Identity    identity.TestIdentity `json:"identity"`

	Outcome    TestOutcome   `json:"outcome"`
	Duration   time.Duration `json:"duration_ns"`
	StartedAt  time.Time     `json:"started_at"`  // UTC
	FinishedAt time.Time     `json:"finished_at"` // UTC

	// Failure detail. The hashes let the backend group recurring failures
	// without comparing message content directly.
	ErrorMessage   string `json:"error_message,omitempty"`
	StackTrace     string `json:"stack_trace,omitempty"`
	ErrorHash      string `json:"error_hash,omitempty"`
	StackTraceHash string `json:"stack_trace_hash,omitempty"`

	Retry   *RetryInfo        `json:"retry,omitempty"`
	Context *ExecutionContext `json:"context,omitempty"`
}
