package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// TestSession is one test-run's envelope. It is created once per process,
// and on the wire each upload batch is a clone of the session header with
// that batch's executions attached.
type TestSession struct {
	SessionID   string          `json:"session_id"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	Environment EnvironmentInfo `json:"environment"`

	Executions []*TestExecution `json:"executions"`

	// ExpectedTestCount is the adapter's best guess at suite size, 0 if
	// unknown. The backend uses it to report collection completeness.
	ExpectedTestCount int `json:"expected_test_count,omitempty"`
}

// NewSession creates a session envelope with a fresh id and a captured
// environment snapshot.
func NewSession() *TestSession {
	return &TestSession{
		SessionID:   uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		Environment: CaptureEnvironment(),
	}
}

// Envelope clones the session header with the given batch of executions.
// The clone shares the immutable header fields; the original session's
// execution slice is untouched.
func (s *TestSession) Envelope(batch []*TestExecution) *TestSession {
	return &TestSession{
		SessionID:         s.SessionID,
		StartedAt:         s.StartedAt,
		FinishedAt:        s.FinishedAt,
		Environment:       s.Environment,
		Executions:        batch,
		ExpectedTestCount: s.ExpectedTestCount,
	}
}

// Finish stamps the session end time. Idempotent: the first call wins.
func (s *TestSession) Finish() {
	if s.FinishedAt == nil {
		now := time.Now().UTC()
		s.FinishedAt = &now
	}
}
