package telemetry_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xping/xping-go/telemetry"
)

func TestNewSession(t *testing.T) {
	s := telemetry.NewSession()

	assert.NotEmpty(t, s.SessionID)
	assert.False(t, s.StartedAt.IsZero())
	assert.Nil(t, s.FinishedAt)
	assert.Empty(t, s.Executions)

	other := telemetry.NewSession()
	assert.NotEqual(t, s.SessionID, other.SessionID)
}

func TestSession_Envelope(t *testing.T) {
	s := telemetry.NewSession()
	s.ExpectedTestCount = 42
	s.Executions = []*telemetry.TestExecution{
		{ExecutionID: "resident", Outcome: telemetry.OutcomePassed},
	}

	batch := []*telemetry.TestExecution{
		{ExecutionID: "b1", Outcome: telemetry.OutcomePassed},
		{ExecutionID: "b2", Outcome: telemetry.OutcomeFailed},
	}
	env := s.Envelope(batch)

	assert.Equal(t, s.SessionID, env.SessionID)
	assert.Equal(t, s.StartedAt, env.StartedAt)
	assert.Equal(t, s.Environment, env.Environment)
	assert.Equal(t, 42, env.ExpectedTestCount)
	assert.Equal(t, batch, env.Executions)

	// The envelope is a detached clone; the session keeps its own slice.
	require.Len(t, s.Executions, 1)
	assert.Equal(t, "resident", s.Executions[0].ExecutionID)
}

func TestSession_FinishIsIdempotent(t *testing.T) {
	s := telemetry.NewSession()

	s.Finish()
	require.NotNil(t, s.FinishedAt)
	first := *s.FinishedAt

	time.Sleep(time.Millisecond)
	s.Finish()
	assert.Equal(t, first, *s.FinishedAt, "the first finish timestamp wins")
}

func TestCaptureEnvironment(t *testing.T) {
	info := telemetry.CaptureEnvironment()

	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Architecture)
	assert.Equal(t, runtime.Version(), info.RuntimeVersion)
	assert.Equal(t, runtime.NumCPU(), info.LogicalCPUs)
	assert.NotEmpty(t, info.SDKVersion)
	assert.NotEmpty(t, info.Hostname)
	assert.Positive(t, info.TotalMemoryMB)
}

func TestCaptureEnvironment_CIDetection(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, telemetry.CaptureEnvironment().CI)
}

func TestOutcome(t *testing.T) {
	assert.True(t, telemetry.OutcomeFailed.IsTerminalFailure())
	assert.True(t, telemetry.OutcomeCancelled.IsTerminalFailure())
	assert.False(t, telemetry.OutcomePassed.IsTerminalFailure())
	assert.False(t, telemetry.OutcomeSkipped.IsTerminalFailure())
	assert.False(t, telemetry.OutcomeInconclusive.IsTerminalFailure())

	assert.True(t, telemetry.OutcomePassed.Valid())
	assert.True(t, telemetry.OutcomeCancelled.Valid())
	assert.False(t, telemetry.TestOutcome("exploded").Valid())
}
