// Package testing provides shared fixtures for pipeline tests.
package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/xping/xping-go/config"
	"github.com/xping/xping-go/identity"
	"github.com/xping/xping-go/telemetry"
)

// TestConfig returns a valid, enabled configuration pointed at the given
// endpoint, with fast timings suitable for tests.
func TestConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()

	return &config.Config{
		Enabled:              true,
		APIEndpoint:          endpoint,
		APIKey:               "test-api-key",
		ProjectID:            "test-project",
		BatchSize:            10,
		SamplingRate:         1.0,
		FlushIntervalSeconds: 1,
		MaxRetries:           0,
		RetryDelayMS:         1,
		UploadTimeoutSeconds: 5,
		EnableCompression:    false,
	}
}

// NewExecution builds a completed execution record for the named test.
func NewExecution(t *testing.T, name string, outcome telemetry.TestOutcome) *telemetry.TestExecution {
	t.Helper()

	gen := identity.NewGenerator()
	id, err := gen.Generate(fmt.Sprintf("example.com/suite.Checkout.%s", name), "suite")
	if err != nil {
		t.Fatalf("failed to build test identity: %v", err)
	}

	finished := time.Now().UTC()
	return &telemetry.TestExecution{
		ExecutionID: uuid.NewString(),
		Identity:    id,
		Outcome:     outcome,
		Duration:    250 * time.Millisecond,
		StartedAt:   finished.Add(-250 * time.Millisecond),
		FinishedAt:  finished,
	}
}

// NewBatch builds n passing execution records with distinct identities.
func NewBatch(t *testing.T, n int) []*telemetry.TestExecution {
	t.Helper()

	batch := make([]*telemetry.TestExecution, n)
	for i := range batch {
		batch[i] = NewExecution(t, fmt.Sprintf("Case%03d", i), telemetry.OutcomePassed)
	}
	return batch
}

// NewSession wraps a batch in a session envelope.
func NewSession(t *testing.T, executions ...*telemetry.TestExecution) *telemetry.TestSession {
	t.Helper()

	s := telemetry.NewSession()
	s.Executions = executions
	return s
}
