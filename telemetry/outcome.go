// Package telemetry defines the data model carried through the pipeline:
// test execution records, the session envelope they are uploaded in, the
// captured environment, and the result/stats value types exchanged
// between the collector, uploader and orchestrator.
package telemetry

// TestOutcome is the terminal state of one test execution.
type TestOutcome string

const (
	OutcomePassed       TestOutcome = "passed"
	OutcomeFailed       TestOutcome = "failed"
	OutcomeSkipped      TestOutcome = "skipped"
	OutcomeInconclusive TestOutcome = "inconclusive"
	OutcomeCancelled    TestOutcome = "cancelled"
)

// IsTerminalFailure reports whether the outcome represents a failure the
// backend should group for failure-pattern analysis.
func (o TestOutcome) IsTerminalFailure() bool {
	return o == OutcomeFailed || o == OutcomeCancelled
}

// Valid reports whether the outcome is one of the known values.
func (o TestOutcome) Valid() bool {
	switch o {
	case OutcomePassed, OutcomeFailed, OutcomeSkipped, OutcomeInconclusive, OutcomeCancelled:
		return true
	}
	return false
}
