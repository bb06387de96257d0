package collector

import (
	"context"

	"github.com/xping/xping-go/telemetry"
)

// noopCollector is the null-object Collector substituted when the SDK is
// disabled or configuration fails validation. Every method is a no-op so
// calling code carries no disabled-path branches. RecordTest bypasses
// counting entirely: stats stay at zero and overhead stays near zero.
type noopCollector struct{}

// NewNoop creates the no-op collector.
func NewNoop() Collector {
	return noopCollector{}
}

func (noopCollector) RecordTest(*telemetry.TestExecution) error { return nil }

func (noopCollector) Drain() []*telemetry.TestExecution { return nil }

func (noopCollector) Stats(context.Context) (telemetry.CollectorStats, error) {
	return telemetry.CollectorStats{}, nil
}

func (noopCollector) OnBufferFull(func()) {}

func (noopCollector) Close() error { return nil }
