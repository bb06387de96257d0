// Package collector buffers completed test executions between the test
// adapters that produce them and the uploader that drains them.
//
// The buffer is a lock-free concurrent queue designed for high-contention
// append from parallel test workers with infrequent drain. No FIFO
// ordering is promised across workers; telemetry only needs "fair enough"
// ordering, and the backend orders by timestamp anyway.
package collector

import (
	"context"

	"github.com/xping/xping-go/telemetry"
)

// Collector accepts completed test-execution records, applies sampling,
// and signals when a batch is ready to drain.
type Collector interface {
	// RecordTest buffers one completed execution. Returns
	// errors.ErrCollectorDisposed after Close, errors.ErrNilExecution for
	// a nil record. Synchronous and non-blocking otherwise.
	RecordTest(execution *telemetry.TestExecution) error

	// Drain dequeues up to one batch (BatchSize items). Callers loop
	// until it returns empty. Never fails: a disposed or empty collector
	// drains to nil.
	Drain() []*telemetry.TestExecution

	// Stats returns a point-in-time counter snapshot.
	Stats(ctx context.Context) (telemetry.CollectorStats, error)

	// OnBufferFull registers the callback fired synchronously on the
	// recording goroutine whenever the buffer reaches a full batch.
	// The listener must schedule its drain elsewhere, not block here.
	OnBufferFull(fn func())

	// Close marks the collector disposed. It does NOT drain: draining
	// remaining items before Close is the caller's responsibility, so
	// that records lost by skipping the final drain are attributable to
	// the caller and not mistaken for a collector bug.
	Close() error
}
