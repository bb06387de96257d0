package collector

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/xping/xping-go/errors"
	"github.com/xping/xping-go/telemetry"
)

// concurrentCollector is the live Collector implementation: lock-free
// buffer, atomic counters, sampling on the way in.
type concurrentCollector struct {
	queue        *executionQueue
	batchSize    int
	samplingRate float64

	recorded atomic.Int64
	sampled  atomic.Int64
	disposed atomic.Bool

	bufferFull atomic.Pointer[func()]

	// statsMu serializes Stats readers so the recorded/sampled pair is
	// read as one snapshot; producers never take it.
	statsMu sync.Mutex
}

// New creates a collector with the given batch size and sampling rate.
// Rate >= 1.0 samples everything, <= 0.0 samples nothing.
func New(batchSize int, samplingRate float64) Collector {
	return &concurrentCollector{
		queue:        newExecutionQueue(),
		batchSize:    batchSize,
		samplingRate: samplingRate,
	}
}

func (c *concurrentCollector) RecordTest(execution *telemetry.TestExecution) error {
	if c.disposed.Load() {
		return errors.Wrap(errors.ErrCollectorDisposed, "record rejected")
	}
	if execution == nil {
		return errors.Wrap(errors.ErrNilExecution, "record rejected")
	}

	// Recorded counts every call regardless of the sampling outcome, so
	// stats expose how much the filter dropped.
	c.recorded.Add(1)

	if !c.sample() {
		return nil
	}

	c.sampled.Add(1)
	c.queue.enqueue(execution)

	if c.queue.len() >= int64(c.batchSize) {
		// Fires synchronously on the recording goroutine; listeners
		// schedule their drain asynchronously by contract.
		if fn := c.bufferFull.Load(); fn != nil {
			(*fn)()
		}
	}
	return nil
}

// sample decides whether this record passes the sampling filter. The
// draw uses math/rand/v2's lock-free global generator; sampling is not a
// security boundary, so a non-cryptographic source is fine.
func (c *concurrentCollector) sample() bool {
	if c.samplingRate >= 1.0 {
		return true
	}
	if c.samplingRate <= 0.0 {
		return false
	}
	return rand.Float64() < c.samplingRate
}

func (c *concurrentCollector) Drain() []*telemetry.TestExecution {
	if c.disposed.Load() {
		return nil
	}
	var batch []*telemetry.TestExecution
	for len(batch) < c.batchSize {
		execution, ok := c.queue.dequeue()
		if !ok {
			break
		}
		batch = append(batch, execution)
	}
	return batch
}

func (c *concurrentCollector) Stats(ctx context.Context) (telemetry.CollectorStats, error) {
	if err := ctx.Err(); err != nil {
		return telemetry.CollectorStats{}, errors.Wrap(err, "stats cancelled")
	}

	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	return telemetry.CollectorStats{
		TotalRecorded: c.recorded.Load(),
		TotalSampled:  c.sampled.Load(),
		BufferCount:   c.queue.len(),
	}, nil
}

func (c *concurrentCollector) OnBufferFull(fn func()) {
	if fn == nil {
		c.bufferFull.Store(nil)
		return
	}
	c.bufferFull.Store(&fn)
}

func (c *concurrentCollector) Close() error {
	c.disposed.Store(true)
	return nil
}
