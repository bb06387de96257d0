// Package pipeline is the composition root of the telemetry SDK.
//
// Context owns the collector, uploader, tracker and identity generator,
// schedules periodic flushes, drains the buffer into per-batch session
// envelopes, and performs a bounded best-effort final flush at test-run
// end. Its one overriding rule: telemetry must never fail, slow down or
// destabilize the user's actual test suite. Misconfiguration degrades to
// no-op components, upload failures are logged and dropped, and teardown
// is idempotent and time-boxed.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/xping/xping-go/collector"
	"github.com/xping/xping-go/config"
	"github.com/xping/xping-go/errors"
	"github.com/xping/xping-go/identity"
	"github.com/xping/xping-go/internal/httpclient"
	"github.com/xping/xping-go/logger"
	"github.com/xping/xping-go/serializer"
	"github.com/xping/xping-go/telemetry"
	"github.com/xping/xping-go/tracker"
	"github.com/xping/xping-go/uploader"
)

// closeFlushTimeout bounds the final flush when the configuration could
// not provide a usable timeout (no-op mode teardown).
const closeFlushTimeout = 30 * time.Second

// Option overrides a component at composition time. Used by tests and by
// adapters that bring their own transport.
type Option func(*Context)

// WithCollector overrides the collector.
func WithCollector(c collector.Collector) Option {
	return func(ctx *Context) { ctx.collector = c }
}

// WithUploader overrides the uploader.
func WithUploader(u uploader.Uploader) Option {
	return func(ctx *Context) { ctx.uploader = u }
}

// WithHTTPClient overrides the transport client handed to the default
// HTTP uploader.
func WithHTTPClient(client *httpclient.Client) Option {
	return func(ctx *Context) { ctx.httpClient = client }
}

// Context is the telemetry pipeline orchestrator. One Context serves one
// test run/process.
type Context struct {
	cfg     *config.Config
	enabled bool

	collector  collector.Collector
	uploader   uploader.Uploader
	tracker    *tracker.Tracker
	idgen      *identity.Generator
	session    *telemetry.TestSession
	httpClient *httpclient.Client

	ticker *time.Ticker
	done   chan struct{}
	loopWG sync.WaitGroup

	// flushing is the re-entrancy guard: a flush scheduled by the timer
	// and one scheduled by a buffer-full signal must not interleave
	// drains of the same buffer.
	flushing  atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

// New composes a pipeline for the given configuration.
//
// New never fails. Invalid configuration is logged and degrades the whole
// pipeline to no-op components; a test run must not crash because
// telemetry was misconfigured.
func New(cfg *config.Config, opts ...Option) *Context {
	c := &Context{
		cfg:     cfg,
		tracker: tracker.New(),
		idgen:   identity.NewGenerator(),
		session: telemetry.NewSession(),
	}

	err := cfg.Validate()
	c.enabled = err == nil && cfg.Enabled
	if err != nil {
		logger.Warnw("telemetry disabled: configuration invalid",
			"error", err.Error())
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.collector == nil {
		if c.enabled {
			c.collector = collector.New(cfg.BatchSize, cfg.SamplingRate)
		} else {
			c.collector = collector.NewNoop()
		}
	}
	if c.uploader == nil {
		if c.enabled {
			c.uploader = uploader.NewHTTP(cfg, serializer.NewJSON(), c.httpClient)
		} else {
			c.uploader = uploader.NewNoop()
		}
	}

	if c.enabled {
		// Buffer-full fires synchronously on the recording goroutine;
		// the drain is scheduled off it so test workers never block on
		// an upload.
		c.collector.OnBufferFull(func() {
			go c.Flush(context.Background())
		})

		c.done = make(chan struct{})
		c.ticker = time.NewTicker(cfg.FlushInterval())
		c.loopWG.Add(1)
		go c.flushLoop()

		logger.Infow("telemetry pipeline initialized",
			"session_id", c.session.SessionID,
			"batch_size", cfg.BatchSize,
			"sampling_rate", cfg.SamplingRate,
			"flush_interval", cfg.FlushInterval())
	} else {
		logger.Debugw("telemetry pipeline in no-op mode")
	}

	return c
}

// TestRecord is the adapter-facing description of one completed test.
type TestRecord struct {
	FullyQualifiedName string
	Assembly           string
	DisplayName        string
	Parameters         []any
	SourceFile         string
	SourceLine         int

	Outcome    telemetry.TestOutcome
	StartedAt  time.Time
	FinishedAt time.Time

	ErrorMessage string
	StackTrace   string

	// WorkerID identifies the executing worker/goroutine; empty maps to
	// the default worker key.
	WorkerID string
	// Attempt is the 1-based retry attempt; 0 is treated as 1.
	Attempt     int
	MaxAttempts int
}

// RecordTest derives the test's identity and ordering context, builds the
// immutable execution record, and hands it to the collector.
func (c *Context) RecordTest(rec TestRecord) error {
	if c.closed.Load() {
		return errors.Wrap(errors.ErrCollectorDisposed, "pipeline closed")
	}

	id, err := c.idgen.Generate(rec.FullyQualifiedName, rec.Assembly,
		identity.WithParameters(rec.Parameters...),
		identity.WithDisplayName(rec.DisplayName),
		identity.WithSource(rec.SourceFile, rec.SourceLine))
	if err != nil {
		return errors.Wrap(err, "cannot derive test identity")
	}

	workerID := rec.WorkerID
	if workerID == "" {
		workerID = "worker-0"
	}
	attempt := rec.Attempt
	if attempt < 1 {
		attempt = 1
	}

	slot := c.tracker.BeginTest(workerID, rec.FullyQualifiedName, attempt)

	startedAt := rec.StartedAt
	finishedAt := rec.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}
	if startedAt.IsZero() {
		startedAt = finishedAt
	}

	execution := &telemetry.TestExecution{
		ExecutionID:    uuid.NewString(),
		Identity:       id,
		Outcome:        rec.Outcome,
		Duration:       finishedAt.Sub(startedAt),
		StartedAt:      startedAt.UTC(),
		FinishedAt:     finishedAt.UTC(),
		ErrorMessage:   rec.ErrorMessage,
		StackTrace:     rec.StackTrace,
		ErrorHash:      identity.HashText(rec.ErrorMessage),
		StackTraceHash: identity.HashText(rec.StackTrace),
		Context: &telemetry.ExecutionContext{
			WorkerID:            workerID,
			PositionInSuite:     slot.PositionInSuite,
			GlobalPosition:      slot.GlobalPosition,
			ConcurrentWorkers:   slot.ConcurrentWorkers,
			PreviousTest:        slot.PreviousTest,
			PreviousFingerprint: slot.PreviousFingerprint,
			PreviousOutcome:     slot.PreviousOutcome,
			SuiteElapsed:        slot.SuiteElapsed,
		},
	}
	if attempt > 1 || rec.MaxAttempts > 0 {
		execution.Retry = &telemetry.RetryInfo{
			Attempt:     attempt,
			MaxAttempts: rec.MaxAttempts,
			Retried:     attempt > 1,
		}
	}

	if err := c.collector.RecordTest(execution); err != nil {
		return err
	}
	c.tracker.CompleteTest(workerID, rec.FullyQualifiedName, id.Hash, rec.Outcome)
	return nil
}

// Flush drains the collector into batches and uploads each. Re-entrant
// calls while a flush is in progress are safe no-ops.
func (c *Context) Flush(ctx context.Context) {
	if !c.flushing.CompareAndSwap(false, true) {
		return
	}
	defer c.flushing.Store(false)
	c.drainAll(ctx)
}

// drainAll loops the drain/upload cycle until the buffer is empty or the
// context expires. Drain returns at most one batch per call, so a full
// buffer takes several iterations.
func (c *Context) drainAll(ctx context.Context) {
	for {
		batch := c.collector.Drain()
		if len(batch) == 0 {
			return
		}

		envelope := c.session.Envelope(batch)
		result, err := c.uploader.Upload(ctx, envelope)
		if err != nil {
			// Serialization bug: loudly logged, batch dropped, run
			// unaffected.
			logger.Errorw("batch could not be serialized; records dropped",
				"error", err.Error(), "batch_size", len(batch))
		} else if !result.Success {
			// The uploader already retried per its own policy; the batch
			// is not re-queued. Telemetry loss is preferred over
			// telemetry blocking the suite.
			logger.Warnw("batch upload failed; records dropped",
				"error", result.ErrorMessage, "batch_size", len(batch))
		} else {
			logger.Debugw("batch uploaded",
				"records", result.RecordCount,
				"payload_bytes", result.PayloadBytes,
				"compressed", result.Compressed,
				"duration", result.Duration)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Context) flushLoop() {
	defer c.loopWG.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.ticker.C:
			c.Flush(context.Background())
		}
	}
}

// Stats returns the collector's current counters.
func (c *Context) Stats(ctx context.Context) (telemetry.CollectorStats, error) {
	return c.collector.Stats(ctx)
}

// SessionID returns this run's session identifier.
func (c *Context) SessionID() string {
	return c.session.SessionID
}

// Enabled reports whether the pipeline composed live components.
func (c *Context) Enabled() bool {
	return c.enabled
}

// SetExpectedTestCount records the adapter's suite-size estimate in the
// session envelope.
func (c *Context) SetExpectedTestCount(n int) {
	c.session.ExpectedTestCount = n
}

// Close stops the flush timer, performs a bounded best-effort final
// flush, logs summary statistics and disposes owned resources. Repeated
// calls are no-ops; the final flush is attempted exactly once.
func (c *Context) Close(ctx context.Context) {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		if c.ticker != nil {
			c.ticker.Stop()
		}
		if c.done != nil {
			close(c.done)
			c.loopWG.Wait()
		}

		c.session.Finish()

		timeout := c.cfg.UploadTimeout()
		if timeout <= 0 {
			timeout = closeFlushTimeout
		}
		flushCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		c.finalFlush(flushCtx)

		stats, _ := c.collector.Stats(context.Background())
		if c.enabled {
			logger.Infow("telemetry pipeline shut down",
				"session_id", c.session.SessionID,
				"recorded", stats.TotalRecorded,
				"sampled", stats.TotalSampled,
				"unsent", stats.BufferCount)
		}

		c.collector.Close()
		c.uploader.Close()
		logger.Cleanup()
	})
}

// finalFlush acquires the flush guard, waiting out any in-flight flush,
// then drains whatever remains. Bounded by flushCtx so a hung backend
// cannot block process exit.
func (c *Context) finalFlush(ctx context.Context) {
	for !c.flushing.CompareAndSwap(false, true) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
	defer c.flushing.Store(false)
	c.drainAll(ctx)
}
