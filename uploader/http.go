package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/sony/gobreaker/v2"

	"github.com/xping/xping-go/config"
	"github.com/xping/xping-go/errors"
	"github.com/xping/xping-go/internal/httpclient"
	"github.com/xping/xping-go/logger"
	"github.com/xping/xping-go/serializer"
	"github.com/xping/xping-go/telemetry"
	"github.com/xping/xping-go/version"
)

const (
	// compressionThreshold is the payload size below which gzip is
	// skipped: the framing overhead of gzip on tiny payloads costs more
	// than it saves.
	compressionThreshold = 1024

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20

	// breakerFailureThreshold is the consecutive-failure count that opens
	// the circuit.
	breakerFailureThreshold = 5

	// breakerResetTimeout is how long the circuit stays open before
	// allowing a probe request through.
	breakerResetTimeout = 60 * time.Second
)

// serverResponse is the backend's upload acknowledgment. Older backend
// versions report executionCount instead of totalRecords, so both are
// accepted.
type serverResponse struct {
	TotalRecords   int    `json:"totalRecords"`
	ExecutionCount int    `json:"executionCount"`
	ReceiptID      string `json:"receiptId"`
}

func (r *serverResponse) count() int {
	if r.TotalRecords > 0 {
		return r.TotalRecords
	}
	return r.ExecutionCount
}

// httpError is a categorized upload failure carried through the retry
// loop.
type httpError struct {
	status    int
	body      string
	message   string
	retriable bool
	cause     error
}

func (e *httpError) Error() string { return e.message }

// Unwrap exposes the transport cause so context cancellation stays
// detectable through the retry loop.
func (e *httpError) Unwrap() error { return e.cause }

// HTTPUploader is the live Uploader implementation.
type HTTPUploader struct {
	cfg     *config.Config
	client  *httpclient.Client
	ser     serializer.Serializer
	base    *url.URL
	breaker *gobreaker.CircuitBreaker[*serverResponse]
	dedup   *errorTracker
}

// NewHTTP creates an uploader for the given configuration. client may be
// nil, in which case a pooled client bounded by the config upload timeout
// is created.
func NewHTTP(cfg *config.Config, ser serializer.Serializer, client *httpclient.Client) *HTTPUploader {
	if client == nil {
		client = httpclient.New(cfg.UploadTimeout())
	}
	base, err := client.ValidateEndpoint(cfg.APIEndpoint)
	if err != nil {
		// Validate() normally rejects this earlier; a directly constructed
		// uploader surfaces it per-upload instead.
		logger.Warnw("upload endpoint failed validation; uploads will fail",
			"endpoint", cfg.APIEndpoint, "error", err.Error())
	}
	return &HTTPUploader{
		cfg:    cfg,
		client: client,
		ser:    ser,
		base:   base,
		breaker: gobreaker.NewCircuitBreaker[*serverResponse](gobreaker.Settings{
			Name:        "xping-upload",
			MaxRequests: 1,
			Timeout:     breakerResetTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warnw("upload circuit state changed", "from", from.String(), "to", to.String())
			},
		}),
		dedup: newErrorTracker(),
	}
}

// Upload serializes and POSTs one session envelope.
func (u *HTTPUploader) Upload(ctx context.Context, session *telemetry.TestSession) (telemetry.UploadResult, error) {
	start := time.Now()

	// Nothing to send: succeed without a network call.
	if session == nil || len(session.Executions) == 0 {
		return telemetry.UploadResult{Success: true, Duration: time.Since(start)}, nil
	}

	payload, err := u.ser.Serialize(session)
	if err != nil {
		// Programming-bug signal: surfaces as an error, not a result.
		return telemetry.UploadFailure("serialization failed: "+err.Error(), time.Since(start)),
			errors.Wrap(err, "session serialization failed")
	}

	body, compressed, err := u.encodePayload(payload)
	if err != nil {
		return telemetry.UploadFailure("payload compression failed: "+err.Error(), time.Since(start)), nil
	}

	// Per-attempt timing is bounded by the transport client; the overall
	// call is bounded by the caller's context (the orchestrator time-boxes
	// the final flush so process exit is never blocked indefinitely).
	resp, err := u.breaker.Execute(func() (*serverResponse, error) {
		return u.uploadWithRetry(ctx, session.SessionID, body, compressed)
	})
	if err != nil {
		result := telemetry.UploadFailure(u.failureMessage(ctx, err), time.Since(start))
		result.PayloadBytes = len(body)
		result.Compressed = compressed
		return result, nil
	}

	// Success: a fresh failure streak starts logging at full detail again.
	u.dedup.reset()

	count := resp.count()
	if count == 0 {
		// Backend omitted the count; trust what we sent.
		count = len(session.Executions)
	}

	return telemetry.UploadResult{
		Success:      true,
		RecordCount:  count,
		ReceiptID:    resp.ReceiptID,
		Duration:     time.Since(start),
		PayloadBytes: len(body),
		Compressed:   compressed,
	}, nil
}

// Close releases idle transport connections.
func (u *HTTPUploader) Close() error {
	u.client.CloseIdleConnections()
	return nil
}

// encodePayload gzips the payload when compression is enabled and the
// payload is large enough to benefit.
func (u *HTTPUploader) encodePayload(payload []byte) (body []byte, compressed bool, err error) {
	if !u.cfg.EnableCompression || len(payload) <= compressionThreshold {
		return payload, false, nil
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create gzip writer")
	}
	if _, err := gz.Write(payload); err != nil {
		return nil, false, errors.Wrap(err, "failed to compress payload")
	}
	if err := gz.Close(); err != nil {
		return nil, false, errors.Wrap(err, "failed to finalize gzip stream")
	}
	return buf.Bytes(), true, nil
}

// uploadWithRetry runs the attempt loop: exponential backoff with jitter,
// capped at the configured retry count, aborted early for failures that
// will not self-resolve.
func (u *HTTPUploader) uploadWithRetry(ctx context.Context, sessionID string, body []byte, compressed bool) (*serverResponse, error) {
	bo := backoff.NewExponentialBackOff()
	if u.cfg.RetryDelay() > 0 {
		bo.InitialInterval = u.cfg.RetryDelay()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(u.cfg.MaxRetries)), ctx)

	var resp *serverResponse
	operation := func() error {
		r, err := u.attempt(ctx, sessionID, body, compressed)
		if err != nil {
			var httpErr *httpError
			if errors.As(err, &httpErr) && !httpErr.retriable {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

// attempt performs one POST and interprets the response.
func (u *HTTPUploader) attempt(ctx context.Context, sessionID string, body []byte, compressed bool) (*serverResponse, error) {
	if u.base == nil {
		return nil, &httpError{
			message:   fmt.Sprintf("Upload endpoint %q is not a valid HTTP(S) URL; fix api_endpoint in your configuration", u.cfg.APIEndpoint),
			retriable: false,
		}
	}

	target := u.base.JoinPath("v1", "sessions")
	target.RawQuery = url.Values{"sessionId": {sessionID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upload request")
	}

	req.Header.Set("Content-Type", u.ser.ContentType())
	req.Header.Set("X-Api-Key", u.cfg.APIKey)
	req.Header.Set("X-Project-Id", u.cfg.ProjectID)
	req.Header.Set("User-Agent", version.UserAgent())
	if compressed {
		req.Header.Set("Content-Encoding", "gzip")
	}

	httpResp, err := u.client.Do(req)
	if err != nil {
		// DNS failure, connection refused, per-request timeout: all
		// transient, all retriable.
		return nil, &httpError{
			message:   "network error: " + err.Error(),
			retriable: true,
			cause:     err,
		}
	}
	defer httpResp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		message, retriable := categorize(httpResp.StatusCode, string(respBody))
		u.dedup.observe(httpResp.StatusCode, string(respBody), message)
		return nil, &httpError{
			status:    httpResp.StatusCode,
			body:      string(respBody),
			message:   message,
			retriable: retriable,
		}
	}

	var resp serverResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		// A 2xx with an unparsable body still counts as delivered; the
		// caller falls back to the local execution count.
		logger.Debugw("upload response body not parsable", "error", err)
	}
	return &resp, nil
}

// failureMessage maps a terminal upload error to the categorized,
// human-actionable message carried in the result.
func (u *HTTPUploader) failureMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Sprintf(
			"Upload skipped: circuit breaker open after %d consecutive failures; uploads resume automatically after %.0f seconds",
			breakerFailureThreshold, breakerResetTimeout.Seconds())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Sprintf("Upload timed out after %s: the backend did not respond in time; records in this batch were dropped", u.cfg.UploadTimeout())
	case errors.Is(err, context.Canceled):
		return "Upload cancelled before completion; records in this batch were dropped"
	}

	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.message
	}
	return "Upload failed: " + err.Error()
}
