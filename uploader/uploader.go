// Package uploader delivers session batches to the observability backend
// over HTTP: serialization, gzip compression above a size threshold,
// retry with exponential backoff and jitter, circuit breaking across
// sustained outages, and categorized, deduplicated error reporting.
//
// Ordinary failures never surface as errors. Upload returns a failed
// UploadResult with an actionable message instead, so the orchestrator
// can log and move on without exception plumbing. The one exception is
// serialization, which signals a programming bug and does return an error.
package uploader

import (
	"context"

	"github.com/xping/xping-go/telemetry"
)

// Uploader delivers one session envelope per call.
type Uploader interface {
	// Upload serializes and POSTs the session. The error return is
	// non-nil only for serialization failures; every transport, protocol
	// and circuit failure comes back inside the result.
	Upload(ctx context.Context, session *telemetry.TestSession) (telemetry.UploadResult, error)

	// Close releases transport resources.
	Close() error
}

// noopUploader is the null-object Uploader substituted when the SDK is
// disabled or configuration fails validation.
type noopUploader struct{}

// NewNoop creates the no-op uploader. Every call reports success with
// zero records and touches no network.
func NewNoop() Uploader {
	return noopUploader{}
}

func (noopUploader) Upload(context.Context, *telemetry.TestSession) (telemetry.UploadResult, error) {
	return telemetry.UploadResult{Success: true}, nil
}

func (noopUploader) Close() error { return nil }
