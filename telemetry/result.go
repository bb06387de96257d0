package telemetry

import "time"

// CollectorStats is a point-in-time snapshot of collector counters.
type CollectorStats struct {
	// TotalRecorded counts every RecordTest call, sampled or not.
	TotalRecorded int64 `json:"total_recorded"`
	// TotalSampled counts executions that passed the sampling filter and
	// were enqueued.
	TotalSampled int64 `json:"total_sampled"`
	// BufferCount is the number of executions currently buffered.
	BufferCount int64 `json:"buffer_count"`
}

// UploadResult is the outcome of one upload attempt. Ordinary failures
// (network, HTTP status, circuit open, timeout) are returned as a value
// with Success=false, never as an error, so orchestration logic can
// decide what to do without exception plumbing.
type UploadResult struct {
	Success      bool          `json:"success"`
	RecordCount  int           `json:"record_count"` // server-confirmed, or local count
	ReceiptID    string        `json:"receipt_id,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
	PayloadBytes int           `json:"payload_bytes"`
	Compressed   bool          `json:"compressed"`
}

// UploadFailure builds a failed result with the given message.
func UploadFailure(msg string, duration time.Duration) UploadResult {
	return UploadResult{
		Success:      false,
		ErrorMessage: msg,
		Duration:     duration,
	}
}
