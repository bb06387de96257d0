// Package config provides the resolved configuration consumed by the
// telemetry pipeline. Binding follows the usual precedence: built-in
// defaults, then configuration files, then XPING_* environment variables.
package config

import "time"

// Config represents the resolved xping SDK configuration.
//
// The pipeline consumes only this struct; how it was produced (file,
// environment, explicit construction in tests) is invisible to the
// collector, uploader and orchestrator.
type Config struct {
	// Enabled toggles the whole telemetry pipeline. When false the
	// orchestrator composes no-op components and the SDK adds near-zero
	// overhead to the test run.
	Enabled bool `mapstructure:"enabled"`

	// APIEndpoint is the base URL of the observability backend.
	APIEndpoint string `mapstructure:"api_endpoint"`
	// APIKey authenticates upload requests (X-Api-Key header).
	APIKey string `mapstructure:"api_key"`
	// ProjectID scopes uploads to a backend project (X-Project-Id header).
	ProjectID string `mapstructure:"project_id"`

	// BatchSize is the maximum number of executions per upload batch (1-1000).
	BatchSize int `mapstructure:"batch_size"`
	// SamplingRate is the fraction of recorded executions kept for upload,
	// in [0.0, 1.0]. 1.0 keeps everything, 0.0 drops everything.
	SamplingRate float64 `mapstructure:"sampling_rate"`

	// FlushIntervalSeconds is how often the orchestrator drains the buffer
	// (default: 30).
	FlushIntervalSeconds int `mapstructure:"flush_interval_seconds"`
	// MaxRetries bounds upload retry attempts per batch (0-10).
	MaxRetries int `mapstructure:"max_retries"`
	// RetryDelayMS is the initial backoff delay between retries (>= 0).
	RetryDelayMS int `mapstructure:"retry_delay_ms"`
	// UploadTimeoutSeconds bounds a single upload call, including retries
	// (default: 30).
	UploadTimeoutSeconds int `mapstructure:"upload_timeout_seconds"`

	// EnableCompression gzips upload payloads above the size threshold.
	EnableCompression bool `mapstructure:"enable_compression"`
}

// FlushInterval returns the periodic flush interval as a duration.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalSeconds) * time.Second
}

// RetryDelay returns the initial retry backoff delay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// UploadTimeout returns the per-upload deadline as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutSeconds) * time.Second
}
