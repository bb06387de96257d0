package config

import (
	"net/url"

	"github.com/xping/xping-go/errors"
)

// Validate checks that the configuration is usable by the pipeline.
//
// A validation failure never crashes the host test run: the orchestrator
// reacts by composing no-op components instead of live ones. The error
// returned here is what gets logged so the user can fix their setup.
func (c *Config) Validate() error {
	if !c.Enabled {
		// Disabled is always valid; nothing else needs to be set.
		return nil
	}

	if c.APIEndpoint == "" {
		return errors.NewInvalidConfigError("api_endpoint is required")
	}
	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewInvalidConfigError("api_endpoint must be an http or https URL, got %q", c.APIEndpoint)
	}
	if u.Host == "" {
		return errors.NewInvalidConfigError("api_endpoint is missing a host: %q", c.APIEndpoint)
	}

	if c.APIKey == "" {
		return errors.WithHint(
			errors.NewInvalidConfigError("api_key is required"),
			"set XPING_API_KEY or add api_key to xping.toml")
	}
	if c.ProjectID == "" {
		return errors.WithHint(
			errors.NewInvalidConfigError("project_id is required"),
			"set XPING_PROJECT_ID or add project_id to xping.toml")
	}

	if c.BatchSize < 1 || c.BatchSize > 1000 {
		return errors.NewInvalidConfigError("batch_size must be in [1, 1000], got %d", c.BatchSize)
	}
	if c.SamplingRate < 0.0 || c.SamplingRate > 1.0 {
		return errors.NewInvalidConfigError("sampling_rate must be in [0.0, 1.0], got %f", c.SamplingRate)
	}
	if c.FlushIntervalSeconds <= 0 {
		return errors.NewInvalidConfigError("flush_interval_seconds must be > 0, got %d", c.FlushIntervalSeconds)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return errors.NewInvalidConfigError("max_retries must be in [0, 10], got %d", c.MaxRetries)
	}
	if c.RetryDelayMS < 0 {
		return errors.NewInvalidConfigError("retry_delay_ms must be >= 0, got %d", c.RetryDelayMS)
	}
	if c.UploadTimeoutSeconds <= 0 {
		return errors.NewInvalidConfigError("upload_timeout_seconds must be > 0, got %d", c.UploadTimeoutSeconds)
	}

	return nil
}
