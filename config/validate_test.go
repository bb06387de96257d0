package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xping/xping-go/config"
	"github.com/xping/xping-go/errors"
)

func validConfig() *config.Config {
	return &config.Config{
		Enabled:              true,
		APIEndpoint:          "https://api.xping.io",
		APIKey:               "key-123",
		ProjectID:            "proj-1",
		BatchSize:            50,
		SamplingRate:         1.0,
		FlushIntervalSeconds: 30,
		MaxRetries:           3,
		RetryDelayMS:         1000,
		UploadTimeoutSeconds: 30,
	}
}

func TestValidate_AcceptsValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_DisabledSkipsAllChecks(t *testing.T) {
	// A disabled config is valid even when everything else is garbage.
	cfg := &config.Config{Enabled: false, BatchSize: -5, SamplingRate: 99}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantMsg string
	}{
		{"missing endpoint", func(c *config.Config) { c.APIEndpoint = "" }, "api_endpoint is required"},
		{"non-http scheme", func(c *config.Config) { c.APIEndpoint = "ftp://api.xping.io" }, "http or https"},
		{"host missing", func(c *config.Config) { c.APIEndpoint = "https://" }, "missing a host"},
		{"missing api key", func(c *config.Config) { c.APIKey = "" }, "api_key is required"},
		{"missing project", func(c *config.Config) { c.ProjectID = "" }, "project_id is required"},
		{"batch size zero", func(c *config.Config) { c.BatchSize = 0 }, "batch_size"},
		{"batch size too large", func(c *config.Config) { c.BatchSize = 1001 }, "batch_size"},
		{"negative sampling", func(c *config.Config) { c.SamplingRate = -0.1 }, "sampling_rate"},
		{"sampling above one", func(c *config.Config) { c.SamplingRate = 1.5 }, "sampling_rate"},
		{"zero flush interval", func(c *config.Config) { c.FlushIntervalSeconds = 0 }, "flush_interval_seconds"},
		{"negative retries", func(c *config.Config) { c.MaxRetries = -1 }, "max_retries"},
		{"excessive retries", func(c *config.Config) { c.MaxRetries = 11 }, "max_retries"},
		{"negative retry delay", func(c *config.Config) { c.RetryDelayMS = -1 }, "retry_delay_ms"},
		{"zero upload timeout", func(c *config.Config) { c.UploadTimeoutSeconds = 0 }, "upload_timeout_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, errors.IsInvalidConfigError(err), "all validation failures share the sentinel")
		})
	}
}

func TestValidate_BoundaryValuesAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.BatchSize = 1
	cfg.SamplingRate = 0.0
	cfg.MaxRetries = 0
	cfg.RetryDelayMS = 0
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.BatchSize = 1000
	cfg.SamplingRate = 1.0
	cfg.MaxRetries = 10
	assert.NoError(t, cfg.Validate())
}

func TestDurationAccessors(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "30s", cfg.FlushInterval().String())
	assert.Equal(t, "1s", cfg.RetryDelay().String())
	assert.Equal(t, "30s", cfg.UploadTimeout().String())
}
