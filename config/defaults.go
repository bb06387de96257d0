package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("enabled", true)

	v.SetDefault("api_endpoint", "https://api.xping.io")

	// Batching and sampling
	v.SetDefault("batch_size", 50)     // executions per upload batch
	v.SetDefault("sampling_rate", 1.0) // keep everything unless told otherwise

	// Flush and retry timing
	v.SetDefault("flush_interval_seconds", 30)
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay_ms", 1000)
	v.SetDefault("upload_timeout_seconds", 30)

	v.SetDefault("enable_compression", true)
}

// BindSensitiveEnvVars explicitly binds credentials to environment
// variables so they never need to live in a checked-in config file.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("api_key", "XPING_API_KEY")
	v.BindEnv("project_id", "XPING_PROJECT_ID")
	v.BindEnv("api_endpoint", "XPING_API_ENDPOINT")
}
