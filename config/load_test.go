package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xping/xping-go/config"
)

func TestLoad_Defaults(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.xping.io", cfg.APIEndpoint)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 1.0, cfg.SamplingRate)
	assert.Equal(t, 30, cfg.FlushIntervalSeconds)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.EnableCompression)
	assert.True(t, cfg.Enabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	t.Setenv("XPING_API_KEY", "env-key")
	t.Setenv("XPING_PROJECT_ID", "env-project")
	t.Setenv("XPING_BATCH_SIZE", "25")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-project", cfg.ProjectID)
	assert.Equal(t, 25, cfg.BatchSize)
}

func TestLoad_EnvBeatsProjectFile(t *testing.T) {
	dir := t.TempDir()
	contents := "batch_size = 200\nsampling_rate = 0.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xping.toml"), []byte(contents), 0o644))
	t.Chdir(dir)
	t.Setenv("XPING_BATCH_SIZE", "25")

	config.Reset()
	t.Cleanup(config.Reset)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.BatchSize, "environment must outrank any config file")
	assert.Equal(t, 0.5, cfg.SamplingRate, "file still outranks defaults")
}

func TestLoad_ConcurrentCallersShareOneConfig(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	results := make([]*config.Config, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg, err := config.Load()
			assert.NoError(t, err)
			results[i] = cfg
		}(i)
	}
	wg.Wait()

	for _, cfg := range results {
		assert.Same(t, results[0], cfg)
	}
}

func TestLoad_Caches(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	first, err := config.Load()
	require.NoError(t, err)
	second, err := config.Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xping.toml")
	contents := `
api_key = "file-key"
project_id = "file-project"
batch_size = 200
sampling_rate = 0.5
enable_compression = false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "file-project", cfg.ProjectID)
	assert.Equal(t, 200, cfg.BatchSize)
	assert.Equal(t, 0.5, cfg.SamplingRate)
	assert.False(t, cfg.EnableCompression)

	// Unset keys still come from defaults.
	assert.Equal(t, "https://api.xping.io", cfg.APIEndpoint)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
