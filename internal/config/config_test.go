package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout.Std())
	assert.Equal(t, "transferModel", cfg.KeyPrefix)
	assert.Equal(t, "Transfer ID", cfg.RequiredColumn)
	assert.Equal(t, "Home Transaction ID", cfg.OutputColumn)
	assert.Equal(t, 10, cfg.ProgressInterval)
	assert.True(t, cfg.ContinueOnError)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "redis_url: redis://store.internal:6379/2\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis://store.internal:6379/2", cfg.RedisURL)
	assert.Equal(t, "transferModel", cfg.KeyPrefix)
	assert.Equal(t, "./output", cfg.OutputDir)
}

func TestLoadParsesDurations(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "connect_timeout: 250ms\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectTimeout.Std())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "connect_timeout: soon\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
input_dir: /srv/reports/in
output_dir: /srv/reports/out
archive_dir: /srv/reports/done
redis_url: redis://10.0.0.5:6379/1
connect_timeout: 2s
key_prefix: transferModel
required_column: Transfer ID
output_column: Home Transaction ID
progress_interval: 25
continue_on_error: false
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/reports/in", cfg.InputDir)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout.Std())
	assert.Equal(t, 25, cfg.ProgressInterval)
	assert.False(t, cfg.ContinueOnError)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad log level", yaml: "log_level: loud\n"},
		{name: "negative progress interval", yaml: "progress_interval: -3\n"},
		{name: "same required and output column", yaml: "required_column: X\noutput_column: X\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tt.yaml)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
