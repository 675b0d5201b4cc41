package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "pfk_live_abc123"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PARSEFLOW_API_KEY", testKey)

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.parseflow.dev", cfg.Endpoint)
	assert.Equal(t, testKey, cfg.API.Key)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, time.Hour, cfg.Poll.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	_, err := LoadFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.key is required")
}

func TestLoadBytesOverridesDefaults(t *testing.T) {
	t.Setenv("PARSEFLOW_API_KEY", testKey)

	cfg, err := LoadBytes([]byte(`
endpoint: https://eu.parseflow.dev
timeout: 10s
retry:
  attempts: 5
poll:
  interval: 2s
  timeout: 30m
log:
  level: debug
  pretty: true
`))
	require.NoError(t, err)

	assert.Equal(t, "https://eu.parseflow.dev", cfg.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Poll.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("PARSEFLOW_API_KEY", testKey)
	t.Setenv("PARSEFLOW_RETRY_ATTEMPTS", "7")
	t.Setenv("PARSEFLOW_ENDPOINT", "https://env.parseflow.dev")

	cfg, err := LoadBytes([]byte("endpoint: https://file.parseflow.dev\nretry:\n  attempts: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.parseflow.dev", cfg.Endpoint)
	assert.Equal(t, 7, cfg.Retry.Attempts)
}

func TestLoadFileFromDisk(t *testing.T) {
	t.Setenv("PARSEFLOW_API_KEY", testKey)

	path := filepath.Join(t.TempDir(), "parseflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 45s\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoadFileMissingPathFails(t *testing.T) {
	t.Setenv("PARSEFLOW_API_KEY", testKey)

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero attempts", "retry:\n  attempts: 0\n", "retry.attempts"},
		{"bad endpoint", "endpoint: not-a-url\n", "endpoint"},
		{"bad log level", "log:\n  level: loud\n", "log.level"},
		{"zero poll interval", "poll:\n  interval: 0s\n", "poll.interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PARSEFLOW_API_KEY", testKey)
			_, err := LoadBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClientConfig(t *testing.T) {
	t.Setenv("PARSEFLOW_API_KEY", testKey)

	cfg, err := LoadBytes([]byte("timeout: 12s\nretry:\n  attempts: 4\n"))
	require.NoError(t, err)

	cc := cfg.ClientConfig()
	assert.Equal(t, cfg.Endpoint, cc.BaseURL)
	assert.Equal(t, testKey, cc.APIKey)
	assert.Equal(t, 12*time.Second, cc.Timeout)
	assert.Equal(t, 4, cc.MaxAttempts)
}
