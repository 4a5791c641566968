package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConfigEnv unsets all config env vars so tests start clean.
func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"IMMO_API_URL",
		"IMMO_EMAIL",
		"IMMO_PASSWORD",
		"IMMO_STATE_DB",
		"REFRESH_THRESHOLD_MINUTES",
		"WATCH_INTERVAL",
		"DEVICE_NAME",
		"ENVIRONMENT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// missingFile is a config path that does not exist.
func missingFile(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "config.yaml")
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// --- LoadFrom: env layer ---

func TestLoadFrom_EnvOnly(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://api.immo.example/api")
	t.Setenv("IMMO_EMAIL", "agent@example.com")
	t.Setenv("IMMO_PASSWORD", "secret123")

	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, "https://api.immo.example/api", cfg.APIURL)
	assert.Equal(t, "agent@example.com", cfg.Email)
	assert.Equal(t, "secret123", cfg.Password)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://api.immo.example/api")

	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultRefreshThresholdMinutes, cfg.RefreshThresholdMinutes)
	assert.Equal(t, 5*time.Minute, cfg.RefreshThreshold())
	assert.Equal(t, 60*time.Second, cfg.WatchInterval)
	assert.NotEmpty(t, cfg.DeviceName, "device name falls back to the hostname")
}

func TestLoadFrom_MissingAPIURL(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadFrom(missingFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMMO_API_URL")
}

func TestLoadFrom_RelativeAPIURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "api.immo.example/api")

	_, err := LoadFrom(missingFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute URL")
}

func TestLoadFrom_NegativeThreshold(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://api.immo.example/api")
	t.Setenv("REFRESH_THRESHOLD_MINUTES", "-1")

	_, err := LoadFrom(missingFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_THRESHOLD_MINUTES")
}

func TestLoadFrom_WatchIntervalFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://api.immo.example/api")
	t.Setenv("WATCH_INTERVAL", "90s")

	cfg, err := LoadFrom(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.WatchInterval)
}

// --- LoadFrom: file layer ---

func TestLoadFrom_FileFillsUnsetFields(t *testing.T) {
	clearConfigEnv(t)

	path := writeConfigFile(t, `
api_url: https://api.immo.example/api
email: file@example.com
refresh_threshold_minutes: 10
watch_interval: 2m
environment: production
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.immo.example/api", cfg.APIURL)
	assert.Equal(t, "file@example.com", cfg.Email)
	assert.Equal(t, 10, cfg.RefreshThresholdMinutes)
	assert.Equal(t, 2*time.Minute, cfg.WatchInterval)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFrom_EnvWinsOverFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://env.immo.example/api")
	t.Setenv("IMMO_EMAIL", "env@example.com")
	t.Setenv("ENVIRONMENT", "staging")

	path := writeConfigFile(t, `
api_url: https://file.immo.example/api
email: file@example.com
password: filepass
environment: production
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.immo.example/api", cfg.APIURL)
	assert.Equal(t, "env@example.com", cfg.Email)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "filepass", cfg.Password, "fields the env leaves empty come from the file")
}

func TestLoadFrom_MalformedFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://api.immo.example/api")

	path := writeConfigFile(t, "api_url: [not\n  closed")

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestLoadFrom_MalformedWatchIntervalInFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://api.immo.example/api")

	path := writeConfigFile(t, "watch_interval: sixty seconds\n")

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch_interval")
}

func TestLoadFrom_MissingFileIsFine(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("IMMO_API_URL", "https://api.immo.example/api")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://api.immo.example/api", cfg.APIURL)
}
