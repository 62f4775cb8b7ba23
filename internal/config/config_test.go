package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets all variables read by Load for the duration of the test.
func clearEnv(t *testing.T) {
	keys := []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "GIN_LOGGING", "SHUTDOWN_TIMEOUT",
		"CREDENTIALS_SOURCE", "DB_SECRET_NAME", "AWS_REGION",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// TestLoadDefaults expects the documented defaults when no variable is set.
func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.True(t, cfg.RequestLogging)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "secretsmanager", cfg.Credentials.Source)
	assert.Equal(t, "my-app-db-credentials", cfg.Credentials.SecretName)
	assert.Equal(t, "us-west-2", cfg.Credentials.Region)
	assert.Equal(t, 10, cfg.Pool.MaxOpenConns)
	assert.Equal(t, 5, cfg.Pool.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.Pool.ConnMaxLifetime)
}

// TestLoadFromEnvironment expects that set variables override the defaults.
func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("GIN_LOGGING", "OFF")
	t.Setenv("CREDENTIALS_SOURCE", "env")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.RequestLogging)
	assert.Equal(t, "env", cfg.Credentials.Source)
	assert.Equal(t, 3, cfg.Pool.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Pool.ConnMaxLifetime)
}

// TestLoadEnvFile expects that a .env file is read and that a missing file is tolerated.
func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nDB_SECRET_NAME=other-secret\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DB_SECRET_NAME")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "other-secret", cfg.Credentials.SecretName)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

// TestLoadInvalidValues expects an error for every unparsable variable.
func TestLoadInvalidValues(t *testing.T) {
	invalid := map[string]string{
		"PORT":                 "not a number",
		"LOG_FORMAT":           "xml",
		"SHUTDOWN_TIMEOUT":     "soon",
		"DB_MAX_OPEN_CONNS":    "-1",
		"DB_MAX_IDLE_CONNS":    "many",
		"DB_CONN_MAX_LIFETIME": "5 minutes",
	}
	for key, value := range invalid {
		clearEnv(t)
		t.Setenv(key, value)
		_, err := Load("")
		assert.Error(t, err, key+"="+value)
	}
}
