// Package config reads the process settings of the persons service from the environment. A .env
// file is loaded first if present, so local runs can keep their settings next to the binary.
//
// Database credentials are not part of this configuration. They are resolved at startup by the
// credentials package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process settings.
type Config struct {
	Port            int
	LogLevel        string
	LogFormat       string
	RequestLogging  bool
	ShutdownTimeout time.Duration

	Credentials struct {
		Source     string
		SecretName string
		Region     string
	}

	Pool struct {
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}
}

// Load reads the configuration. If envFile is not empty, the variables in that file are added to
// the environment first; variables that are already set take precedence. A missing file is not an
// error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	var err error

	if cfg.Port, err = intFromEnv("PORT", 5000); err != nil {
		return nil, err
	}
	cfg.LogLevel = stringFromEnv("LOG_LEVEL", "info")
	cfg.LogFormat = strings.ToLower(stringFromEnv("LOG_FORMAT", "console"))
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	cfg.RequestLogging = !strings.EqualFold(os.Getenv("GIN_LOGGING"), "off")
	if cfg.ShutdownTimeout, err = durationFromEnv("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	cfg.Credentials.Source = strings.ToLower(stringFromEnv("CREDENTIALS_SOURCE", "secretsmanager"))
	cfg.Credentials.SecretName = stringFromEnv("DB_SECRET_NAME", "my-app-db-credentials")
	cfg.Credentials.Region = stringFromEnv("AWS_REGION", "us-west-2")

	if cfg.Pool.MaxOpenConns, err = intFromEnv("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.Pool.MaxIdleConns, err = intFromEnv("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Pool.ConnMaxLifetime, err = durationFromEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func stringFromEnv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("could not parse %s env variable: %w", key, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return parsed, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("could not parse %s env variable: %w", key, err)
	}
	return parsed, nil
}
