// Package config loads the client configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	API           APIConfig          `yaml:"api"`
	Storage       StorageConfig      `yaml:"storage"`
	Cache         CacheConfig        `yaml:"cache"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// APIConfig addresses the remote banking API.
type APIConfig struct {
	// BaseURL is the base address of the banking API, without trailing slash.
	BaseURL string `yaml:"base_url"`
	// TimeoutSeconds bounds each HTTP request. 0 uses the client default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// RateLimit caps outgoing requests per second. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the limiter burst size.
	RateBurst int `yaml:"rate_burst"`
}

// StorageConfig locates the durable key-value surface for the token.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// CacheConfig tunes the request cache.
type CacheConfig struct {
	// RetentionSeconds keeps unsubscribed entries alive for this grace
	// period before eviction.
	RetentionSeconds int `yaml:"retention_seconds"`
}

// NotificationConfig tunes notification display.
type NotificationConfig struct {
	DurationMS int `yaml:"duration_ms"`
}

// LoggingConfig mirrors pkg/logger.LoggingConfig.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	dir := ".bankclient"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".bankclient")
	}
	return Config{
		API:           APIConfig{BaseURL: "http://localhost:8080", TimeoutSeconds: 15},
		Storage:       StorageConfig{Dir: dir},
		Cache:         CacheConfig{RetentionSeconds: 60},
		Notifications: NotificationConfig{DurationMS: 6000},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path when it exists, falls back to defaults otherwise, and
// applies environment overrides in both cases.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("config: api.base_url is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BANKCLIENT_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("BANKCLIENT_API_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("BANKCLIENT_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("BANKCLIENT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BANKCLIENT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Timeout returns the API timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Retention returns the cache retention grace period as a duration.
func (c CacheConfig) Retention() time.Duration {
	return time.Duration(c.RetentionSeconds) * time.Second
}

// Duration returns the notification display duration.
func (c NotificationConfig) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}
