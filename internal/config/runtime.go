// Package config provides centralized configuration for indexlog runtime values.
package config

import (
	"os"
	"strconv"
	"time"
)

// RuntimeConfig holds the tunable runtime values. Defaults can be
// overridden by INDEXLOG_* environment variables; command-line flags
// override both.
type RuntimeConfig struct {
	// Edit history configuration
	History HistoryConfig

	// HTTP client configuration
	HTTP HTTPConfig

	// Scoring endpoint configuration
	Scoring ScoringConfig

	// Notification configuration
	Notify NotifyConfig
}

// HistoryConfig holds edit history configuration.
type HistoryConfig struct {
	// Capacity is the maximum number of actions kept for undo.
	// Default: 100
	Capacity int
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the default HTTP request timeout.
	// Default: 30s
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries int

	// RetryDelays are the delays between retry attempts.
	// Default: [0s, 2s, 10s]
	RetryDelays []time.Duration
}

// ScoringConfig holds scoring endpoint configuration.
type ScoringConfig struct {
	// URL receives exported change documents. Empty disables submission.
	URL string
}

// NotifyConfig holds user notification configuration.
type NotifyConfig struct {
	// Duration is how long a notification stays on screen.
	// Default: 3s
	Duration time.Duration
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		History: HistoryConfig{
			Capacity: 100,
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelays: []time.Duration{
				0,                // Immediate first attempt
				2 * time.Second,  // Retry after 2s
				10 * time.Second, // Retry after 10s
			},
		},
		Notify: NotifyConfig{
			Duration: 3 * time.Second,
		},
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and can be overridden via environment variables.
var Global = initGlobal()

// initGlobal initializes the global config with defaults and environment overrides.
func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	return cfg
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	// History configuration
	if v := os.Getenv("INDEXLOG_HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.History.Capacity = n
		}
	}

	// HTTP configuration
	if v := os.Getenv("INDEXLOG_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("INDEXLOG_HTTP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.HTTP.MaxRetries = n
		}
	}

	// Scoring configuration
	if v := os.Getenv("INDEXLOG_SCORING_URL"); v != "" {
		c.Scoring.URL = v
	}

	// Notification configuration
	if v := os.Getenv("INDEXLOG_NOTIFY_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Notify.Duration = d
		}
	}
}

// ReloadFromEnv reloads configuration from environment variables.
// This is useful for testing or when environment variables change.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
// This is primarily useful for testing.
func (c *RuntimeConfig) Reset() {
	defaults := DefaultRuntimeConfig()
	*c = *defaults
}
