// Package config provides configuration management for telemetry-monitor.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Environment variables
// 2. Configuration file
// 3. Default values
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("backend: %s\n", cfg.API.BaseURL)
package config

import (
	"time"
)

// Config represents the complete application configuration.
//
// Invariants:
// - API.BaseURL must be non-empty
// - Monitoring.FullInterval must be > 0
// - Monitoring.SessionsInterval must be > 0
// - Display.PageSize must be > 0.
type Config struct {
	// Backend API settings
	API APIConfig `yaml:"api"`

	// Polling and window settings
	Monitoring MonitoringConfig `yaml:"monitoring"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// Admin console backend root URL
	BaseURL string `yaml:"base_url"`

	// Per-request timeout
	Timeout time.Duration `yaml:"timeout"`
}

// MonitoringConfig contains polling and aggregation settings.
type MonitoringConfig struct {
	// Interval between full refreshes (trend, status, heatmap)
	FullInterval time.Duration `yaml:"full_interval"`

	// Interval between lightweight session-list refreshes
	SessionsInterval time.Duration `yaml:"sessions_interval"`

	// Bucket window size in hours. Invalid values fall back to the
	// engine default at resolution time rather than failing validation.
	WindowHours float64 `yaml:"window_hours"`

	// Fire the first fetch synchronously on start
	Immediate bool `yaml:"immediate"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Output mode (dashboard, simple, json)
	Mode string `yaml:"mode"`

	// Rows per session-table page
	PageSize int `yaml:"page_size"`

	// Enable colored output
	ColorEnabled bool `yaml:"color_enabled"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the BoltDB preferences file
	PrefsPath string `yaml:"prefs_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// WindowHours is deliberately not validated: the window resolver fails
// soft to its default so a bad value can never take the dashboard down.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrNoBaseURL
	}

	if c.Monitoring.FullInterval <= 0 {
		return ErrInvalidFullInterval
	}
	if c.Monitoring.SessionsInterval <= 0 {
		return ErrInvalidSessionsInterval
	}

	validModes := map[string]bool{
		"dashboard": true,
		"simple":    true,
		"json":      true,
	}
	if !validModes[c.Display.Mode] {
		return ErrInvalidDisplayMode
	}
	if c.Display.PageSize <= 0 {
		return ErrInvalidPageSize
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8080",
			Timeout: 10 * time.Second,
		},
		Monitoring: MonitoringConfig{
			FullInterval:     30 * time.Second,
			SessionsInterval: 5 * time.Second,
			WindowHours:      3,
			Immediate:        true,
		},
		Display: DisplayConfig{
			Mode:         "dashboard",
			PageSize:     10,
			ColorEnabled: true,
		},
		Storage: StorageConfig{
			PrefsPath: defaultPrefsPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}
