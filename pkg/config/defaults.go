package config

import (
	"os"
	"path/filepath"
)

// defaultPrefsPath returns the default preferences database path.
//
// Returns: ~/.config/telemetry-monitor/prefs.db.
func defaultPrefsPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./prefs.db"
	}

	return filepath.Join(homeDir, ".config", "telemetry-monitor", "prefs.db")
}

// defaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/telemetry-monitor/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(homeDir, ".config", "telemetry-monitor", "config.yaml")
}
