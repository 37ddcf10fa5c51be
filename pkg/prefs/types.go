// Package prefs persists dashboard view preferences between runs.
//
// Telemetry itself is never stored: the backend remains the source of
// truth for sessions and counters. Only the knobs a user adjusts at
// the keyboard (window size, page size, color) survive a restart.
package prefs

import "time"

// Preferences are the persisted view settings.
type Preferences struct {
	// Bucket window size in hours; 0 means "use configured default"
	WindowHours float64 `json:"window_hours,omitempty"`

	// Rows per session-table page; 0 means "use configured default"
	PageSize int `json:"page_size,omitempty"`

	// Colored output toggle
	ColorEnabled bool `json:"color_enabled"`

	// When the preferences were last written
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists and retrieves preferences.
type Store interface {
	// Load returns the stored preferences, or defaults if none exist.
	Load() (*Preferences, error)

	// Save stores the preferences, stamping UpdatedAt.
	Save(p *Preferences) error

	// Close releases the underlying database.
	Close() error
}

// Config contains store configuration.
type Config struct {
	// Path to the BoltDB file
	DBPath string

	// Database open timeout (default: 1s)
	Timeout time.Duration
}
