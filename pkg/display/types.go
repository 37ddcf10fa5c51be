// Package display renders the engine's derived views for the terminal.
//
// It supports a styled dashboard, a plain text format for pipes and
// logs, and JSON for machine consumption.
package display

import (
	"io"

	"github.com/0xmhha/telemetry-monitor/pkg/engine"
)

// Format represents an output format.
type Format string

const (
	// FormatDashboard renders the full styled dashboard.
	FormatDashboard Format = "dashboard"

	// FormatSimple renders plain text without styling.
	FormatSimple Format = "simple"

	// FormatJSON renders the views as JSON.
	FormatJSON Format = "json"
)

// Formatter renders engine views.
type Formatter interface {
	// FormatViews renders one complete set of views.
	//
	// Parameters:
	//   - w: Output writer
	//   - v: Views to render
	//
	// Returns error if rendering fails.
	FormatViews(w io.Writer, v engine.Views) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatDashboard.
	Format Format

	// ColorEnabled enables styled output. Forced off when stdout is
	// not a terminal (see AutoConfig).
	ColorEnabled bool

	// Width is the render width in cells.
	// Default: 100.
	Width int
}
