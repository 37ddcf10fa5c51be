package display

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// defaultWidth is used when the terminal size cannot be determined.
const defaultWidth = 100

// New creates a new formatter based on configuration.
//
// Parameters:
//   - cfg: Formatter configuration
//
// Returns a configured Formatter.
func New(cfg Config) Formatter {
	// Set defaults.
	if cfg.Format == "" {
		cfg.Format = FormatDashboard
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}

	switch cfg.Format {
	case FormatJSON:
		return &jsonFormatter{config: cfg}
	case FormatSimple:
		return &simpleFormatter{config: cfg}
	case FormatDashboard:
		fallthrough
	default:
		return newDashboardFormatter(cfg)
	}
}

// AutoConfig derives a Config from the environment: color is disabled
// and the default width used when stdout is not a terminal.
func AutoConfig(format Format, colorEnabled bool) Config {
	cfg := Config{
		Format:       format,
		ColorEnabled: colorEnabled,
		Width:        defaultWidth,
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		cfg.ColorEnabled = false
		return cfg
	}

	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		cfg.Width = w
	}

	return cfg
}

// formatNumber formats a number with thousand separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

// truncate shortens a string to at most n runes, ellipsized.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
