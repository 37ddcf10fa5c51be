// Package main provides the telemetry-monitor CLI application.
//
// Telemetry Monitor polls an admin-console backend for session
// telemetry and renders live token-usage trends, session status, and a
// tool-usage heatmap in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	// Parse command.
	flag.Parse()

	// Handle version flag.
	if *showVersion {
		fmt.Printf("telemetry-monitor %s\n", version)
		return nil
	}

	// Get command.
	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	command := args[0]

	switch command {
	case "watch":
		return runWatchCommand(*configPath, args[1:])
	case "status":
		return runStatusCommand(*configPath, args[1:])
	case "tools":
		return runToolsCommand(*configPath, args[1:])
	case "sessions":
		return runSessionsCommand(*configPath, args[1:])
	case "config":
		return runConfigCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runWatchCommand runs the watch command.
func runWatchCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	format := fs.String("format", "dashboard", "output format (dashboard, simple, json)")
	user := fs.String("user", "", "filter by user ID")
	history := fs.Bool("history", false, "keep history of updates (append mode)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &watchCommand{
		format:      *format,
		user:        *user,
		clearScreen: !*history, // clear screen unless history mode
		configPath:  configPath,
	}

	return cmd.Execute()
}

// runStatusCommand runs the status command.
func runStatusCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	format := fs.String("format", "simple", "output format (dashboard, simple, json)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &statusCommand{
		format:     *format,
		configPath: configPath,
	}
	return cmd.Execute()
}

// runToolsCommand runs the tools command.
func runToolsCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	hours := fs.Float64("hours", 0, "tool-usage window in hours (default: configured window)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &toolsCommand{
		hours:      *hours,
		configPath: configPath,
	}
	return cmd.Execute()
}

// runSessionsCommand runs the sessions command.
func runSessionsCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	user := fs.String("user", "", "filter by user ID")
	start := fs.String("start", "", "range start (RFC3339, '2006-01-02 15:04:05', or Unix seconds)")
	end := fs.String("end", "", "range end (same formats as -start)")
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 0, "rows per page (default: configured page size)")
	format := fs.String("format", "simple", "output format (dashboard, simple, json)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &sessionsCommand{
		user:       *user,
		start:      *start,
		end:        *end,
		page:       *page,
		pageSize:   *pageSize,
		format:     *format,
		configPath: configPath,
	}
	return cmd.Execute()
}

// runConfigCommand runs the config command.
func runConfigCommand(configPath string, args []string) error {
	cmd := &configCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// showUsage displays usage information.
func showUsage() error {
	usage := `Telemetry Monitor - live session telemetry dashboard

Usage:
  telemetry-monitor [flags] <command> [command flags]

Commands:
  watch       Live dashboard (poll, aggregate, render)
  status      One-shot session status counts
  tools       One-shot tool-usage heatmap
  sessions    One-shot session listing
  config      Configuration management (show, path, init)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -version    Show version information

Watch Command Flags:
  -format     Output format (dashboard, simple, json)
  -user       Filter by user ID
  -history    Keep history of updates (append mode, default: false)

Sessions Command Flags:
  -user       Filter by user ID
  -start      Range start (RFC3339, '2006-01-02 15:04:05', or Unix seconds)
  -end        Range end (same formats as -start)
  -page       Page number (default: 1)
  -page-size  Rows per page
  -format     Output format (dashboard, simple, json)

Examples:
  # Live dashboard
  telemetry-monitor watch

  # Live dashboard for one user, plain output
  telemetry-monitor watch -user alice -format simple

  # One-shot status counts
  telemetry-monitor status

  # Tool usage over the last 6 hours
  telemetry-monitor tools -hours 6

  # Second page of sessions in an explicit range
  telemetry-monitor sessions -start "2024-05-29 00:00:00" -end "2024-05-30 00:00:00" -page 2

  # Show current configuration
  telemetry-monitor config show

Version: %s
`

	fmt.Printf(usage, version)
	return nil
}
