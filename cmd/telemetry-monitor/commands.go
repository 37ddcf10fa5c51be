package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xmhha/telemetry-monitor/pkg/config"
	"github.com/0xmhha/telemetry-monitor/pkg/display"
	"github.com/0xmhha/telemetry-monitor/pkg/engine"
	"github.com/0xmhha/telemetry-monitor/pkg/heatmap"
	"github.com/0xmhha/telemetry-monitor/pkg/logger"
	"github.com/0xmhha/telemetry-monitor/pkg/prefs"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// toolCatalog is the known-tool catalog; uncatalogued tools reported by
// the backend are appended under the "other" category.
var toolCatalog = []heatmap.Tool{
	{Name: "search", Category: "retrieval"},
	{Name: "fetch_url", Category: "retrieval"},
	{Name: "read_file", Category: "files"},
	{Name: "write_file", Category: "files"},
	{Name: "edit_file", Category: "files"},
	{Name: "bash", Category: "shell"},
	{Name: "python", Category: "shell"},
	{Name: "browser", Category: "web"},
}

// initialize loads configuration and builds the logger.
func initialize(configPath string) (*config.Config, logger.Logger, error) {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	return cfg, log, nil
}

// buildEngine wires a snapshot client and monitor engine from config.
func buildEngine(cfg *config.Config, log logger.Logger) (*engine.Engine, error) {
	client, err := snapshot.NewClient(snapshot.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot client: %w", err)
	}

	eng, err := engine.New(engine.Config{
		FullInterval:     cfg.Monitoring.FullInterval,
		SessionsInterval: cfg.Monitoring.SessionsInterval,
		WindowHours:      cfg.Monitoring.WindowHours,
		Immediate:        cfg.Monitoring.Immediate,
		PageSize:         cfg.Display.PageSize,
		Catalog:          toolCatalog,
	}, client, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return eng, nil
}

// watchCommand runs the live dashboard.
type watchCommand struct {
	format      string
	user        string
	clearScreen bool
	configPath  string
}

// Execute runs the watch command.
func (c *watchCommand) Execute() error {
	cfg, log, err := initialize(c.configPath)
	if err != nil {
		return err
	}

	// Stored preferences override config defaults for the view knobs.
	store, err := prefs.New(prefs.Config{DBPath: cfg.Storage.PrefsPath}, log)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error("failed to close preferences", "error", closeErr)
		}
	}()

	stored, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	if stored.WindowHours > 0 {
		cfg.Monitoring.WindowHours = stored.WindowHours
	}
	if stored.PageSize > 0 {
		cfg.Display.PageSize = stored.PageSize
	}
	colorEnabled := cfg.Display.ColorEnabled && stored.ColorEnabled

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := eng.Close(); closeErr != nil {
			log.Error("failed to close engine", "error", closeErr)
		}
	}()

	if c.user != "" {
		eng.SetUserFilter(c.user)
	}

	formatter := display.New(display.AutoConfig(display.Format(c.format), colorEnabled))

	// Live config reload: window changes apply without a restart.
	watcher := c.startConfigWatcher(eng, log)
	if watcher != nil {
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil {
				log.Error("failed to close config watcher", "error", closeErr)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer func() {
		if stopErr := eng.Stop(); stopErr != nil && stopErr != engine.ErrEngineNotRunning {
			log.Error("failed to stop engine", "error", stopErr)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			fmt.Println("\nStopping...")

			// Persist the view knobs for the next run.
			stored.WindowHours = cfg.Monitoring.WindowHours
			stored.PageSize = cfg.Display.PageSize
			stored.ColorEnabled = colorEnabled
			if saveErr := store.Save(stored); saveErr != nil {
				log.Error("failed to save preferences", "error", saveErr)
			}
			return nil

		case views, ok := <-eng.Updates():
			if !ok {
				return nil
			}

			if c.clearScreen {
				fmt.Print("\033[2J\033[H")
			}
			if renderErr := formatter.FormatViews(os.Stdout, views); renderErr != nil {
				log.Error("render failed", "error", renderErr)
			}
		}
	}
}

// startConfigWatcher wires live config reload into the engine. A nil
// return means no config file exists to watch; the dashboard still runs.
func (c *watchCommand) startConfigWatcher(eng *engine.Engine, log logger.Logger) *config.Watcher {
	path := c.configPath
	if path == "" {
		return nil
	}

	watcher, err := config.NewWatcher(path, log)
	if err != nil {
		log.Warn("config reload unavailable", "error", err)
		return nil
	}
	if err := watcher.Start(); err != nil {
		log.Warn("config reload unavailable", "error", err)
		return nil
	}

	go func() {
		for cfg := range watcher.Updates() {
			eng.SetWindowHours(cfg.Monitoring.WindowHours)
			log.Info("applied reloaded config",
				"window_hours", cfg.Monitoring.WindowHours)
		}
	}()

	return watcher
}

// statusCommand prints one-shot status counts.
type statusCommand struct {
	format     string
	configPath string
}

// Execute runs the status command.
func (c *statusCommand) Execute() error {
	views, _, err := fetchOnce(c.configPath, snapshot.ModeFull, nil)
	if err != nil {
		return err
	}

	formatter := display.New(display.AutoConfig(display.Format(c.format), true))
	return formatter.FormatViews(os.Stdout, views)
}

// toolsCommand prints the one-shot tool-usage heatmap.
type toolsCommand struct {
	hours      float64
	configPath string
}

// Execute runs the tools command.
func (c *toolsCommand) Execute() error {
	views, _, err := fetchOnce(c.configPath, snapshot.ModeFull, func(cfg *config.Config, eng *engine.Engine) {
		if c.hours > 0 {
			eng.SetWindowHours(c.hours)
		}
	})
	if err != nil {
		return err
	}

	if len(views.Tools) == 0 {
		fmt.Println("No tool usage data")
		return nil
	}

	fmt.Printf("%-20s %-12s %8s  %s\n", "TOOL", "CATEGORY", "CALLS", "COLOR")
	for _, tile := range views.Tools {
		fmt.Printf("%-20s %-12s %8d  %s\n", tile.Name, tile.Category, tile.Calls, tile.Color)
	}
	return nil
}

// sessionsCommand prints a one-shot session listing.
type sessionsCommand struct {
	user       string
	start      string
	end        string
	page       int
	pageSize   int
	format     string
	configPath string
}

// Execute runs the sessions command.
func (c *sessionsCommand) Execute() error {
	var rng *timewindow.Range
	if c.start != "" || c.end != "" {
		r, ok := timewindow.ParseRange(c.start, c.end)
		if !ok {
			return fmt.Errorf("invalid time range: start=%q end=%q", c.start, c.end)
		}
		rng = &r
	}

	views, _, err := fetchOnce(c.configPath, snapshot.ModeSessions, func(cfg *config.Config, eng *engine.Engine) {
		if c.user != "" {
			eng.SetUserFilter(c.user)
		}
		if rng != nil {
			eng.SetRange(*rng)
		}
		if c.pageSize > 0 {
			eng.SetPageSize(c.pageSize)
		}
		if c.page > 1 {
			eng.SetActivePage(c.page)
			eng.SetHistoryPage(c.page)
		}
	})
	if err != nil {
		return err
	}

	formatter := display.New(display.AutoConfig(display.Format(c.format), true))
	return formatter.FormatViews(os.Stdout, views)
}

// fetchOnce builds an engine, applies setup, performs a single refresh,
// and returns the derived views.
func fetchOnce(configPath string, mode snapshot.Mode, setup func(*config.Config, *engine.Engine)) (engine.Views, logger.Logger, error) {
	cfg, log, err := initialize(configPath)
	if err != nil {
		return engine.Views{}, nil, err
	}

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return engine.Views{}, nil, err
	}
	defer func() {
		if closeErr := eng.Close(); closeErr != nil {
			log.Error("failed to close engine", "error", closeErr)
		}
	}()

	if setup != nil {
		setup(cfg, eng)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout*2)
	defer cancel()

	if err := eng.Refresh(ctx, mode); err != nil {
		return engine.Views{}, nil, err
	}

	return eng.Views(), log, nil
}
