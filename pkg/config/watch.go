package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xmhha/telemetry-monitor/pkg/logger"
)

// Watcher reloads the configuration file when it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file (rename-over-write) keep triggering
// reloads. Reloads are debounced, and a reload that fails validation
// keeps the last good configuration.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	path   string

	updates chan *Config

	mu       sync.Mutex
	running  bool
	closed   bool
	stopChan chan struct{}

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// debounceInterval coalesces the burst of fsnotify events an editor
// emits for a single save.
const debounceInterval = 200 * time.Millisecond

// NewWatcher creates a watcher for the given config file path.
func NewWatcher(path string, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsw:      fsw,
		logger:   log,
		path:     path,
		updates:  make(chan *Config, 1),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching the config file's directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyWatching
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("config watcher started", "path", w.path)

	go w.processEvents()

	return nil
}

// Updates delivers each successfully reloaded configuration.
//
// The channel is buffered with capacity one and older pending updates
// are dropped: a slow consumer only ever sees the newest config.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Close stops watching and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.running {
		close(w.stopChan)
		w.running = false
	}

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()

	if err := w.fsw.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Info("config watcher closed")
	return nil
}

// processEvents handles events from fsnotify.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", "error", err)
		}
	}
}

// handleEvent filters directory events down to writes of the watched
// file and schedules a debounced reload.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceInterval, w.reload)
}

// reload re-reads the config file and publishes it if valid.
func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	cfg, err := LoadFromFile(w.path)
	if err != nil {
		// Keep the last good configuration.
		w.logger.Warn("config reload failed, keeping previous",
			"path", w.path,
			"error", err)
		return
	}

	// Drop a pending update so the consumer only sees the newest.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg

	w.logger.Info("config reloaded", "path", w.path)
}
