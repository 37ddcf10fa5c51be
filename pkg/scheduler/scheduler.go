// Package scheduler drives the monitor's periodic refresh ticks.
//
// A scheduler runs at most one timer. Restarting with the same mode and
// interval is a no-op; restarting with either changed tears the old
// timer down first, so two timers never coexist. Stopping is
// idempotent.
package scheduler

import (
	"sync"
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/logger"
)

// Mode selects what a refresh tick rebuilds.
type Mode string

const (
	// ModeFull rebuilds the trend, status, and heatmap views.
	ModeFull Mode = "full"

	// ModeSessions refreshes the session list only (cheaper).
	ModeSessions Mode = "sessions"
)

// TickFunc is invoked on every tick with the active mode.
type TickFunc func(mode Mode)

// Scheduler runs periodic refresh ticks in one of two modes.
type Scheduler struct {
	logger logger.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	mode     Mode
	interval time.Duration
	stopChan chan struct{}
}

// New creates a stopped scheduler.
func New(log logger.Logger) *Scheduler {
	return &Scheduler{
		logger: log,
	}
}

// Start begins (or re-targets) periodic ticking.
//
// Parameters:
//   - mode: Refresh mode passed to every tick
//   - interval: Tick interval, must be > 0
//   - immediate: Fire the first tick synchronously before returning
//   - fn: Tick callback
//
// Starting while already running with the same mode and interval is a
// no-op (the immediate flag is ignored in that case). A different mode
// or interval stops the current timer and starts a new one.
func (s *Scheduler) Start(mode Mode, interval time.Duration, immediate bool, fn TickFunc) error {
	if fn == nil {
		return ErrNilTickFunc
	}
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}

	if s.running && s.mode == mode && s.interval == interval {
		s.mu.Unlock()
		return nil
	}

	if s.running {
		close(s.stopChan)
		s.logger.Debug("scheduler re-targeted",
			"old_mode", s.mode,
			"old_interval", s.interval,
			"new_mode", mode,
			"new_interval", interval)
	}

	s.running = true
	s.mode = mode
	s.interval = interval
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	s.logger.Info("scheduler started",
		"mode", mode,
		"interval", interval,
		"immediate", immediate)

	if immediate {
		fn(mode)
	}

	go s.loop(stop, mode, interval, fn)

	return nil
}

// Stop halts ticking. Safe to call repeatedly and on a scheduler that
// never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopChan)
	s.running = false

	s.logger.Info("scheduler stopped", "mode", s.mode)
}

// Running reports the active mode and interval, if any.
func (s *Scheduler) Running() (Mode, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return "", 0, false
	}
	return s.mode, s.interval, true
}

// Close stops the scheduler and rejects further starts.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.running {
		close(s.stopChan)
		s.running = false
	}
}

// loop ticks until its stop channel closes. Each loop owns the channel
// it was started with, so a re-targeted scheduler cleanly orphans the
// old loop.
func (s *Scheduler) loop(stop <-chan struct{}, mode Mode, interval time.Duration, fn TickFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return

		case <-ticker.C:
			fn(mode)
		}
	}
}
