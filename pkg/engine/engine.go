// Package engine ties the aggregation pipeline together: it polls the
// backend through a snapshot client, feeds the delta recorder, and
// derives the trend, status, heatmap, and paged-table views the render
// layer consumes.
//
// All mutable monitor state lives on the Engine struct; nothing is
// package-global, so independent instances never share state. Fetches
// are stamped with a monotonic sequence number and a completion whose
// sequence is no longer the latest issued is discarded, which keeps a
// slow full fetch from clobbering a faster one issued after it.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/heatmap"
	"github.com/0xmhha/telemetry-monitor/pkg/logger"
	"github.com/0xmhha/telemetry-monitor/pkg/paging"
	"github.com/0xmhha/telemetry-monitor/pkg/scheduler"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/status"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
	"github.com/0xmhha/telemetry-monitor/pkg/trend"
)

// Engine is the aggregate root of the monitor.
type Engine struct {
	config   Config
	logger   logger.Logger
	client   snapshot.Client
	recorder *trend.Recorder
	sched    *scheduler.Scheduler

	// seq stamps every issued fetch; completions carrying an older
	// stamp are discarded.
	seq atomic.Int64

	mu      sync.RWMutex
	running bool
	closed  bool
	ctx     context.Context

	// Filters.
	userFilter  string
	rng         *timewindow.Range
	windowHours float64
	zoomLocked  bool

	// Independent table cursors.
	activePage  *paging.State
	historyPage *paging.State
	usersPage   *paging.State

	// Latest applied snapshot and the views derived from it.
	last  *snapshot.Snapshot
	views Views

	updates chan Views
}

// New creates a monitor engine.
//
// Parameters:
//   - cfg: Engine configuration
//   - client: Snapshot client for backend fetches
//   - log: Logger instance
//
// Returns:
//   - Configured Engine
//   - Error if the client is nil
func New(cfg Config, client snapshot.Client, log logger.Logger) (*Engine, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	if cfg.FullInterval <= 0 {
		cfg.FullInterval = 30 * time.Second
	}
	if cfg.SessionsInterval <= 0 {
		cfg.SessionsInterval = 5 * time.Second
	}
	pageSize := paging.ResolvePageSize(cfg.PageSize)

	e := &Engine{
		config:      cfg,
		logger:      log,
		client:      client,
		recorder:    trend.NewRecorder(log),
		sched:       scheduler.New(log),
		windowHours: cfg.WindowHours,
		activePage:  paging.NewState(pageSize),
		historyPage: paging.NewState(pageSize),
		usersPage:   paging.NewState(pageSize),
		updates:     make(chan Views, 10),
	}

	log.Info("monitor engine created",
		"full_interval", cfg.FullInterval,
		"sessions_interval", cfg.SessionsInterval,
		"window_hours", cfg.WindowHours)

	return e, nil
}

// Start begins polling in full mode.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	if e.running {
		e.mu.Unlock()
		return ErrEngineRunning
	}
	e.running = true
	e.ctx = ctx
	e.mu.Unlock()

	err := e.sched.Start(scheduler.ModeFull, e.config.FullInterval, e.config.Immediate, e.tick)
	if err != nil {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	e.logger.Info("monitor engine started")
	return nil
}

// SetMode re-targets polling between full and sessions-only refreshes.
// Re-applying the current mode is a no-op.
func (e *Engine) SetMode(mode snapshot.Mode) error {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrEngineClosed
	}
	if !e.running {
		e.mu.RUnlock()
		return ErrEngineNotRunning
	}
	e.mu.RUnlock()

	interval := e.config.FullInterval
	schedMode := scheduler.ModeFull
	if mode == snapshot.ModeSessions {
		interval = e.config.SessionsInterval
		schedMode = scheduler.ModeSessions
	}

	return e.sched.Start(schedMode, interval, false, e.tick)
}

// Stop halts polling. The accumulated views and deltas are kept.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if !e.running {
		return ErrEngineNotRunning
	}

	e.sched.Stop()
	e.running = false

	e.logger.Info("monitor engine stopped")
	return nil
}

// Reset clears all accumulated state: deltas, filters, cursors, views.
// The fetch sequence is not reset; it stays monotonic for the lifetime
// of the engine.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recorder.Reset()
	e.userFilter = ""
	e.rng = nil
	e.zoomLocked = false
	e.windowHours = e.config.WindowHours

	pageSize := paging.ResolvePageSize(e.config.PageSize)
	e.activePage = paging.NewState(pageSize)
	e.historyPage = paging.NewState(pageSize)
	e.usersPage = paging.NewState(pageSize)

	e.last = nil
	e.views = Views{}

	e.logger.Info("monitor engine reset")
}

// Close stops the engine and releases the scheduler.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	e.sched.Close()
	e.running = false
	close(e.updates)

	e.logger.Info("monitor engine closed")
	return nil
}

// Views returns the latest derived views.
func (e *Engine) Views() Views {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.views
}

// Updates returns a channel carrying each newly derived Views value.
// Updates are dropped rather than blocking a slow consumer.
func (e *Engine) Updates() <-chan Views {
	return e.updates
}

// tick is the scheduler callback; poll errors are logged and swallowed
// so the scheduler keeps retrying at its fixed interval.
func (e *Engine) tick(mode scheduler.Mode) {
	e.mu.RLock()
	ctx := e.ctx
	e.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	fetchMode := snapshot.ModeFull
	if mode == scheduler.ModeSessions {
		fetchMode = snapshot.ModeSessions
	}

	if err := e.Refresh(ctx, fetchMode); err != nil {
		e.logger.Warn("refresh failed, retrying at next tick",
			"mode", mode,
			"error", err)
	}
}

// Refresh fetches one snapshot and, if it is still the latest issued
// fetch when it completes, applies it and re-derives all views.
func (e *Engine) Refresh(ctx context.Context, mode snapshot.Mode) error {
	seq := e.seq.Add(1)

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrEngineClosed
	}
	query := snapshot.Query{
		Mode:   mode,
		Hours:  e.windowHours,
		UserID: e.userFilter,
	}
	if e.rng != nil {
		r := *e.rng
		query.Range = &r
	}
	e.mu.RUnlock()

	snap, err := e.client.Fetch(ctx, query)
	if err != nil {
		return fmt.Errorf("snapshot fetch failed: %w", err)
	}

	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if seq != e.seq.Load() {
		e.logger.Debug("discarding stale snapshot",
			"seq", seq,
			"latest", e.seq.Load())
		return ErrStaleSnapshot
	}

	// Ingest token counters before pruning so a delta recorded at the
	// horizon edge is judged against the fresh horizon.
	e.recorder.Observe(snap.Sessions, now)

	window := timewindow.Window(e.windowHours)
	horizon := trend.Horizon(now, window, e.rng)
	if pruned := e.recorder.Prune(horizon); pruned > 0 {
		e.logger.Debug("pruned expired deltas", "count", pruned)
	}

	if mode == snapshot.ModeSessions && e.last != nil {
		// Sessions-mode snapshots carry no tool or service data; keep
		// the previous full snapshot's copy of those.
		snap.ToolStats = e.last.ToolStats
		snap.Service = e.last.Service
		snap.System = e.last.System
		snap.Sandbox = e.last.Sandbox
	}
	e.last = snap

	e.rebuildLocked(now)
	e.publishLocked()

	return nil
}

// SetWindowHours changes the bucket window size. Non-finite and
// non-positive values fall back to the default at resolution time.
func (e *Engine) SetWindowHours(hours float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.windowHours = hours
	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// SetUserFilter restricts views to one user. Empty clears the filter.
func (e *Engine) SetUserFilter(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.userFilter = userID
	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// SetRange pins the views to an explicit time range (zoom lock).
func (e *Engine) SetRange(r timewindow.Range) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rng = &r
	e.zoomLocked = true
	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// ClearRange releases a zoom lock, returning to the rolling window.
func (e *Engine) ClearRange() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rng = nil
	e.zoomLocked = false
	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// SetActivePage moves the active-sessions table cursor.
func (e *Engine) SetActivePage(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activePage.Current = page
	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// SetHistoryPage moves the history table cursor.
func (e *Engine) SetHistoryPage(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.historyPage.Current = page
	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// SetUsersPage moves the users table cursor.
func (e *Engine) SetUsersPage(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.usersPage.Current = page
	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// SetPageSize changes the rows-per-page of all tables and resets their
// cursors to the first page.
func (e *Engine) SetPageSize(size int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	resolved := paging.ResolvePageSize(size)
	e.activePage = paging.NewState(resolved)
	e.historyPage = paging.NewState(resolved)
	e.usersPage = paging.NewState(resolved)

	e.rebuildLocked(time.Now())
	e.publishLocked()
}

// rebuildLocked re-derives all views from the last applied snapshot.
// Callers must hold e.mu.
func (e *Engine) rebuildLocked(now time.Time) {
	if e.last == nil {
		e.views = Views{}
		return
	}

	window := timewindow.Window(e.windowHours)
	sessions := e.filterSessions(e.last.Sessions)
	filter := e.effectiveRange(now, window)

	active := make([]snapshot.Session, 0, len(sessions))
	history := make([]snapshot.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Active() {
			active = append(active, s)
		} else {
			history = append(history, s)
		}
	}

	e.views = Views{
		FetchedAt:  e.last.FetchedAt,
		Window:     window,
		Trend:      e.recorder.Build(sessions, window, e.rng, now),
		Status:     status.Classify(sessions, filter),
		Tools:      heatmap.Merge(e.config.Catalog, e.last.ToolStats),
		Active:     paging.Slice(active, e.activePage),
		History:    paging.Slice(history, e.historyPage),
		Users:      paging.Slice(aggregateUsers(sessions), e.usersPage),
		Service:    e.last.Service,
		System:     e.last.System,
		Sandbox:    e.last.Sandbox,
		ZoomLocked: e.zoomLocked,
		Skipped:    e.last.Skipped,
	}
}

// publishLocked sends the current views without blocking. Callers must
// hold e.mu.
func (e *Engine) publishLocked() {
	if e.closed {
		return
	}

	select {
	case e.updates <- e.views:
	default:
		e.logger.Warn("updates channel full, dropping update")
	}
}

// filterSessions applies the user filter client-side so a filter change
// takes effect immediately, before the next fetch round-trips.
func (e *Engine) filterSessions(sessions []snapshot.Session) []snapshot.Session {
	if e.userFilter == "" {
		return sessions
	}

	filtered := make([]snapshot.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.UserID == e.userFilter {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// effectiveRange is the explicit zoom range if set, otherwise the
// rolling "now minus window" range.
func (e *Engine) effectiveRange(now time.Time, window time.Duration) *timewindow.Range {
	if e.rng != nil {
		r := *e.rng
		return &r
	}
	return &timewindow.Range{Start: now.Add(-window), End: now}
}

// aggregateUsers groups sessions per user, preserving first-seen order.
func aggregateUsers(sessions []snapshot.Session) []UserUsage {
	index := make(map[string]int)
	users := make([]UserUsage, 0)

	for _, s := range sessions {
		i, ok := index[s.UserID]
		if !ok {
			i = len(users)
			index[s.UserID] = i
			users = append(users, UserUsage{UserID: s.UserID})
		}

		users[i].Sessions++
		if s.Active() {
			users[i].Active++
		}
		users[i].TokenUsage += s.TokenUsage
	}

	return users
}
