package trend

import (
	"sync"
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/logger"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// Recorder converts cumulative token counters into deltas and keeps the
// retained delta history.
//
// All state lives on the struct; independent Recorders (e.g. in tests)
// never share baselines.
type Recorder struct {
	logger logger.Logger

	mu        sync.Mutex
	lastUsage map[string]int64 // session ID -> last observed cumulative counter
	deltas    []Delta
}

// NewRecorder creates a delta recorder.
func NewRecorder(log logger.Logger) *Recorder {
	return &Recorder{
		logger:    log,
		lastUsage: make(map[string]int64),
	}
}

// Observe records deltas for one polled session list.
//
// For each session the delta is the counter increase since the last
// observation (baseline 0 for unseen IDs). Only positive increases
// produce a Delta, timestamped with the session's own time when it has
// one and now otherwise. The baseline is overwritten regardless of
// sign, so a counter reset (session ID reuse, backend restart) yields
// no garbage delta and the new baseline takes effect on the next tick.
//
// Returns the number of deltas recorded.
func (r *Recorder) Observe(sessions []snapshot.Session, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	recorded := 0
	for _, sess := range sessions {
		delta := sess.TokenUsage - r.lastUsage[sess.ID]

		if delta > 0 {
			at, ok := sess.Timestamp()
			if !ok {
				at = now
			}

			r.deltas = append(r.deltas, Delta{At: at, Value: delta})
			recorded++
		} else if delta < 0 {
			r.logger.Debug("token counter reset, baseline rebased",
				"session", sess.ID,
				"previous", r.lastUsage[sess.ID],
				"current", sess.TokenUsage)
		}

		r.lastUsage[sess.ID] = sess.TokenUsage
	}

	if recorded > 0 {
		r.logger.Debug("deltas recorded",
			"count", recorded,
			"retained", len(r.deltas))
	}

	return recorded
}

// Horizon resolves the retention horizon for pruning.
//
// Under an explicit filter the horizon is the filter start: deltas
// before it are permanently dropped, not just hidden. Otherwise the
// horizon is now minus max(window, window*RetentionBuckets). A window
// <= 0 returns the zero time, which disables pruning.
func Horizon(now time.Time, window time.Duration, filter *timewindow.Range) time.Time {
	if filter != nil {
		return filter.Start
	}

	if window <= 0 {
		return time.Time{}
	}

	retention := window * RetentionBuckets
	if retention < window {
		retention = window
	}

	return now.Add(-retention)
}

// Prune discards deltas older than the horizon.
//
// A zero horizon is a no-op (retention disabled). Pruning is
// idempotent: pruning twice with the same horizon drops nothing the
// second time.
//
// Returns the number of deltas dropped.
func (r *Recorder) Prune(horizon time.Time) int {
	if horizon.IsZero() {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.deltas[:0]
	for _, d := range r.deltas {
		if !d.At.Before(horizon) {
			kept = append(kept, d)
		}
	}

	dropped := len(r.deltas) - len(kept)
	r.deltas = kept

	if dropped > 0 {
		r.logger.Debug("deltas pruned",
			"dropped", dropped,
			"retained", len(r.deltas),
			"horizon", horizon)
	}

	return dropped
}

// Deltas returns a copy of the retained delta list.
func (r *Recorder) Deltas() []Delta {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Delta, len(r.deltas))
	copy(out, r.deltas)
	return out
}

// Len returns the number of retained deltas.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.deltas)
}

// Reset clears all baselines and retained deltas.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastUsage = make(map[string]int64)
	r.deltas = nil
}
