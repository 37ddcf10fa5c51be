// Package snapshot fetches and normalizes monitor snapshots from the
// admin console backend.
//
// The backend's wire format is loose: timestamps arrive as fractional
// Unix seconds, numeric strings, or date strings depending on mode, and
// field presence varies between full and sessions-only responses. This
// package normalizes the wire format onto a strict internal schema in a
// single pass, so downstream aggregation never re-derives fallbacks.
package snapshot

import (
	"context"
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// Session statuses reported by the backend.
const (
	StatusRunning    = "running"
	StatusCancelling = "cancelling"
	StatusFinished   = "finished"
	StatusError      = "error"
	StatusCancelled  = "cancelled"
)

// Session is one session record from a monitor snapshot.
//
// TokenUsage is a cumulative counter: it is monotonically non-decreasing
// for a given session ID while the session is active. A decrease means a
// new session reused the ID and the delta baseline must reset.
type Session struct {
	// ID is the session identifier.
	ID string

	// UserID is the owning user.
	UserID string

	// Status is one of the Status* constants (unknown values pass through).
	Status string

	// TokenUsage is the cumulative token counter.
	TokenUsage int64

	// StartTime is when the session started. Zero if unknown.
	StartTime time.Time

	// UpdatedTime is the last backend update. Zero if unknown.
	UpdatedTime time.Time

	// ElapsedSec is the session duration in seconds.
	ElapsedSec float64

	// Stage is the backend's current pipeline stage label.
	Stage string

	// Question is the user prompt that opened the session.
	Question string
}

// Timestamp resolves the session's observation time, preferring
// UpdatedTime and falling back to StartTime. ok is false when neither
// is set.
func (s Session) Timestamp() (time.Time, bool) {
	if !s.UpdatedTime.IsZero() {
		return s.UpdatedTime, true
	}
	if !s.StartTime.IsZero() {
		return s.StartTime, true
	}
	return time.Time{}, false
}

// Active reports whether the session is still in flight.
func (s Session) Active() bool {
	return s.Status == StatusRunning || s.Status == StatusCancelling
}

// Service holds backend-computed service-level counters.
type Service struct {
	ActiveSessions    int
	HistorySessions   int
	FinishedSessions  int
	ErrorSessions     int
	CancelledSessions int
	TotalSessions     int
	RecentCompleted   int
	AvgElapsedSec     float64
	AvgPrefillTPS     float64
	AvgDecodeTPS      float64
}

// ToolStat is one entry of the sparse per-tool call-count list.
type ToolStat struct {
	// Tool is the tool name.
	Tool string

	// Calls is the number of invocations in the queried window.
	Calls int
}

// Snapshot is a fully normalized monitor snapshot.
//
// A snapshot is owned by the polling cycle that fetched it and replaced
// wholesale on every successful fetch; it is never partially merged.
type Snapshot struct {
	// Sessions are the session records, in server order.
	Sessions []Session

	// Service holds service-level counters (zero value in sessions mode).
	Service Service

	// ToolStats is the sparse tool call-count list.
	ToolStats []ToolStat

	// System holds optional host metrics keyed by name.
	System map[string]float64

	// Sandbox holds optional sandbox metrics keyed by name.
	Sandbox map[string]float64

	// FetchedAt is when this snapshot was received.
	FetchedAt time.Time

	// Skipped counts malformed session entries dropped during
	// normalization.
	Skipped int
}

// Mode selects how much of the snapshot a fetch requests.
type Mode string

const (
	// ModeFull requests sessions, service counters, tool stats, and
	// host metrics.
	ModeFull Mode = "full"

	// ModeSessions requests the session list only (cheaper; used by the
	// lightweight refresh path).
	ModeSessions Mode = "sessions"
)

// Query describes one snapshot fetch.
//
// When Range is nil the backend is asked for a rolling "last Hours"
// window via tool_hours; otherwise start_time/end_time are sent as
// fractional Unix seconds. Both forms mirror what the engine's own
// bucket math resolves, keeping client and server windows in sync.
type Query struct {
	// Mode selects full or sessions-only fetching.
	Mode Mode

	// Hours is the rolling window size. Ignored when Range is set.
	Hours float64

	// Range is an optional explicit time filter.
	Range *timewindow.Range

	// UserID optionally restricts the snapshot to one user.
	UserID string
}

// Client fetches monitor snapshots.
type Client interface {
	// Fetch retrieves and normalizes one snapshot.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//   - q: Fetch query
	//
	// Returns the normalized snapshot or an error. Transport and parse
	// errors are both reported through the error return; a non-nil
	// snapshot is always fully normalized.
	Fetch(ctx context.Context, q Query) (*Snapshot, error)
}
