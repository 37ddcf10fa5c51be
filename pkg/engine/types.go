package engine

import (
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/heatmap"
	"github.com/0xmhha/telemetry-monitor/pkg/paging"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/status"
	"github.com/0xmhha/telemetry-monitor/pkg/trend"
)

// Config holds the configuration for the monitor engine.
type Config struct {
	// FullInterval is the interval between full refreshes
	FullInterval time.Duration

	// SessionsInterval is the interval between session-only refreshes
	SessionsInterval time.Duration

	// WindowHours is the initial bucket window size in hours
	WindowHours float64

	// Immediate fires the first fetch synchronously on Start
	Immediate bool

	// PageSize is the initial rows-per-page for all tables
	PageSize int

	// Catalog is the known-tool catalog for the heatmap
	Catalog []heatmap.Tool
}

// UserUsage aggregates sessions per user for the users table.
type UserUsage struct {
	UserID     string
	Sessions   int
	Active     int
	TokenUsage int64
}

// Views is everything the render layer needs, derived from the latest
// applied snapshot. It is replaced wholesale on every refresh.
type Views struct {
	// FetchedAt is when the underlying snapshot was fetched
	FetchedAt time.Time

	// Window is the resolved bucket interval
	Window time.Duration

	// Trend is the token-usage series over the window
	Trend trend.Series

	// Status holds session counts by class
	Status status.Counts

	// Tools is the merged tool heatmap
	Tools []heatmap.Tile

	// Active is the current page of running sessions
	Active paging.Page[snapshot.Session]

	// History is the current page of completed sessions
	History paging.Page[snapshot.Session]

	// Users is the current page of per-user aggregates
	Users paging.Page[UserUsage]

	// Service holds backend service counters
	Service snapshot.Service

	// System holds host metrics, if reported
	System map[string]float64

	// Sandbox holds sandbox metrics, if reported
	Sandbox map[string]float64

	// ZoomLocked reports whether an explicit time range pins the window
	ZoomLocked bool

	// Skipped counts malformed sessions dropped at the ingestion boundary
	Skipped int
}
