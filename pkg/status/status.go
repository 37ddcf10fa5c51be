// Package status partitions session lists into status categories for
// the dashboard's status ring.
package status

import (
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// Counts holds the per-category session counts for one time window.
type Counts struct {
	// Active counts running and cancelling sessions.
	Active int

	// Finished counts successfully completed sessions.
	Finished int

	// Error counts failed sessions.
	Error int

	// Cancelled counts user-cancelled sessions.
	Cancelled int
}

// Total returns the number of classified sessions.
func (c Counts) Total() int {
	return c.Active + c.Finished + c.Error + c.Cancelled
}

// Empty reports whether no sessions were classified. Callers use this
// to render a neutral ring instead of a misleading all-one-category
// ring.
func (c Counts) Empty() bool {
	return c.Total() == 0
}

// Classify partitions sessions into status categories.
//
// When filter is non-nil, only sessions whose resolved timestamp falls
// inside the range are counted. Sessions with no resolvable timestamp
// are included in every window (fail-open): excluding them would hide
// malformed records silently.
//
// Unknown statuses fall into no category, so Total() can be smaller
// than the filtered session count when the backend introduces new
// statuses.
func Classify(sessions []snapshot.Session, filter *timewindow.Range) Counts {
	var counts Counts

	for _, sess := range sessions {
		if filter != nil {
			if ts, ok := sess.Timestamp(); ok && !filter.Contains(ts) {
				continue
			}
		}

		switch sess.Status {
		case snapshot.StatusRunning, snapshot.StatusCancelling:
			counts.Active++
		case snapshot.StatusFinished:
			counts.Finished++
		case snapshot.StatusError:
			counts.Error++
		case snapshot.StatusCancelled:
			counts.Cancelled++
		}
	}

	return counts
}

// DisplayStatus maps a backend status to its display label. The
// backend reports "error"; the dashboard shows "failed".
func DisplayStatus(status string) string {
	if status == snapshot.StatusError {
		return "failed"
	}
	return status
}
