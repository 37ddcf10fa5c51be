// Package trend turns cumulative per-session token counters into a
// time-bucketed usage series for the dashboard's trend chart.
//
// The pipeline runs in three stages on every poll: delta recording
// (cumulative counters to positive increments), retention pruning
// (bounding history to a fixed number of bucket widths), and bucket
// aggregation (gap-filled, boundary-aligned label/value series).
//
// Example usage:
//
//	rec := trend.NewRecorder(logger.Default())
//	rec.Observe(snap.Sessions, time.Now())
//	rec.Prune(trend.Horizon(time.Now(), window, nil))
//	series := rec.Build(snap.Sessions, window, nil, time.Now())
package trend

import (
	"time"
)

// RetentionBuckets bounds how many bucket widths of delta history are
// retained when no explicit time filter is active.
const RetentionBuckets = 96

// Delta is one observed positive increase of a session's cumulative
// token counter. Immutable once created; destroyed only by pruning.
type Delta struct {
	// At is the observation timestamp.
	At time.Time

	// Value is the positive token increment.
	Value int64
}

// Series is a gap-filled, ordered bucket series.
//
// Labels and Values always have the same length and at least one
// element (the zero-value anchor at the series start).
type Series struct {
	// Labels are the formatted bucket start times, in order.
	Labels []string

	// Values are the per-bucket delta sums.
	Values []int64

	// Latest is the last bucket's value, used for the current-rate
	// readout.
	Latest int64
}
