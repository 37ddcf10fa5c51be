package trend

import (
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// Build aggregates the retained deltas into a gap-filled bucket series.
//
// The bucket width is the resolved window. Under an explicit filter the
// series runs from the aligned filter start to the filter end;
// otherwise from the aligned earliest relevant point (earliest session
// start or earliest delta, never before the retention horizon) to now.
// With no data at all the series collapses to a single zero-value
// anchor at the aligned now.
//
// A delta exactly on a bucket boundary belongs to the bucket it starts:
// buckets are half-open intervals [start, start+interval).
func (r *Recorder) Build(sessions []snapshot.Session, window time.Duration, filter *timewindow.Range, now time.Time) Series {
	interval := window
	if interval <= 0 {
		interval = timewindow.DefaultWindow
	}

	var start, end time.Time
	if filter != nil {
		start = timewindow.FloorToBoundary(filter.Start, interval)
		end = filter.End
	} else {
		start = timewindow.FloorToBoundary(r.seriesOrigin(sessions, window, now), interval)
		end = now
	}

	if end.Before(start) {
		end = start
	}

	r.mu.Lock()
	// Sparse bucket sums: degenerate windows must not allocate a dense
	// array across the whole span.
	sums := make(map[int]int64)
	for _, d := range r.deltas {
		if d.At.Before(start) || d.At.After(end) {
			continue
		}
		idx := int(d.At.Sub(start) / interval)
		sums[idx] += d.Value
	}
	r.mu.Unlock()

	var (
		labels []string
		values []int64
	)

	for t, idx := start, 0; !t.After(end); t, idx = t.Add(interval), idx+1 {
		labels = append(labels, formatBucketLabel(t, interval))
		values = append(values, sums[idx])
	}

	return Series{
		Labels: labels,
		Values: values,
		Latest: values[len(values)-1],
	}
}

// seriesOrigin finds the unaligned start of an unfiltered series: the
// older of the earliest session start and the earliest delta, clamped
// to the retention horizon so the chart never reaches past retained
// history. Falls back to now when there is nothing to show, collapsing
// the series to its anchor bucket.
func (r *Recorder) seriesOrigin(sessions []snapshot.Session, window time.Duration, now time.Time) time.Time {
	origin := time.Time{}

	earliest := func(candidate time.Time) {
		if candidate.IsZero() {
			return
		}
		if origin.IsZero() || candidate.Before(origin) {
			origin = candidate
		}
	}

	for _, sess := range sessions {
		earliest(sess.StartTime)
	}

	r.mu.Lock()
	for _, d := range r.deltas {
		earliest(d.At)
	}
	r.mu.Unlock()

	if origin.IsZero() {
		return now
	}

	if horizon := Horizon(now, window, nil); !horizon.IsZero() && origin.Before(horizon) {
		origin = horizon
	}
	return origin
}

// formatBucketLabel renders a bucket start time. Day-sized and larger
// buckets drop the time of day.
func formatBucketLabel(t time.Time, interval time.Duration) string {
	if interval >= 24*time.Hour {
		return t.Format("2006-01-02")
	}
	return t.Format("01-02 15:04")
}
