// Package timewindow resolves user-supplied time filters into concrete
// boundaries for telemetry aggregation.
//
// A filter is either a rolling window ("last N hours") or an explicit
// start/end range. Bucket boundaries are aligned to multiples of the
// bucket interval counted from local midnight, so bucket edges land at
// stable, human-readable times of day (e.g. every 3 hours from 00:00)
// instead of arbitrary Unix-epoch offsets.
package timewindow

import (
	"math"
	"strconv"
	"time"
)

// DefaultWindow is the rolling window used when the configured window
// size is missing or invalid.
const DefaultWindow = 3 * time.Hour

// Range is a concrete, resolved time filter.
//
// Invariant: End is strictly after Start.
type Range struct {
	// Start is the inclusive lower boundary.
	Start time.Time

	// End is the inclusive upper boundary.
	End time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Duration returns the length of the range.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Window resolves a configured window size in hours to a duration.
//
// Non-finite or non-positive values fall back to DefaultWindow, so a bad
// user input never produces a zero or negative window. The result is
// always > 0.
func Window(hours float64) time.Duration {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return DefaultWindow
	}
	return time.Duration(hours * float64(time.Hour))
}

// ParseRange resolves explicit start/end inputs into a Range.
//
// Each input may be a fractional Unix-seconds number or a date string
// (RFC3339, "2006-01-02 15:04:05", or "2006-01-02"). Returns ok=false
// unless both inputs parse and end is after start; callers must fall
// back to the rolling window in that case.
func ParseRange(start, end string) (Range, bool) {
	s, ok := ParseTime(start)
	if !ok {
		return Range{}, false
	}

	e, ok := ParseTime(end)
	if !ok {
		return Range{}, false
	}

	if !e.After(s) {
		return Range{}, false
	}

	return Range{Start: s, End: e}, true
}

// ParseTime parses a single date-like input.
//
// Accepted forms, tried in order:
//  1. Fractional Unix seconds ("1717000000", "1717000000.25")
//  2. RFC3339 ("2024-05-29T15:00:00Z")
//  3. Local date-time ("2024-05-29 15:00:00")
//  4. Local date ("2024-05-29")
func ParseTime(input string) (time.Time, bool) {
	if input == "" {
		return time.Time{}, false
	}

	if secs, err := strconv.ParseFloat(input, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return time.Time{}, false
		}
		return FromUnixSeconds(secs), true
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, input, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// FromUnixSeconds converts fractional Unix seconds to a time.Time.
func FromUnixSeconds(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}

// ToUnixSeconds converts a time.Time to fractional Unix seconds.
func ToUnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FloorToBoundary aligns t down to the nearest multiple of interval
// counted from local midnight of t's day.
//
// For every t: FloorToBoundary(t, iv) <= t < FloorToBoundary(t, iv) + iv,
// provided iv evenly divides a day or t falls before the last partial
// boundary. Intervals <= 0 return t unchanged.
func FloorToBoundary(t time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return t
	}

	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)

	return midnight.Add(offset - offset%interval)
}
