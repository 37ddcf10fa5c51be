package status

import (
	"testing"
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

func sessionAt(id, status string, at time.Time) snapshot.Session {
	return snapshot.Session{ID: id, Status: status, UpdatedTime: at}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sessions := []snapshot.Session{
		sessionAt("s1", snapshot.StatusRunning, now),
		sessionAt("s2", snapshot.StatusCancelling, now),
		sessionAt("s3", snapshot.StatusFinished, now),
		sessionAt("s4", snapshot.StatusError, now),
		sessionAt("s5", snapshot.StatusError, now),
		sessionAt("s6", snapshot.StatusCancelled, now),
	}

	counts := Classify(sessions, nil)

	if counts.Active != 2 {
		t.Errorf("Active = %d, want 2 (running + cancelling)", counts.Active)
	}
	if counts.Finished != 1 {
		t.Errorf("Finished = %d, want 1", counts.Finished)
	}
	if counts.Error != 2 {
		t.Errorf("Error = %d, want 2", counts.Error)
	}
	if counts.Cancelled != 1 {
		t.Errorf("Cancelled = %d, want 1", counts.Cancelled)
	}
	if counts.Total() != len(sessions) {
		t.Errorf("Total() = %d, want %d", counts.Total(), len(sessions))
	}
	if counts.Empty() {
		t.Error("Empty() = true, want false")
	}
}

func TestClassify_WindowFilter(t *testing.T) {
	t.Parallel()

	inside := time.Date(2024, 5, 29, 11, 0, 0, 0, time.UTC)
	outside := time.Date(2024, 5, 28, 11, 0, 0, 0, time.UTC)
	filter := &timewindow.Range{
		Start: time.Date(2024, 5, 29, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 29, 12, 0, 0, 0, time.UTC),
	}

	sessions := []snapshot.Session{
		sessionAt("in", snapshot.StatusFinished, inside),
		sessionAt("out", snapshot.StatusFinished, outside),
		// No resolvable timestamp: included fail-open.
		{ID: "no-ts", Status: snapshot.StatusError},
	}

	counts := Classify(sessions, filter)

	if counts.Finished != 1 {
		t.Errorf("Finished = %d, want 1 (out-of-window excluded)", counts.Finished)
	}
	if counts.Error != 1 {
		t.Errorf("Error = %d, want 1 (timestampless session fail-open)", counts.Error)
	}
	if counts.Total() != 2 {
		t.Errorf("Total() = %d, want 2", counts.Total())
	}
}

func TestClassify_CountConservation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	filter := &timewindow.Range{Start: now.Add(-time.Hour), End: now}

	statuses := []string{
		snapshot.StatusRunning,
		snapshot.StatusCancelling,
		snapshot.StatusFinished,
		snapshot.StatusError,
		snapshot.StatusCancelled,
	}

	var sessions []snapshot.Session
	inWindow := 0
	for i, st := range statuses {
		// Alternate inside and outside the window.
		at := now.Add(-30 * time.Minute)
		if i%2 == 1 {
			at = now.Add(-2 * time.Hour)
		} else {
			inWindow++
		}
		sessions = append(sessions, sessionAt(st, st, at))
	}

	counts := Classify(sessions, filter)
	if counts.Total() != inWindow {
		t.Errorf("Total() = %d, want %d (windowed session count)", counts.Total(), inWindow)
	}
}

func TestClassify_Empty(t *testing.T) {
	t.Parallel()

	counts := Classify(nil, nil)

	if !counts.Empty() {
		t.Error("Empty() = false for no sessions, want true")
	}
	if counts.Total() != 0 {
		t.Errorf("Total() = %d, want 0", counts.Total())
	}
}

func TestDisplayStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: snapshot.StatusError, want: "failed"},
		{in: snapshot.StatusRunning, want: "running"},
		{in: snapshot.StatusFinished, want: "finished"},
		{in: "something-new", want: "something-new"},
	}

	for _, tt := range tests {
		if got := DisplayStatus(tt.in); got != tt.want {
			t.Errorf("DisplayStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
