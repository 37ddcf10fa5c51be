package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/engine"
	"github.com/0xmhha/telemetry-monitor/pkg/heatmap"
	"github.com/0xmhha/telemetry-monitor/pkg/paging"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
	"github.com/0xmhha/telemetry-monitor/pkg/status"
	"github.com/0xmhha/telemetry-monitor/pkg/trend"
)

func testViews() engine.Views {
	sessions := []snapshot.Session{
		{ID: "sess-1", UserID: "alice", Status: snapshot.StatusRunning, TokenUsage: 1234, Question: "summarize the logs"},
		{ID: "sess-2", UserID: "bob", Status: snapshot.StatusError, TokenUsage: 99},
	}

	st := paging.NewState(10)

	return engine.Views{
		FetchedAt: time.Date(2024, 5, 29, 10, 30, 0, 0, time.Local),
		Window:    time.Hour,
		Trend: trend.Series{
			Labels: []string{"05-29 09:00", "05-29 10:00"},
			Values: []int64{0, 1500},
			Latest: 1500,
		},
		Status: status.Counts{Active: 1, Error: 1},
		Tools: []heatmap.Tile{
			{Name: "search", Category: "retrieval", Calls: 5, Color: "#aabbcc", TextColor: "#f9fafb"},
			{Name: "idle_tool", Calls: 0, Color: "#e5e7eb", TextColor: "#1f2937"},
		},
		Active:  paging.Slice(sessions[:1], st),
		History: paging.Slice(sessions[1:], paging.NewState(10)),
		Service: snapshot.Service{TotalSessions: 2, AvgElapsedSec: 4.2},
	}
}

func TestNew_FormatSelection(t *testing.T) {
	t.Parallel()

	if _, ok := New(Config{Format: FormatJSON}).(*jsonFormatter); !ok {
		t.Error("FormatJSON did not produce a jsonFormatter")
	}
	if _, ok := New(Config{Format: FormatSimple}).(*simpleFormatter); !ok {
		t.Error("FormatSimple did not produce a simpleFormatter")
	}
	if _, ok := New(Config{}).(*dashboardFormatter); !ok {
		t.Error("default format did not produce a dashboardFormatter")
	}
}

func TestDashboard_ContainsAllSections(t *testing.T) {
	t.Parallel()

	f := New(Config{Format: FormatDashboard, Width: 80})

	var buf bytes.Buffer
	if err := f.FormatViews(&buf, testViews()); err != nil {
		t.Fatalf("FormatViews() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Telemetry Monitor",
		"1 active",
		// error renders under its display alias
		"1 failed",
		"05-29 10:00",
		"search",
		"sess-1",
		"alice",
		"page 1/1 (1 total)",
		"avg elapsed: 4.2s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard output missing %q", want)
		}
	}
}

func TestDashboard_ColorDisabledHasNoEscapes(t *testing.T) {
	t.Parallel()

	f := New(Config{Format: FormatDashboard, Width: 80, ColorEnabled: false})

	var buf bytes.Buffer
	if err := f.FormatViews(&buf, testViews()); err != nil {
		t.Fatalf("FormatViews() error = %v", err)
	}

	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("colorless output contains ANSI escape sequences")
	}
}

func TestDashboard_EmptyViews(t *testing.T) {
	t.Parallel()

	f := New(Config{Format: FormatDashboard, Width: 80})

	var buf bytes.Buffer
	if err := f.FormatViews(&buf, engine.Views{}); err != nil {
		t.Fatalf("FormatViews() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "no tools") {
		t.Error("empty heatmap placeholder missing")
	}
	if !strings.Contains(out, "none") {
		t.Error("empty table placeholder missing")
	}
}

func TestSimple_PlainOutput(t *testing.T) {
	t.Parallel()

	f := New(Config{Format: FormatSimple})

	var buf bytes.Buffer
	if err := f.FormatViews(&buf, testViews()); err != nil {
		t.Fatalf("FormatViews() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"status: active=1 finished=0 failed=1 cancelled=0 total=2",
		"trend 05-29 10:00 1500",
		"tool search calls=5",
		"active sess-1 user=alice tokens=1234",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("simple output missing %q", want)
		}
	}

	if strings.Contains(out, "\x1b[") {
		t.Error("simple output contains ANSI escape sequences")
	}
}

func TestJSON_RoundTrips(t *testing.T) {
	t.Parallel()

	f := New(Config{Format: FormatJSON})

	var buf bytes.Buffer
	if err := f.FormatViews(&buf, testViews()); err != nil {
		t.Fatalf("FormatViews() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if _, ok := decoded["Status"]; !ok {
		t.Error("JSON output missing Status")
	}
	if _, ok := decoded["Trend"]; !ok {
		t.Error("JSON output missing Trend")
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0"},
		{in: 999, want: "999"},
		{in: 1000, want: "1,000"},
		{in: 1234567, want: "1,234,567"},
		{in: -4200, want: "-4,200"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("hello world", 5); got != "hell…" {
		t.Errorf("truncate long = %q", got)
	}
	if got := truncate("hello", 0); got != "" {
		t.Errorf("truncate zero = %q", got)
	}
}
