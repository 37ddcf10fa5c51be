package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/0xmhha/telemetry-monitor/pkg/config"
	"github.com/0xmhha/telemetry-monitor/pkg/logger"
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
)

// TestSessionsCommand_FlagParsing tests sessions command flag handling.
func TestSessionsCommand_FlagParsing(t *testing.T) {
	cmd := &sessionsCommand{
		user:   "alice",
		start:  "not a time",
		end:    "also not a time",
		format: "simple",
	}

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unparseable time range")
	}
}

// TestFetchOnce tests the one-shot fetch path against a stub backend.
func TestFetchOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"sessions": [
				{"session_id": "s1", "user_id": "alice", "status": "running", "token_usage": 10}
			],
			"service": {"total_sessions": 1},
			"tool_stats": [{"tool": "search", "calls": 3}]
		}`))
	}))
	defer server.Close()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := "api:\n  base_url: " + server.URL + "\nlogging:\n  output: stderr\n"
	if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	views, _, err := fetchOnce(configFile, snapshot.ModeFull, nil)
	if err != nil {
		t.Fatalf("fetchOnce() error = %v", err)
	}

	if views.Status.Active != 1 {
		t.Errorf("Active = %d, want 1", views.Status.Active)
	}
	if views.Service.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1", views.Service.TotalSessions)
	}

	found := false
	for _, tile := range views.Tools {
		if tile.Name == "search" && tile.Calls == 3 {
			found = true
		}
	}
	if !found {
		t.Error("tool stats not reflected in views")
	}
}

// TestFetchOnce_BackendDown tests the error path.
func TestFetchOnce_BackendDown(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := "api:\n  base_url: http://127.0.0.1:1\n  timeout: 200ms\n"
	if err := os.WriteFile(configFile, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, _, err := fetchOnce(configFile, snapshot.ModeFull, nil); err == nil {
		t.Error("expected error when backend is unreachable")
	}
}

// TestBuildEngine tests engine wiring from config.
func TestBuildEngine(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.Monitoring.Immediate = false

	eng, err := buildEngine(cfg, logger.Noop())
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			t.Logf("Close() error = %v", err)
		}
	}()

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := eng.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

// TestBuildEngine_InvalidURL tests rejection of a bad base URL.
func TestBuildEngine_InvalidURL(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "not a url"

	if _, err := buildEngine(cfg, logger.Noop()); err == nil {
		t.Error("expected error for invalid base URL")
	}
}

// TestShowUsage ensures usage rendering doesn't fail.
func TestShowUsage(t *testing.T) {
	if err := showUsage(); err != nil {
		t.Errorf("showUsage() error = %v", err)
	}
}
