package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name: "default config",
			config: Config{
				Level:  "info",
				Output: "stderr",
				Format: "text",
			},
		},
		{
			name: "debug level",
			config: Config{
				Level:  "debug",
				Output: "stderr",
				Format: "text",
			},
		},
		{
			name: "json format",
			config: Config{
				Level:  "info",
				Output: "stderr",
				Format: "json",
			},
		},
		{
			name: "unknown level falls back to info",
			config: Config{
				Level:  "verbose",
				Output: "stdout",
				Format: "text",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.config)
			if log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestLogLevels(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	log := New(Config{
		Level:  "debug",
		Output: logFile,
		Format: "text",
	})

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	data, err := os.ReadFile(logFile) // nolint:gosec
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)

	for _, want := range []string{
		"debug message",
		"info message",
		"warn message",
		"error message",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("%q not found in log output", want)
		}
	}
}

func TestLogWithFields(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "fields.log")

	log := New(Config{
		Level:  "info",
		Output: logFile,
		Format: "text",
	})

	scoped := log.With("component", "engine")
	scoped.Info("poll complete", "sessions", 3)

	data, err := os.ReadFile(logFile) // nolint:gosec
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "component=engine") {
		t.Error("context field not found in log output")
	}
	if !strings.Contains(content, "sessions=3") {
		t.Error("call field not found in log output")
	}
}

func TestNoop(t *testing.T) {
	t.Parallel()

	log := Noop()

	// Must not panic and must accept all levels.
	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("dropped")
	log.Error("dropped")
	log.With("k", "v").Info("dropped")
}
