package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"trace", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", true)

	logger.Debug("hidden")
	logger.Info("visible", "pr", "owner/repo#1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "visible" || record["pr"] != "owner/repo#1" {
		t.Errorf("record = %v", record)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", false).Debug("fetching", "ticket", "PROJ-1")

	if !strings.Contains(buf.String(), "ticket=PROJ-1") {
		t.Errorf("output = %q, want text attrs", buf.String())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	logger := New(&bytes.Buffer{}, "info", false)
	if OrDiscard(logger) != logger {
		t.Error("OrDiscard should return the given logger")
	}
}

func TestMaskSensitive(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "<not set>"},
		{"short", "<set>"},
		{"ghp_abcdefghijkl", "ghp_...***"},
	}

	for _, tt := range tests {
		if got := MaskSensitive(tt.in); got != tt.want {
			t.Errorf("MaskSensitive(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
