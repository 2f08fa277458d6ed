package logger

import (
	"bytes"
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
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitWithTextFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWith(&buf, "info", "text")

	Info("pick applied", "pick", 3)
	if !strings.Contains(buf.String(), "pick=3") {
		t.Errorf("expected text output with pick=3, got %q", buf.String())
	}
}

func TestInitWithJSONFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWith(&buf, "warn", "json")

	Info("hidden")
	Warn("shown", "team", "t1")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, `"team":"t1"`) {
		t.Errorf("expected JSON attribute, got %q", out)
	}
}
