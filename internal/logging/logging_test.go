package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("ParseLevel(%q): got %v, %v", tt.in, got, err)
		}
	}
}

func TestNewWritesFile(t *testing.T) {
	dir := t.TempDir()
	l, closeLog, err := New("debug", dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("atlas grown", slog.Int("width", 1024))
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "tetris.slog"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"atlas grown"`) {
		t.Fatalf("log file missing record: %s", data)
	}
}

func TestFanoutLevels(t *testing.T) {
	var all, warn bytes.Buffer
	l := slog.New(fanout{
		slog.NewTextHandler(&all, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}).With(slog.String("component", "renderer"))
	l.Info("setup")
	l.Warn("slow frame")
	if !strings.Contains(all.String(), "setup") || !strings.Contains(all.String(), "slow frame") {
		t.Fatalf("debug handler: %q", all.String())
	}
	if strings.Contains(warn.String(), "setup") || !strings.Contains(warn.String(), "component=renderer") {
		t.Fatalf("warn handler: %q", warn.String())
	}
	if l.Handler().Enabled(context.Background(), slog.LevelDebug-1) {
		t.Fatalf("fanout enabled below every handler's level")
	}
}
