package diag

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestCapture(t *testing.T) {
	c := &Capture{}

	c.Status(LevelInfo, "first")
	c.Status(LevelError, "second")

	lines := c.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Level != LevelInfo || lines[0].Text != "first" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Level != LevelError || lines[1].Text != "second" {
		t.Errorf("unexpected second line: %+v", lines[1])
	}

	c.Reset()
	if len(c.Lines()) != 0 {
		t.Error("expected no lines after Reset")
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := NewSlog(logger)
	s.Status(LevelWarn, "receiver skipped")
	s.Status(LevelDebug, "dispatching")

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "receiver skipped") {
		t.Errorf("warn line missing: %q", out)
	}
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "dispatching") {
		t.Errorf("debug line missing: %q", out)
	}
}

func TestNop(t *testing.T) {
	// Must simply not panic.
	Nop{}.Status(LevelError, "dropped")
}
