// Package diag provides the diagnostic sink the dispatch core writes
// free-text status lines to.
//
// The sink is fire-and-forget: the core never inspects a result and a
// failing sink must never affect dispatch outcomes. Applications plug in
// the slog adapter; tests use Capture.
package diag

import (
	"log/slog"
	"sync"
)

// Level classifies a status line.
type Level int

const (
	// LevelDebug is verbose dispatch tracing.
	LevelDebug Level = iota

	// LevelInfo is routine status.
	LevelInfo

	// LevelWarn is a recoverable problem, such as a skipped receiver.
	LevelWarn

	// LevelError is a resolution failure.
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Sink accepts level/status-line pairs from the dispatch core.
type Sink interface {
	Status(level Level, line string)
}

// Nop is a Sink that discards everything.
type Nop struct{}

// Status implements Sink.
func (Nop) Status(Level, string) {}

// Slog adapts a *slog.Logger to the Sink interface.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates a Sink backed by the given logger.
// A nil logger uses slog.Default.
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger}
}

// Status implements Sink.
func (s *Slog) Status(level Level, line string) {
	switch level {
	case LevelDebug:
		s.logger.Debug(line)
	case LevelWarn:
		s.logger.Warn(line)
	case LevelError:
		s.logger.Error(line)
	default:
		s.logger.Info(line)
	}
}

// Capture is a Sink that records status lines in memory for inspection.
// Safe for concurrent use.
type Capture struct {
	mu    sync.Mutex
	lines []Line
}

// Line is one captured status line.
type Line struct {
	Level Level
	Text  string
}

// Status implements Sink.
func (c *Capture) Status(level Level, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, Line{Level: level, Text: line})
}

// Lines returns a copy of all captured lines.
func (c *Capture) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Reset discards all captured lines.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}
