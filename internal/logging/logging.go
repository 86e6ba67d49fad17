// Package logging builds the slog loggers the skein commands hand to their
// components. Loggers write to stderr, keeping stdout free for command
// output such as run handles and catalog listings.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger for the chosen level and format ("text" or "json").
func New(level slog.Level, format string) *slog.Logger {
	return NewWithWriter(level, format, os.Stderr)
}

// NewWithWriter is New with an explicit destination, used by tests to
// capture output. Any format other than "json" renders as text.
func NewWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to its slog.Level. Unknown names fall back
// to info rather than failing, so a typo in --log-level never blocks a run.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
