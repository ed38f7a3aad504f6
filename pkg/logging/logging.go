// Package logging configures the process-wide slog logger.
//
// Development builds get colored output through tint; release builds emit
// JSON so log shippers can parse it.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup builds a logger for the given level name and gin mode, installs it
// as the slog default, and returns it for injection.
func Setup(level, ginMode string) *slog.Logger {
	logger := New(os.Stderr, ParseLevel(level), ginMode == "release")
	slog.SetDefault(logger)
	return logger
}

// New creates a logger writing to w.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is treated as info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
