// Package logger configures structured logging for the BrainQuest progress hub.
// All components log through log/slog; this package owns the handler setup so
// that cmd/server decides the format once and the rest of the code only
// receives *slog.Logger values.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output format.
type Format string

const (
	// FormatText is human-readable output for development.
	FormatText Format = "text"
	// FormatJSON is machine-readable output for production.
	FormatJSON Format = "json"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, error.
	Level string

	// Format is the output format (text or json).
	Format Format

	// Output is the destination writer (default: os.Stdout).
	Output io.Writer

	// AddSource includes file:line of the log call site.
	AddSource bool
}

// New creates a configured *slog.Logger.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// NewDefault creates a text logger at info level, for tests and tools.
func NewDefault() *slog.Logger {
	return New(Config{Level: "info", Format: FormatText})
}

// parseLevel maps a level string to a slog.Level. Unknown values mean info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
