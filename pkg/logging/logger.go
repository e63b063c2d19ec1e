package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLoggerFromEnv creates a logger using environment variables
// CXREF_LOG_LEVEL: debug|info|warn|error (default: info)
// CXREF_LOG_FORMAT: text|json (default: text)
func NewLoggerFromEnv() *slog.Logger {
	return NewLogger(os.Getenv("CXREF_LOG_LEVEL"), os.Getenv("CXREF_LOG_FORMAT"), os.Stderr)
}

// NewLogger creates a logger with an explicit level, format, and sink.
// Unrecognized values fall back to info/text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
