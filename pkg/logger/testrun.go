package logger

import (
	"io"
	"log/slog"
)

// NewTestHandler returns a handler that discards everything below the given
// level and writes nothing. Tests use it to exercise code paths that log
// without polluting test output.
func NewTestHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
}
