// Package logging builds the service's structured logger. Records are JSON
// on the supplied writer and carry the application name and version.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level maps the DEBUG setting onto a slog level.
func Level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New returns a JSON logger writing to w (stderr when nil). Debug loggers
// also record the source location.
func New(w io.Writer, name, version string, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     Level(debug),
		AddSource: debug,
	})
	return slog.New(handler).With(
		slog.String("app", name),
		slog.String("version", version),
	)
}

// SetDefault installs New(...) as the process-wide default and returns it.
func SetDefault(w io.Writer, name, version string, debug bool) *slog.Logger {
	logger := New(w, name, version, debug)
	slog.SetDefault(logger)
	return logger
}
