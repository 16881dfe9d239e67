// Package logging sets up the process-wide structured logger. Messages
// are short plain-text strings on leveled, structured slog records rather
// than interpolated log.Printf strings, so fields like stage and post_id
// stay queryable.
package logging

import (
	"log/slog"
	"os"
)

// Init installs a JSON slog handler at the given level as the default
// logger and returns it for callers that want an explicit reference.
func Init(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Stage returns a logger pre-populated with a "stage" field, so every
// record a pipeline stage emits is attributable without repeating the
// field at every call site.
func Stage(name string) *slog.Logger {
	return slog.Default().With("stage", name)
}
