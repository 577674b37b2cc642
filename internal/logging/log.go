// Package logging provides the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
	level      = new(slog.LevelVar)
)

// Logger returns a singleton text logger writing to stderr. The initial level
// comes from LOG_LEVEL.
func Logger() *slog.Logger {
	loggerOnce.Do(func() {
		level.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	})
	return logger
}

// For returns a logger tagged with component.
func For(component string) *slog.Logger {
	return Logger().With("component", component)
}

// SetLevel changes the level of every logger handed out so far.
func SetLevel(lvl string) {
	Logger()
	level.Set(ParseLevel(lvl))
}

// ParseLevel maps debug|info|warn|error to a slog level; anything else is info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
