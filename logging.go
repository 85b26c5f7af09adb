package main

import (
	"io"
	"log/slog"

	"github.com/phsym/console-slog"
)

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger writes JSON records to w, or colored human-readable lines when
// format is "console".
func newLogger(level, format string, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)

	var handler slog.Handler
	if format == "console" {
		handler = console.NewHandler(w, &console.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return slog.New(handler)
}
