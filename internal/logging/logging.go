// Package logging wires up the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var once sync.Once

// Init installs the default logger at the given level ("debug", "info",
// "warn", "error"). JSON output in production, text otherwise.
func Init(level string) {
	once.Do(func() {
		var lvl slog.Level
		switch level {
		case "debug":
			lvl = slog.LevelDebug
		case "warn":
			lvl = slog.LevelWarn
		case "error":
			lvl = slog.LevelError
		default:
			lvl = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: lvl}

		var handler slog.Handler
		if os.Getenv("GO_ENV") == "production" {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		slog.SetDefault(slog.New(handler))
	})
}
