// Package logging configures the process-wide structured logger. Every line
// is a single JSON object carrying ts, level, msg and the component that
// emitted it.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Init installs a JSON logger writing to stdout as the slog default.
func Init(level string, loc *time.Location) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, ParseLevel(level), loc)))
}

// NewHandler returns a JSON handler that names the time field "ts" and
// renders it in loc.
func NewHandler(w io.Writer, level slog.Level, loc *time.Location) slog.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})
}

// New returns a logger tagged with component, derived from the current
// default logger.
func New(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// Discard returns a logger that drops everything. Used by tests and by
// constructors that receive a nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
