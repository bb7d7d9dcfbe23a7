package modelexpr

import (
	"context"
	"log/slog"
	"time"
)

// LogEvent categorizes engine events for logging.
type LogEvent string

const (
	LogEventParse     LogEvent = "parse"
	LogEventCacheHit  LogEvent = "cache_hit"
	LogEventCacheMiss LogEvent = "cache_miss"
	LogEventCompile   LogEvent = "compile"
	LogEventPath      LogEvent = "path"
)

// LogEntry represents a single engine event.
type LogEntry struct {
	Event    LogEvent
	RootType string
	Text     string
	Dialect  Dialect
	Duration time.Duration
	Err      error
}

// LoggerFunc receives LogEntry events. A nil LoggerFunc discards them.
type LoggerFunc func(LogEntry)

// Log delivers entry when l is non-nil.
func (l LoggerFunc) Log(entry LogEntry) {
	if l == nil {
		return
	}

	l(entry)
}

// SlogLogger adapts a slog.Logger. Failed events are logged at warn level,
// everything else at debug level.
func SlogLogger(logger *slog.Logger) LoggerFunc {
	if logger == nil {
		return nil
	}

	return func(entry LogEntry) {
		attrs := []slog.Attr{
			slog.String("event", string(entry.Event)),
			slog.String("text", entry.Text),
		}

		if entry.RootType != "" {
			attrs = append(attrs, slog.String("root", entry.RootType))
		}

		if entry.Dialect != "" {
			attrs = append(attrs, slog.String("dialect", string(entry.Dialect)))
		}

		if entry.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", entry.Duration))
		}

		level := slog.LevelDebug
		if entry.Err != nil {
			level = slog.LevelWarn

			attrs = append(attrs, slog.String("error", entry.Err.Error()))
		}

		logger.LogAttrs(context.Background(), level, "modelexpr", attrs...)
	}
}
