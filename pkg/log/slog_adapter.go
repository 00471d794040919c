package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see notifications in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Dropped records are logged at
// Warn level, everything else at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("kind", event.Kind.String()),
	}

	if event.Subject != "" {
		attrs = append(attrs, slog.String("subject", event.Subject))
	}

	switch event.Kind {
	case KindPush, KindDrop:
		attrs = append(attrs,
			slog.Float64("value", event.Value),
			slog.Bool("has_sender", event.HasSender),
		)
	case KindDeliver:
		attrs = append(attrs,
			slog.Float64("value", event.Value),
			slog.Bool("refresh", event.Refresh),
		)
	case KindReset, KindClear, KindResize:
		attrs = append(attrs, slog.Int("records", event.Count))
	case KindBind, KindUnbind:
		attrs = append(attrs, slog.Int("observers", event.Count))
	}

	if event.Kind.IsQueueEvent() {
		attrs = append(attrs,
			slog.Int("queue_len", event.QueueLen),
			slog.Int("queue_cap", event.QueueCap),
		)
	}

	level := slog.LevelDebug
	if event.Kind == KindDrop {
		level = slog.LevelWarn
	}

	a.logger.LogAttrs(context.Background(), level, "notify", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
