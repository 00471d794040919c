package log

// Logger receives trace events from queues and subjects.
// Pass nil or NoopLogger to disable tracing.
type Logger interface {
	// Log records a trace event. Implementations must be thread-safe.
	// Log runs inside SetValue and Flush, so it must not block.
	Log(event Event)
}

// NoopLogger discards all events. Use when tracing is disabled.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Enabled reports whether events sent to l go anywhere. Producers use it to
// skip building events when tracing is off.
func Enabled(l Logger) bool {
	switch l.(type) {
	case nil, NoopLogger, *NoopLogger:
		return false
	}
	return true
}

var _ Logger = NoopLogger{}
