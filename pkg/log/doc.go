// Package log provides structured notification tracing for tracklane.
//
// This package defines the Logger interface and Event type for capturing
// what the notification queue does: records pushed, records dropped on
// overflow, records delivered to observers, and queue-wide resets. It is
// separate from operational logging (slog) - the trace is a complete
// machine-readable record of every change notification for debugging
// coalescing and refresh behavior.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	queue := observer.NewQueue(1024, observer.WithLogger(log.NewSlogAdapter(slog.Default()), sessionID))
//
//	// For later analysis: write to binary file
//	trace, _ := log.NewFileLogger("/tmp/session.tlog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), trace)
//
// # Event Kinds
//
// Queue events (PUSH, DROP, DELIVER, RESET, CLEAR, RESIZE) carry the queue
// length and capacity after the operation. Binding events (BIND, UNBIND)
// carry the observer count of the subject.
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with the .tlog extension.
// Fields use integer keys and values use the shortest float width that
// holds them exactly. Readers reject events with an unknown kind.
// The tracklane-log CLI tool provides viewing, filtering, and export.
package log
