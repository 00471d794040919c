package log

import (
	"strings"
	"time"
)

// Event represents a notification trace event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the session that owns the queue (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"3,keyasint"`

	// Subject is the name of the affected subject (empty for queue-wide events).
	Subject string `cbor:"4,keyasint,omitempty"`

	// Value is the raw value carried by the notification record.
	Value float64 `cbor:"5,keyasint,omitempty"`

	// HasSender is set when the change originated from a bound observer.
	HasSender bool `cbor:"6,keyasint,omitempty"`

	// Refresh is the refresh flag passed to observers on delivery.
	Refresh bool `cbor:"7,keyasint,omitempty"`

	// QueueLen is the number of pending records after the operation.
	QueueLen int `cbor:"8,keyasint"`

	// QueueCap is the queue capacity after the operation.
	QueueCap int `cbor:"9,keyasint"`

	// Count is the number of records affected by RESET, CLEAR and RESIZE,
	// or the observer count for BIND and UNBIND.
	Count int `cbor:"10,keyasint,omitempty"`
}

// Kind classifies a trace event.
type Kind uint8

const (
	// KindPush indicates a record was appended to the queue.
	KindPush Kind = 0
	// KindDrop indicates a record was dropped because the queue was full.
	KindDrop Kind = 1
	// KindDeliver indicates a record was popped and delivered to observers.
	KindDeliver Kind = 2
	// KindReset indicates pending records were discarded without delivery.
	KindReset Kind = 3
	// KindClear indicates the queue cursor was reset.
	KindClear Kind = 4
	// KindResize indicates the queue capacity changed.
	KindResize Kind = 5
	// KindBind indicates an observer was bound to a subject.
	KindBind Kind = 6
	// KindUnbind indicates an observer was unbound from a subject.
	KindUnbind Kind = 7
)

// Kinds lists every event kind in display order.
var Kinds = []Kind{KindPush, KindDrop, KindDeliver, KindReset, KindClear, KindResize, KindBind, KindUnbind}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPush:
		return "PUSH"
	case KindDrop:
		return "DROP"
	case KindDeliver:
		return "DELIVER"
	case KindReset:
		return "RESET"
	case KindClear:
		return "CLEAR"
	case KindResize:
		return "RESIZE"
	case KindBind:
		return "BIND"
	case KindUnbind:
		return "UNBIND"
	default:
		return "UNKNOWN"
	}
}

// ParseKind parses a kind name (case-insensitive).
func ParseKind(s string) (Kind, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, k := range Kinds {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// IsQueueEvent reports whether the kind describes a queue operation.
func (k Kind) IsQueueEvent() bool {
	return k <= KindResize
}
