package observer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tracklane/tracklane-go/pkg/log"
)

// DefaultQueueCapacity is the number of pending records a queue holds
// unless configured otherwise.
const DefaultQueueCapacity = 1024

// record is a pending change awaiting delivery.
type record struct {
	subject *Subject
	sender  *Observer
	value   float64
}

// QueueStats holds counters for a queue's lifetime.
type QueueStats struct {
	// Pushed counts records appended.
	Pushed uint64

	// Dropped counts records rejected because the queue was full.
	Dropped uint64

	// Delivered counts records popped and delivered to observers.
	Delivered uint64

	// Discarded counts records removed by Reset, Clear or Resize without delivery.
	Discarded uint64
}

// Queue is a bounded LIFO buffer of pending subject notifications.
//
// A queue is shared by every subject of a session and drained by the
// host's update loop. It never grows on its own; Resize is the only path
// that allocates.
type Queue struct {
	mu    sync.Mutex
	items []record
	index int

	// Trace logging (optional)
	logger    log.Logger
	sessionID string
	traced    bool

	pushed    atomic.Uint64
	dropped   atomic.Uint64
	delivered atomic.Uint64
	discarded atomic.Uint64
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the trace logger and the session ID stamped on its events.
func WithLogger(logger log.Logger, sessionID string) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
		q.sessionID = sessionID
	}
}

// NewQueue creates a queue holding up to capacity records.
// A non-positive capacity selects DefaultQueueCapacity.
func NewQueue(capacity int, opts ...QueueOption) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	q := &Queue{
		items:  make([]record, capacity),
		logger: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(q)
	}
	q.traced = log.Enabled(q.logger)
	return q
}

// Push appends a record for subject and marks the subject as queued.
// If the queue is full the record is dropped, the subject's queued flag is
// left untouched, and Push returns false.
func (q *Queue) Push(subject *Subject, sender *Observer, value float64) bool {
	q.mu.Lock()
	if q.index >= len(q.items) {
		n, capacity := q.index, len(q.items)
		q.mu.Unlock()

		q.dropped.Add(1)
		q.trace(log.Event{Kind: log.KindDrop, Subject: subject.name, Value: value,
			HasSender: sender != nil, QueueLen: n, QueueCap: capacity})
		return false
	}

	subject.queued.Store(true)
	q.items[q.index] = record{subject: subject, sender: sender, value: value}
	q.index++
	n, capacity := q.index, len(q.items)
	q.mu.Unlock()

	q.pushed.Add(1)
	q.trace(log.Event{Kind: log.KindPush, Subject: subject.name, Value: value,
		HasSender: sender != nil, QueueLen: n, QueueCap: capacity})
	return true
}

// Pop removes the most recently pushed record, delivers it to the
// subject's observers and clears the subject's queued flag.
// Returns false if the queue is empty.
func (q *Queue) Pop(refresh bool) bool {
	q.mu.Lock()
	if q.index == 0 {
		q.mu.Unlock()
		return false
	}
	q.index--
	item := q.items[q.index]
	q.items[q.index] = record{}
	n, capacity := q.index, len(q.items)
	q.mu.Unlock()

	item.subject.Notify(item.sender, item.value, refresh)
	item.subject.queued.Store(false)

	q.delivered.Add(1)
	q.trace(log.Event{Kind: log.KindDeliver, Subject: item.subject.name, Value: item.value,
		HasSender: item.sender != nil, Refresh: refresh, QueueLen: n, QueueCap: capacity})
	return true
}

// Flush pops until the queue is empty. Records pushed by observers during
// the drain are delivered in the same Flush. A write to the subject that is
// being delivered is not: its queued flag is still set while Update runs,
// so the value changes without a new record and that refresh is lost.
// Returns true if at least one record was delivered.
func (q *Queue) Flush(refresh bool) bool {
	delivered := false
	for q.Pop(refresh) {
		delivered = true
	}
	return delivered
}

// Reset discards all pending records without notifying observers and
// clears the queued flag of every affected subject. Use it on hard state
// changes (session reload) where stale notifications must not fire.
func (q *Queue) Reset() {
	q.mu.Lock()
	n := q.index
	for q.index > 0 {
		q.index--
		q.items[q.index].subject.queued.Store(false)
		q.items[q.index] = record{}
	}
	capacity := len(q.items)
	q.mu.Unlock()

	q.discarded.Add(uint64(n))
	q.trace(log.Event{Kind: log.KindReset, Count: n, QueueCap: capacity})
}

// Clear rewinds the cursor without touching the subjects. Subjects that
// were pending keep reporting IsQueued and will not enqueue again until
// the queue is Reset; callers that use Clear must account for that.
func (q *Queue) Clear() {
	q.mu.Lock()
	n := q.index
	for i := 0; i < q.index; i++ {
		q.items[i] = record{}
	}
	q.index = 0
	capacity := len(q.items)
	q.mu.Unlock()

	q.discarded.Add(uint64(n))
	q.trace(log.Event{Kind: log.KindClear, Count: n, QueueCap: capacity})
}

// Resize changes the capacity. The oldest min(Len, capacity) records are
// kept in order; records beyond the new capacity are discarded and their
// subjects' queued flags cleared. A negative capacity is treated as zero.
func (q *Queue) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}

	q.mu.Lock()
	items := make([]record, capacity)
	kept := copy(items, q.items[:q.index])
	for _, item := range q.items[kept:q.index] {
		item.subject.queued.Store(false)
	}
	discarded := q.index - kept
	q.items = items
	q.index = kept
	q.mu.Unlock()

	q.discarded.Add(uint64(discarded))
	q.trace(log.Event{Kind: log.KindResize, Count: discarded, QueueLen: kept, QueueCap: capacity})
}

// Len returns the number of pending records.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether no records are pending.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Pushed:    q.pushed.Load(),
		Dropped:   q.dropped.Load(),
		Delivered: q.delivered.Load(),
		Discarded: q.discarded.Load(),
	}
}

// SessionID returns the session ID stamped on trace events.
func (q *Queue) SessionID() string {
	return q.sessionID
}

func (q *Queue) trace(event log.Event) {
	if !q.traced {
		return
	}
	event.Timestamp = time.Now()
	event.SessionID = q.sessionID
	q.logger.Log(event)
}

