// Package observer implements parameter-change notification for tracklane.
//
// A Subject is an observable scalar value (an automatable parameter, the
// transport position, the tempo). Views bind to it through an Observer and
// are told to redraw when the value changes. Changes are not delivered
// immediately: SetValue records a pending notification on a Queue, and the
// host drains the queue once per UI tick with Flush.
//
// # Coalescing
//
// A subject has at most one pending record at any time. Further writes
// before the next Flush update the subject's value but do not enqueue
// again, so observers see one Update per tick no matter how many times
// the value moved. Writing the value the subject already holds is a no-op.
//
// # Self-Suppression
//
// SetValue takes the originating Observer as sender. On delivery every
// bound observer except the sender receives Update, so a view that edits a
// value is not told to redraw with its own edit.
//
// # Drain Order
//
// The queue is LIFO: the most recently changed subject is notified first.
// Because each subject has at most one record, ordering only matters across
// subjects.
//
// # Overflow
//
// When the queue is full Push drops the record and returns false. The
// subject's value is still updated, only the refresh is lost. Reset drains
// without notifying and clears every pending subject's queued flag; Clear
// only rewinds the cursor and leaves pending subjects marked as queued.
//
// # Delivered Value
//
// Update carries no value. Observers read LastValue, which holds the value
// of the record most recently delivered by the subject. An observer that
// reads it lazily after a later Flush sees the later value.
//
// # Lifetimes
//
// Subjects reference their observers weakly, so a view that is dropped
// without unbinding does not keep its Observer alive. Closing a subject
// unbinds every observer bound to it.
//
// # Concurrency
//
// SetValue may be called from a producer goroutine (automation, audio
// callbacks) while Flush, Bind and Unbind run on the host's UI goroutine.
// Locks are never held while Update runs, so observers may rebind or set
// values from inside Update. Writes to other subjects are delivered later
// in the same Flush. A write to the subject currently being delivered
// updates its value but enqueues nothing, because the subject still counts
// as queued until every observer has been updated.
package observer
