// Package uiloop drives notification delivery from a host update loop.
//
// A Dispatcher flushes a queue at a fixed interval, standing in for the
// idle or timer callback of a GUI toolkit. Every flush runs on the
// dispatcher's goroutine or on the caller of FlushNow, never both at once,
// so observers see updates from one logical UI thread.
package uiloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tracklane/tracklane-go/pkg/observer"
)

// DefaultInterval is roughly one redraw at 30 frames per second.
const DefaultInterval = 33 * time.Millisecond

// Stats holds dispatcher counters.
type Stats struct {
	// Ticks counts flushes attempted, by the ticker or FlushNow.
	Ticks uint64

	// Flushes counts flushes that delivered at least one record.
	Flushes uint64
}

// Dispatcher periodically flushes a notification queue.
type Dispatcher struct {
	queue *observer.Queue

	// flushMu serializes flushes.
	flushMu sync.Mutex

	// Background processing
	ctx       context.Context
	cancel    context.CancelFunc
	processWg sync.WaitGroup
	running   atomic.Bool
	interval  time.Duration
	refresh   atomic.Bool

	onFlush func(delivered bool)

	ticks   atomic.Uint64
	flushes atomic.Uint64
}

// NewDispatcher creates a dispatcher for queue. Refresh defaults to true.
func NewDispatcher(queue *observer.Queue) *Dispatcher {
	d := &Dispatcher{
		queue:    queue,
		interval: DefaultInterval,
	}
	d.refresh.Store(true)
	return d
}

// SetInterval sets the flush interval. Must be called before Start().
// Non-positive values are ignored.
func (d *Dispatcher) SetInterval(interval time.Duration) {
	if interval > 0 {
		d.interval = interval
	}
}

// Interval returns the flush interval.
func (d *Dispatcher) Interval() time.Duration {
	return d.interval
}

// SetRefresh sets the refresh flag passed to observers.
func (d *Dispatcher) SetRefresh(refresh bool) {
	d.refresh.Store(refresh)
}

// OnFlush registers a callback invoked after every flush with whether
// anything was delivered. Must be called before Start().
func (d *Dispatcher) OnFlush(fn func(delivered bool)) {
	d.onFlush = fn
}

// Start begins background flushing.
func (d *Dispatcher) Start() {
	if d.running.Swap(true) {
		return // Already running
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.processWg.Add(1)
	go d.processLoop()
}

// Stop stops background flushing. Records still pending stay queued.
func (d *Dispatcher) Stop() {
	if !d.running.Swap(false) {
		return // Not running
	}

	if d.cancel != nil {
		d.cancel()
	}
	d.processWg.Wait()
}

// IsRunning reports whether background flushing is active.
func (d *Dispatcher) IsRunning() bool {
	return d.running.Load()
}

// FlushNow drains the queue immediately on the calling goroutine.
// Returns true if at least one record was delivered.
func (d *Dispatcher) FlushNow() bool {
	d.flushMu.Lock()
	delivered := d.queue.Flush(d.refresh.Load())
	d.flushMu.Unlock()

	d.ticks.Add(1)
	if delivered {
		d.flushes.Add(1)
	}
	if d.onFlush != nil {
		d.onFlush(delivered)
	}
	return delivered
}

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Ticks:   d.ticks.Load(),
		Flushes: d.flushes.Load(),
	}
}

// processLoop runs the background flushing.
func (d *Dispatcher) processLoop() {
	defer d.processWg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.FlushNow()
		}
	}
}
