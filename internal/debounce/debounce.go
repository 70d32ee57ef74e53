// Package debounce coalesces a stream of typed queries into single delayed triggers.
package debounce

import (
	"strings"
	"sync"
	"time"
)

// DefaultInterval is the quiet period a query must survive before it is emitted.
const DefaultInterval = 600 * time.Millisecond

// Event is emitted when a query settles or the input is cleared.
type Event struct {
	// Query is the trimmed input; empty when Empty is set.
	Query string
	// Empty marks an immediate reset caused by clearing the input.
	Empty bool
	// Seq identifies the input generation that produced the event.
	Seq uint64
}

// Debouncer owns a single pending timer. Every Push cancels the previous
// timer, so only the newest value can ever be emitted.
//
// emit is called without the internal lock held: from the caller's goroutine
// for empty input and Flush, and from a timer goroutine otherwise.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	emit     func(Event)
	timer    *time.Timer
	seq      uint64
	pending  bool
	value    string
}

// New creates a Debouncer. A non-positive interval uses DefaultInterval.
func New(interval time.Duration, emit func(Event)) *Debouncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if emit == nil {
		emit = func(Event) {}
	}
	return &Debouncer{interval: interval, emit: emit}
}

// Push feeds the current raw input value.
func (d *Debouncer) Push(value string) {
	trimmed := strings.TrimSpace(value)

	d.mu.Lock()
	d.cancelLocked()

	if trimmed == "" {
		d.pending = false
		d.value = ""
		seq := d.seq
		d.mu.Unlock()

		d.emit(Event{Empty: true, Seq: seq})
		return
	}

	d.pending = true
	d.value = trimmed
	seq := d.seq
	d.timer = time.AfterFunc(d.interval, func() { d.fire(seq) })
	d.mu.Unlock()
}

// Flush emits the pending value immediately. It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	d.cancelLocked()
	d.pending = false
	value := d.value
	seq := d.seq
	d.mu.Unlock()

	d.emit(Event{Query: value, Seq: seq})
	return true
}

// Pending reports whether a value is waiting out the quiet interval.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Current reports whether ev belongs to the latest input generation.
// Consumers that receive events asynchronously use it to drop an emission
// that raced with a newer Push.
func (d *Debouncer) Current(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ev.Seq == d.seq
}

// Stop cancels any pending emission.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.pending = false
}

func (d *Debouncer) cancelLocked() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// A timer that fired while being cancelled carries an old seq.
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	value := d.value
	d.mu.Unlock()

	d.emit(Event{Query: value, Seq: seq})
}
