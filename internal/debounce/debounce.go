// Package debounce coalesces bursts of calls into one call after a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recently submitted function for a key once no new
// submission for that key has arrived within the delay. Keys are independent:
// a burst on one key never delays or drops another key's call.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	seq     uint64
}

type entry struct {
	timer *time.Timer
	fn    func()
	gen   uint64
}

// New creates a Debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*entry),
	}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn for key, replacing any function still pending for it.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	gen := d.seq
	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
	}
	e := &entry{fn: fn, gen: gen}
	e.timer = time.AfterFunc(d.delay, func() { d.fire(key, gen) })
	d.pending[key] = e
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok || e.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	e.fn()
}

// Flush runs the pending function for key immediately on the calling
// goroutine. It reports whether anything was pending.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	e, ok := d.pending[key]
	if ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		e.fn()
	}
	return ok
}

// FlushAll runs every pending function immediately, in no particular order.
func (d *Debouncer) FlushAll() {
	d.mu.Lock()
	entries := make([]*entry, 0, len(d.pending))
	for key, e := range d.pending {
		e.timer.Stop()
		entries = append(entries, e)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, e := range entries {
		e.fn()
	}
}

// Cancel drops the pending function for key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// CancelAll drops every pending function.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports whether a call is waiting for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}
