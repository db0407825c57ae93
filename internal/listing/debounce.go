package listing

import (
	"sync"
	"time"
)

// Timer is the cancel handle of a scheduled callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer delivers a value only once it has been stable for the delay.
// Every Push cancels the pending delivery; intermediate values are dropped.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	after   AfterFunc
	pending Timer
	gen     uint64
	stopped bool
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn, after: realAfterFunc}
}

// WithAfterFunc swaps the scheduler; used by tests to drive time manually.
func (d *Debouncer[T]) WithAfterFunc(after AfterFunc) *Debouncer[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	if after != nil {
		d.after = after
	}
	return d
}

// Push replaces the pending value with v and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = d.after(d.delay, func() {
		d.mu.Lock()
		// A timer may fire after Stop lost the race; gen tells us.
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		d.fn(v)
	})
}

// Pending reports whether a value is waiting for its quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending delivery. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
