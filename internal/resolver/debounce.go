package resolver

import (
	"sync"
	"time"
)

// Debouncer runs only the last function handed to Trigger once no new
// trigger arrived for the configured delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewDebouncer creates a debouncer with delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger (re)starts the timer for fn, dropping any pending function.
// It returns false once the debouncer has been stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that expired while being replaced or cancelled must not run
		if d.stopped || d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()

		fn()

		d.mu.Lock()
		if d.gen == gen {
			d.timer = nil
		}
		d.mu.Unlock()
	})
	return true
}

// Cancel drops the pending function, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels the pending function and rejects future triggers
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cancelLocked()
}

// Pending reports whether a function is waiting to fire or still running
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
