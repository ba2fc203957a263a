// Package debounce provides a cancellable delayed-task primitive: every
// trigger resets the delay, so only the last trigger within a quiet period
// actually fires. Rapid repeated edits coalesce into a single action, which
// caps the write rate toward upstream services no matter how fast the user
// clicks.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used across the storefront for quantity
// commits and filter serialization.
const DefaultDelay = 500 * time.Millisecond

type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// New returns a debouncer with the given quiet period. A non-positive delay
// falls back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the quiet period, replacing any
// previously scheduled function. fn runs on a timer goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending trigger. A function already running is not
// interrupted.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
