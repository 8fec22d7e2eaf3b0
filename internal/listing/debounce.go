package listing

import (
	"errors"
	"sync"
	"time"
)

// ErrCanceled is delivered to a debounced call superseded by a newer one.
var ErrCanceled = errors.New("superseded by a newer change")

// debouncer runs the last function scheduled within the delay window. Every
// Schedule call gets its own result channel; a call that is superseded
// before it fires receives ErrCanceled.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending chan error
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

func (d *debouncer) Schedule(fn func() error) <-chan error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()

	result := make(chan error, 1)
	d.pending = result
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timer != timer {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = nil
		d.mu.Unlock()

		result <- fn()
	})
	d.timer = timer
	return result
}

// Cancel drops the scheduled call, if any, delivering ErrCanceled to it.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *debouncer) cancelLocked() {
	if d.timer == nil {
		return
	}
	d.timer.Stop()
	d.pending <- ErrCanceled
	d.timer = nil
	d.pending = nil
}

func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
