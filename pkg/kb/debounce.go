package kb

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers into a single callback after a
// quiet period.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// trigger schedules fn after the quiet period, resetting the clock if a
// trigger is already pending.
func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		if d.timer.Stop() {
			d.pending.Done()
		}
	}

	d.pending.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.pending.Done()

		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if stopped {
			return
		}
		fn()
	})
}

// stopAndWait refuses new triggers and waits for in-flight callbacks,
// bounded by timeout.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		if d.timer.Stop() {
			d.pending.Done()
		}
		d.timer = nil
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
