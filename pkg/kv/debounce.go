package kv

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of events per key: only the latest event within
// the quiet period is emitted. A new event for a key cancels and reschedules
// that key's pending emit.
type debouncer struct {
	quiet time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(quiet time.Duration) *debouncer {
	return &debouncer{
		quiet:  quiet,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(ev Event, emit func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if t, ok := d.timers[ev.Key]; ok {
		if t.Stop() {
			d.wg.Done()
		}
	}

	d.wg.Add(1)
	d.timers[ev.Key] = time.AfterFunc(d.quiet, func() {
		defer d.wg.Done()

		d.mu.Lock()
		delete(d.timers, ev.Key)
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			emit(ev)
		}
	})
}

// stopAndWait stops accepting events, cancels pending timers and waits for
// in-flight emits to finish, up to the timeout.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
