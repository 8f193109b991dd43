package debounce

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, fn func()) Timer

func realAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer collapses bursts of Trigger calls into one run of fn after a
// quiet period. Runs never overlap.
type Debouncer struct {
	delay     time.Duration
	fn        func()
	afterFunc AfterFunc

	mu       sync.Mutex
	idle     *sync.Cond
	timer    Timer
	pending  bool
	gen      uint64
	stopped  bool
	inflight int

	runMu sync.Mutex
}

type Option func(*Debouncer)

func WithAfterFunc(f AfterFunc) Option {
	return func(d *Debouncer) { d.afterFunc = f }
}

func New(delay time.Duration, fn func(), opts ...Option) *Debouncer {
	d := &Debouncer{delay: delay, fn: fn, afterFunc: realAfterFunc}
	d.idle = sync.NewCond(&d.mu)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.gen++
	gen := d.gen
	d.timer = d.afterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.inflight++
	d.mu.Unlock()
	d.run()
}

// Flush runs a pending call immediately. It reports whether one was pending.
// With nothing pending it still waits for a call that is already running.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.waitIdleLocked()
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.gen++
	d.inflight++
	d.mu.Unlock()
	d.run()
	return true
}

// Pending reports whether a call is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops a pending call. Later triggers still schedule.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.gen++
}

// Stop drops any pending call and ignores later triggers. It returns once a
// call that was already running has finished.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.stopped = true
	d.gen++
	d.waitIdleLocked()
}

// waitIdleLocked blocks until no call is running. d.mu must be held.
func (d *Debouncer) waitIdleLocked() {
	for d.inflight > 0 {
		d.idle.Wait()
	}
}

// run must be preceded by inflight++ under d.mu.
func (d *Debouncer) run() {
	defer func() {
		d.mu.Lock()
		d.inflight--
		d.idle.Broadcast()
		d.mu.Unlock()
	}()
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.fn()
}
