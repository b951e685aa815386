// Package timer provides the single-threaded timer service the key pipeline
// schedules long-press, multi-tap and delayed refresh callbacks on.
//
// Two implementations exist. Loop runs callbacks on one goroutine alongside
// posted key events, using a k8s.io/utils clock for delays. Manual keeps
// virtual time that only moves when the caller advances it, which makes
// timing deterministic in tests and trace replay.
//
// Callbacks are never invoked concurrently with each other or with work
// posted to the same Loop. A callback may run after Cancel was requested
// on another goroutine only if it was already executing.
package timer

import (
	"time"

	"k8s.io/utils/clock"
)

// Handle is a scheduled callback that can be cancelled.
type Handle interface {
	// Cancel prevents the callback from running.
	// Returns false if it already ran or was already cancelled.
	Cancel() bool
}

// Scheduler schedules delayed callbacks and reports the current time.
type Scheduler interface {
	// Schedule arranges for fn to run after delay.
	Schedule(delay time.Duration, fn func()) Handle

	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}

// Clamp bounds d to [min, max].
func Clamp(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

// Debouncer keeps at most one pending callback; scheduling again replaces
// the previous one so only the latest request fires.
type Debouncer struct {
	sched   Scheduler
	pending Handle
}

// NewDebouncer creates a debouncer on sched.
func NewDebouncer(sched Scheduler) *Debouncer {
	return &Debouncer{sched: sched}
}

// Trigger schedules fn after delay, superseding any earlier pending call.
func (d *Debouncer) Trigger(delay time.Duration, fn func()) {
	d.Stop()
	var h Handle
	h = d.sched.Schedule(delay, func() {
		if d.pending == h {
			d.pending = nil
		}
		fn()
	})
	d.pending = h
}

// Stop cancels the pending callback, if any.
func (d *Debouncer) Stop() {
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}

// Pending reports whether a callback is waiting to fire.
func (d *Debouncer) Pending() bool {
	return d.pending != nil
}

// PassiveClock exposes the time of s as a clock.PassiveClock, so
// components that only read time follow the scheduler, virtual or real.
func PassiveClock(s Scheduler) clock.PassiveClock {
	return passiveClock{s}
}

type passiveClock struct {
	s Scheduler
}

func (c passiveClock) Now() time.Time {
	return c.s.Now()
}

func (c passiveClock) Since(t time.Time) time.Duration {
	return c.s.Now().Sub(t)
}
