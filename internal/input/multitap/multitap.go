// Package multitap cycles a key through its tap variants when it is
// tapped repeatedly within a timeout.
package multitap

import (
	"time"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/sink"
	"github.com/dshills/physkey/internal/timer"
)

// DefaultTimeout is the inter-tap window.
const DefaultTimeout = 400 * time.Millisecond

// State is the current cycle.
type State struct {
	Active   bool
	LastCode key.Code
	TapIndex int
	LastTap  time.Time
}

// Result reports what a tap did.
type Result struct {
	// Handled is false when the mapping has no tap variants.
	Handled bool

	// Committed is the text committed by this tap.
	Committed string

	// ReplacedInWindow is true when the previous variant was replaced.
	ReplacedInWindow bool
}

// Cycler tracks one multi-tap cycle at a time.
type Cycler struct {
	sched   timer.Scheduler
	timeout time.Duration
	logger  *logging.Logger

	state  State
	expiry timer.Handle
}

// NewCycler creates a cycler. A non-positive timeout uses DefaultTimeout.
func NewCycler(sched timer.Scheduler, timeout time.Duration, logger *logging.Logger) *Cycler {
	if logger == nil {
		logger = logging.NullLogger
	}
	c := &Cycler{sched: sched, logger: logger.WithComponent("multitap")}
	c.SetTimeout(timeout)
	return c
}

// SetTimeout changes the inter-tap window.
func (c *Cycler) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.timeout = d
}

// Timeout returns the inter-tap window.
func (c *Cycler) Timeout() time.Duration {
	return c.timeout
}

// State returns the current cycle.
func (c *Cycler) State() State {
	return c.state
}

// HandleTap processes a tap of code. The first tap of a cycle commits the
// first variant. A repeat tap of the same key within the timeout deletes
// the previously committed variant and commits the next one.
func (c *Cycler) HandleTap(out sink.TextSink, code key.Code, m layout.Mapping, upper bool) Result {
	if !m.HasTaps() {
		return Result{}
	}

	now := c.sched.Now()
	repeat := c.state.Active && c.state.LastCode == code && now.Sub(c.state.LastTap) <= c.timeout

	index := 0
	if repeat {
		index = (c.state.TapIndex + 1) % len(m.Taps)
	}
	text := m.Taps[index].Text(upper)

	if repeat {
		if err := out.DeleteBeforeCursor(1); err != nil {
			c.logger.Debug("tap on %v skipped: %v", code, err)
			return Result{Handled: true}
		}
	}
	if err := out.CommitText(text); err != nil {
		c.logger.Debug("tap on %v skipped: %v", code, err)
		c.Reset()
		return Result{Handled: true}
	}

	c.state = State{Active: true, LastCode: code, TapIndex: index, LastTap: now}
	c.restartExpiry()
	c.logger.Debug("tap %v index %d -> %q", code, index, text)

	return Result{Handled: true, Committed: text, ReplacedInWindow: repeat}
}

func (c *Cycler) restartExpiry() {
	if c.expiry != nil {
		c.expiry.Cancel()
	}
	var h timer.Handle
	h = c.sched.Schedule(c.timeout, func() {
		if c.expiry != h {
			return
		}
		c.expiry = nil
		c.state.Active = false
	})
	c.expiry = h
}

// Reset ends the current cycle.
func (c *Cycler) Reset() {
	if c.expiry != nil {
		c.expiry.Cancel()
		c.expiry = nil
	}
	c.state = State{}
}
