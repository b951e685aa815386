package modifier

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/dshills/physkey/internal/logging"
)

// Machine owns the state of every tracked modifier. It is not safe for
// concurrent use; the router calls it from its single dispatch goroutine.
type Machine struct {
	clock     clock.PassiveClock
	doubleTap time.Duration
	logger    *logging.Logger

	states [numKinds]State

	// consecutive is true while no non-modifier key has been seen since the
	// modifier's last tap.
	consecutive [numKinds]bool

	// usedWhileHeld is true when a non-modifier key was pressed during the
	// current physical hold.
	usedWhileHeld [numKinds]bool
}

// NewMachine creates a machine. A nil clock uses the real clock and a
// non-positive threshold uses DefaultDoubleTapThreshold.
func NewMachine(clk clock.PassiveClock, doubleTap time.Duration, logger *logging.Logger) *Machine {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if doubleTap <= 0 {
		doubleTap = DefaultDoubleTapThreshold
	}
	if logger == nil {
		logger = logging.NullLogger
	}
	return &Machine{
		clock:     clk,
		doubleTap: doubleTap,
		logger:    logger.WithComponent("modifier"),
	}
}

// SetDoubleTapThreshold changes the double-tap window.
func (m *Machine) SetDoubleTapThreshold(d time.Duration) {
	if d <= 0 {
		d = DefaultDoubleTapThreshold
	}
	m.doubleTap = d
}

// DoubleTapThreshold returns the double-tap window.
func (m *Machine) DoubleTapThreshold() time.Duration {
	return m.doubleTap
}

// State returns a copy of the state of k.
func (m *Machine) State(k Kind) State {
	return m.states[k]
}

// Press handles a physical key-down of modifier k.
//
// inputActive tells whether an editable field has focus. It only matters
// for a navigation Ctrl latch: tapping Ctrl releases it, and the tap is
// swallowed when no field is active. onNavCancelled runs whenever a
// navigation latch is released.
func (m *Machine) Press(k Kind, inputActive bool, onNavCancelled func()) Outcome {
	s := &m.states[k]
	if s.Held {
		// Host auto-repeat.
		return Outcome{}
	}

	now := m.clock.Now()

	if k == Ctrl && s.NavLatched {
		s.Held = true
		s.Latched = false
		s.NavLatched = false
		s.OneShot = false
		s.LastPress = now
		m.consecutive[k] = false
		m.usedWhileHeld[k] = false
		m.logger.Debug("ctrl tap released navigation latch")
		if onNavCancelled != nil {
			onNavCancelled()
		}
		return Outcome{Consume: !inputActive, Changed: true}
	}

	within := !s.LastPress.IsZero() && now.Sub(s.LastPress) <= m.doubleTap
	prev := *s

	switch {
	case s.Latched:
		s.Latched = false
		s.OneShot = false
	case s.OneShot:
		s.OneShot = false
		if m.consecutive[k] && within {
			s.Latched = true
		}
	default:
		s.OneShot = true
	}

	s.Held = true
	s.LastPress = now
	m.consecutive[k] = true
	m.usedWhileHeld[k] = false

	m.logger.Debug("%v down: one-shot %v->%v latched %v->%v", k, prev.OneShot, s.OneShot, prev.Latched, s.Latched)
	return Outcome{Changed: true}
}

// Release handles a physical key-up of modifier k. A one-shot armed by
// this press is dropped when another key was typed during the hold, since
// the modifier was already used as a chord. It reports whether the visible
// state changed.
func (m *Machine) Release(k Kind) bool {
	s := &m.states[k]
	if !s.Held {
		return false
	}
	s.Held = false
	if m.usedWhileHeld[k] {
		m.usedWhileHeld[k] = false
		if s.OneShot {
			s.OneShot = false
			m.logger.Debug("%v released after chord, one-shot dropped", k)
		}
	}
	return true
}

// RegisterNonModifierKey records that a non-modifier key went down. It
// breaks double-tap consecutiveness for every modifier.
func (m *Machine) RegisterNonModifierKey() {
	for _, k := range Kinds {
		m.consecutive[k] = false
		if m.states[k].Held {
			m.usedWhileHeld[k] = true
		}
	}
}

// ConsumeOneShot clears the one-shot of k and reports whether it was set.
// Latches are never consumed.
func (m *Machine) ConsumeOneShot(k Kind) bool {
	s := &m.states[k]
	if !s.OneShot {
		return false
	}
	s.OneShot = false
	m.logger.Debug("%v one-shot consumed", k)
	return true
}

// SetOneShot arms or clears the one-shot of k directly.
func (m *Machine) SetOneShot(k Kind, on bool) {
	m.states[k].OneShot = on
}

// SetLatched sets or clears the latch of k directly.
func (m *Machine) SetLatched(k Kind, on bool) {
	s := &m.states[k]
	s.Latched = on
	if !on {
		s.NavLatched = false
	}
}

// CapsLock reports whether Shift is latched.
func (m *Machine) CapsLock() bool {
	return m.states[Shift].Latched
}

// EngageNavLatch latches Ctrl on behalf of navigation mode.
func (m *Machine) EngageNavLatch() {
	s := &m.states[Ctrl]
	s.Latched = true
	s.NavLatched = true
	s.OneShot = false
	m.logger.Debug("navigation latch engaged")
}

// ReleaseNavLatch drops a navigation Ctrl latch. It reports whether one
// was engaged.
func (m *Machine) ReleaseNavLatch() bool {
	s := &m.states[Ctrl]
	if !s.NavLatched {
		return false
	}
	s.Latched = false
	s.NavLatched = false
	m.logger.Debug("navigation latch released")
	return true
}

// NavLatched reports whether Ctrl is latched by navigation mode.
func (m *Machine) NavLatched() bool {
	return m.states[Ctrl].NavLatched
}

// Clear drops every flag of k. Held state is kept unless resetHeld is set.
func (m *Machine) Clear(k Kind, resetHeld bool) {
	s := &m.states[k]
	held := s.Held && !resetHeld
	*s = State{Held: held, LastPress: s.LastPress}
	m.consecutive[k] = false
	m.usedWhileHeld[k] = false
}

// Reset clears every modifier. With preserveNav a navigation Ctrl latch
// survives; otherwise it is dropped and onNavCancelled runs.
func (m *Machine) Reset(preserveNav bool, onNavCancelled func()) {
	nav := m.states[Ctrl].NavLatched
	for _, k := range Kinds {
		m.states[k] = State{}
		m.consecutive[k] = false
		m.usedWhileHeld[k] = false
	}
	if nav {
		if preserveNav {
			m.states[Ctrl].Latched = true
			m.states[Ctrl].NavLatched = true
		} else if onNavCancelled != nil {
			onNavCancelled()
		}
	}
	m.logger.Debug("modifiers reset (preserve navigation %v)", preserveNav)
}

// Snapshot returns the current state of every modifier.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{states: m.states}
}
