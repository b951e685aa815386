// Package modifier tracks Shift, Ctrl and Alt through physical hold,
// one-shot and latched states.
//
// A tap arms a one-shot that applies to the next non-modifier key. A second
// tap arriving within the double-tap threshold with no other key in between
// promotes it to a latch (caps lock for Shift). Tapping a latched modifier
// turns it off entirely. Ctrl can also be latched by navigation mode, which
// is released differently from a user latch.
package modifier

import (
	"fmt"
	"time"

	"github.com/dshills/physkey/internal/input/key"
)

// Kind identifies a tracked modifier.
type Kind uint8

const (
	Shift Kind = iota
	Ctrl
	Alt

	numKinds
)

// Kinds lists every tracked modifier in a stable order.
var Kinds = [...]Kind{Shift, Ctrl, Alt}

// String returns the lowercase modifier name.
func (k Kind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Ctrl:
		return "ctrl"
	case Alt:
		return "alt"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Modifier returns the key.Modifier bit for k.
func (k Kind) Modifier() key.Modifier {
	switch k {
	case Shift:
		return key.ModShift
	case Ctrl:
		return key.ModCtrl
	case Alt:
		return key.ModAlt
	}
	return key.ModNone
}

// KindOf returns the modifier a key code belongs to.
func KindOf(code key.Code) (Kind, bool) {
	switch {
	case code.IsShift():
		return Shift, true
	case code.IsCtrl():
		return Ctrl, true
	case code.IsAlt():
		return Alt, true
	}
	return 0, false
}

// DefaultDoubleTapThreshold is used when no threshold is configured.
const DefaultDoubleTapThreshold = 300 * time.Millisecond

// State is the live state of one modifier.
type State struct {
	// Held is true while the key is physically down.
	Held bool

	// OneShot applies to exactly one following non-modifier key.
	OneShot bool

	// Latched persists until the modifier is tapped again.
	Latched bool

	// NavLatched marks a Ctrl latch engaged by navigation mode.
	NavLatched bool

	// LastPress is the time of the last key-down.
	LastPress time.Time
}

// Active reports whether the modifier applies to the next key.
func (s State) Active() bool {
	return s.Held || s.OneShot || s.Latched
}

// Outcome describes what the router should do with a modifier key-down.
type Outcome struct {
	// Consume means the event must not reach the host.
	Consume bool

	// Changed means the visible modifier state changed.
	Changed bool
}
