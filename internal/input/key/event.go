package key

import (
	"fmt"
	"time"
)

// Action is the direction of a key transition.
type Action uint8

const (
	// ActionDown is a key press.
	ActionDown Action = iota
	// ActionUp is a key release.
	ActionUp
)

// String returns "down" or "up".
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionUp:
		return "up"
	default:
		return "unknown"
	}
}

// ParseAction parses "down" or "up".
func ParseAction(s string) (Action, error) {
	switch s {
	case "down", "DOWN", "d":
		return ActionDown, nil
	case "up", "UP", "u":
		return ActionUp, nil
	}
	return ActionDown, fmt.Errorf("unknown key action %q", s)
}

// Event is one physical key transition as reported by the host.
// Events are values; the normalizer returns a rewritten copy.
type Event struct {
	// Code identifies the key.
	Code Code

	// Action is down or up.
	Action Action

	// Meta is the host meta state at the time of the event.
	Meta Meta

	// Time is the device timestamp of the transition.
	Time time.Time

	// ScanCode is the physical scan code.
	ScanCode uint32

	// DeviceID identifies the reporting input device.
	DeviceID int

	// Rune is the character the host associates with the event, or 0.
	Rune rune
}

// NewEvent creates an event with the given code and action at time t.
func NewEvent(code Code, action Action, meta Meta, t time.Time) Event {
	return Event{
		Code:   code,
		Action: action,
		Meta:   meta,
		Time:   t,
	}
}

// Down creates a key-down event.
func Down(code Code, t time.Time) Event {
	return NewEvent(code, ActionDown, 0, t)
}

// Up creates a key-up event.
func Up(code Code, t time.Time) Event {
	return NewEvent(code, ActionUp, 0, t)
}

// WithMeta returns a copy of e with meta replaced.
func (e Event) WithMeta(meta Meta) Event {
	e.Meta = meta
	return e
}

// WithRune returns a copy of e with the host character set.
func (e Event) WithRune(r rune) Event {
	e.Rune = r
	return e
}

// IsDown returns true for key-down events.
func (e Event) IsDown() bool {
	return e.Action == ActionDown
}

// IsShiftPressed reports whether the host says Shift is held.
func (e Event) IsShiftPressed() bool {
	return e.Meta.Any(MetaShiftMask)
}

// IsCtrlPressed reports whether the host says Ctrl is held.
func (e Event) IsCtrlPressed() bool {
	return e.Meta.Any(MetaCtrlMask)
}

// IsAltPressed reports whether the host says Alt is held.
func (e Event) IsAltPressed() bool {
	return e.Meta.Any(MetaAltMask)
}

// IsSymPressed reports whether the host says Sym is held.
func (e Event) IsSymPressed() bool {
	return e.Meta.Any(MetaSymOn)
}

// Modifiers returns the logical modifiers from the event meta state.
func (e Event) Modifiers() Modifier {
	return e.Meta.Modifiers()
}

// String returns a compact representation such as "A down" or "Ctrl+C up".
func (e Event) String() string {
	mods := e.Modifiers()
	if mods.IsEmpty() {
		return fmt.Sprintf("%s %s", e.Code, e.Action)
	}
	return fmt.Sprintf("%s+%s %s", mods, e.Code, e.Action)
}
