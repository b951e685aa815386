// Package longpress replaces a key's short-press character with an
// alternative when the key is held past a threshold.
//
// The short-press character is committed immediately. If the key is still
// down when the timer fires, that one character is deleted and the
// alternative for the active Mode is committed in its place.
package longpress

import (
	"fmt"
	"strings"
)

// Mode selects where the long-press alternative comes from.
type Mode uint8

const (
	// ModeAlt uses the Alt table.
	ModeAlt Mode = iota

	// ModeShift uses the uppercase form of the key.
	ModeShift

	// ModeVariations uses the first variation of the typed character.
	ModeVariations

	// ModeSym uses the preferred Sym page.
	ModeSym
)

// String returns the mode name used in settings.
func (m Mode) String() string {
	switch m {
	case ModeAlt:
		return "alt"
	case ModeShift:
		return "shift"
	case ModeVariations:
		return "variations"
	case ModeSym:
		return "sym"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alt", "":
		return ModeAlt, nil
	case "shift":
		return ModeShift, nil
	case "variations":
		return ModeVariations, nil
	case "sym":
		return ModeSym, nil
	}
	return ModeAlt, fmt.Errorf("unknown long press mode %q", s)
}
