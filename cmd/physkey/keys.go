package main

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/physkey/internal/input/key"
)

// Terminal keys standing in for the hardware modifier keys.
const (
	shiftKey = tcell.KeyF1
	altKey   = tcell.KeyF2
	ctrlKey  = tcell.KeyF3
	symKey   = tcell.KeyF4

	// holdKey makes the next key a long press.
	holdKey = tcell.KeyF5
)

var terminalKeys = map[tcell.Key]key.Code{
	tcell.KeyEnter:      key.CodeEnter,
	tcell.KeyBackspace:  key.CodeDel,
	tcell.KeyBackspace2: key.CodeDel,
	tcell.KeyTab:        key.CodeTab,
	tcell.KeyEscape:     key.CodeBack,
	tcell.KeyUp:         key.CodeDpadUp,
	tcell.KeyDown:       key.CodeDpadDown,
	tcell.KeyLeft:       key.CodeDpadLeft,
	tcell.KeyRight:      key.CodeDpadRight,
	tcell.KeyPgUp:       key.CodePageUp,
	tcell.KeyPgDn:       key.CodePageDown,
	shiftKey:            key.CodeShiftLeft,
	altKey:              key.CodeAltLeft,
	ctrlKey:             key.CodeCtrlLeft,
	symKey:              key.CodeSym,
}

var terminalRunes = map[rune]key.Code{
	' ':  key.CodeSpace,
	',':  key.CodeComma,
	'.':  key.CodePeriod,
	'\'': key.CodeApostrophe,
	'@':  key.CodeAt,
}

// keyPress is a terminal key translated to the hardware key it stands for.
type keyPress struct {
	Code key.Code

	// Rune is the character the terminal reported, or 0.
	Rune rune

	// Shift is set for uppercase letters typed with the terminal's Shift.
	Shift bool
}

// translateKey maps a terminal key to a hardware key press. ok is false for
// keys with no counterpart on the device.
func translateKey(k tcell.Key, r rune) (keyPress, bool) {
	if k != tcell.KeyRune {
		code, ok := terminalKeys[k]
		return keyPress{Code: code}, ok
	}

	lower := unicode.ToLower(r)
	if code, ok := key.CodeForLetter(lower); ok {
		return keyPress{Code: code, Rune: r, Shift: lower != r}, true
	}
	if r >= '0' && r <= '9' {
		return keyPress{Code: key.Code0 + key.Code(r-'0'), Rune: r}, true
	}
	if code, ok := terminalRunes[r]; ok {
		return keyPress{Code: code, Rune: r}, true
	}
	return keyPress{}, false
}
