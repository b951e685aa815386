package layout

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Casing describes the Shift state applied to one key.
type Casing struct {
	// Shift is true when Shift is physically held.
	Shift bool

	// CapsLock is true when Shift is latched.
	CapsLock bool

	// OneShot is true when a Shift one-shot applies to this key.
	OneShot bool
}

// Upper reports whether the key resolves to its uppercase form. A one-shot
// always wins; otherwise caps lock inverts physical Shift.
func (c Casing) Upper() bool {
	if c.OneShot {
		return true
	}
	return c.Shift != c.CapsLock
}

// ToUpper uppercases s without language specific rules.
func ToUpper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// ToLower lowercases s without language specific rules.
func ToLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Normalize returns s in NFC form.
func Normalize(s string) string {
	return norm.NFC.String(s)
}
