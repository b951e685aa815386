package key

import "strings"

// Modifier is a set of logical modifiers. Unlike Meta it does not say
// which side was pressed.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << (iota - 1)
	ModCtrl
	ModAlt
	ModSym
)

// modifierOrder is the order String prints modifiers in.
var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModSym, "Sym"},
}

// modifierAliases accepts the printed names plus short forms, lowercased.
var modifierAliases = map[string]Modifier{
	"ctrl": ModCtrl, "control": ModCtrl, "c": ModCtrl,
	"alt": ModAlt, "a": ModAlt,
	"shift": ModShift, "s": ModShift,
	"sym": ModSym, "symbol": ModSym,
}

func (m Modifier) Has(mod Modifier) bool         { return m&mod != 0 }
func (m Modifier) With(mod Modifier) Modifier    { return m | mod }
func (m Modifier) Without(mod Modifier) Modifier { return m &^ mod }
func (m Modifier) IsEmpty() bool                 { return m == ModNone }

func (m Modifier) HasShift() bool { return m.Has(ModShift) }
func (m Modifier) HasCtrl() bool  { return m.Has(ModCtrl) }
func (m Modifier) HasAlt() bool   { return m.Has(ModAlt) }
func (m Modifier) HasSym() bool   { return m.Has(ModSym) }

// String joins the set with "+", for example "Ctrl+Shift". The empty set
// prints as "".
func (m Modifier) String() string {
	names := make([]string, 0, len(modifierOrder))
	for _, e := range modifierOrder {
		if m.Has(e.mod) {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "+")
}

// ModifierFromName looks a single modifier name up, ignoring case. Unknown
// names give ModNone.
func ModifierFromName(name string) Modifier {
	return modifierAliases[strings.ToLower(strings.TrimSpace(name))]
}

// ParseModifiers reads "Ctrl+Alt" or "C-A". Unknown parts are skipped.
func ParseModifiers(s string) Modifier {
	sep := "+"
	if !strings.Contains(s, "+") {
		sep = "-"
	}
	var m Modifier
	for _, part := range strings.Split(s, sep) {
		m |= ModifierFromName(part)
	}
	return m
}
