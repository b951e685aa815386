package layout

import (
	"fmt"
	"strings"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/sink"
)

// CtrlKind tells how a Ctrl mapping is applied.
type CtrlKind uint8

const (
	// CtrlAction performs a semantic editing action.
	CtrlAction CtrlKind = iota + 1

	// CtrlKeycode sends a non-printing key.
	CtrlKeycode
)

// String returns the name used in table files.
func (k CtrlKind) String() string {
	switch k {
	case CtrlAction:
		return "action"
	case CtrlKeycode:
		return "keycode"
	}
	return fmt.Sprintf("CtrlKind(%d)", k)
}

// ParseCtrlKind parses "action" or "keycode".
func ParseCtrlKind(s string) (CtrlKind, error) {
	switch strings.ToLower(s) {
	case "action":
		return CtrlAction, nil
	case "keycode":
		return CtrlKeycode, nil
	}
	return 0, fmt.Errorf("%w: ctrl mapping type %q", ErrInvalidValue, s)
}

// CtrlMapping is one entry of the Ctrl table. Action names that the sink
// does not know are kept so that the router can swallow the key.
type CtrlMapping struct {
	Kind   CtrlKind
	Action sink.Action
	Name   string
	Key    key.Code
}

// ActionMapping returns a Ctrl mapping to a semantic action.
func ActionMapping(a sink.Action) CtrlMapping {
	return CtrlMapping{Kind: CtrlAction, Action: a, Name: a.String()}
}

// KeyMapping returns a Ctrl mapping to a non-printing key.
func KeyMapping(code key.Code) CtrlMapping {
	return CtrlMapping{Kind: CtrlKeycode, Key: code, Name: code.String()}
}

// ParseCtrlMapping builds a mapping from its table form.
func ParseCtrlMapping(kind, value string) (CtrlMapping, error) {
	k, err := ParseCtrlKind(kind)
	if err != nil {
		return CtrlMapping{}, err
	}
	if k == CtrlKeycode {
		code, err := key.ParseCode(value)
		if err != nil {
			return CtrlMapping{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return KeyMapping(code), nil
	}
	a, err := sink.ParseAction(value)
	if err != nil {
		return CtrlMapping{Kind: CtrlAction, Action: sink.ActionNone, Name: value}, nil
	}
	return ActionMapping(a), nil
}

// String returns "kind:value".
func (m CtrlMapping) String() string {
	return m.Kind.String() + ":" + m.Name
}

// Tables holds the secondary character tables.
type Tables struct {
	Alt       map[key.Code]string
	Sym1      map[key.Code]string
	Sym1Upper map[key.Code]string
	Sym2      map[key.Code]string
	Sym2Upper map[key.Code]string
	Ctrl      map[key.Code]CtrlMapping

	// Variations maps a character to its alternatives, most common first.
	Variations map[rune][]string
}

// NewTables creates empty tables.
func NewTables() *Tables {
	return &Tables{
		Alt:        make(map[key.Code]string),
		Sym1:       make(map[key.Code]string),
		Sym1Upper:  make(map[key.Code]string),
		Sym2:       make(map[key.Code]string),
		Sym2Upper:  make(map[key.Code]string),
		Ctrl:       make(map[key.Code]CtrlMapping),
		Variations: make(map[rune][]string),
	}
}

// AltFor returns the Alt table entry for code.
func (t *Tables) AltFor(code key.Code) (string, bool) {
	s, ok := t.Alt[code]
	return s, ok && s != ""
}

// SymFor returns the entry of Sym page n (1 or 2) for code. With shifted
// the shifted table is tried first, falling back to the base table.
func (t *Tables) SymFor(n int, code key.Code, shifted bool) (string, bool) {
	var base, upper map[key.Code]string
	switch n {
	case 1:
		base, upper = t.Sym1, t.Sym1Upper
	case 2:
		base, upper = t.Sym2, t.Sym2Upper
	default:
		return "", false
	}
	if shifted {
		if s, ok := upper[code]; ok && s != "" {
			return s, true
		}
	}
	s, ok := base[code]
	return s, ok && s != ""
}

// CtrlFor returns the Ctrl table entry for code.
func (t *Tables) CtrlFor(code key.Code) (CtrlMapping, bool) {
	m, ok := t.Ctrl[code]
	return m, ok
}

// VariationsFor returns the alternatives of r.
func (t *Tables) VariationsFor(r rune) []string {
	return t.Variations[r]
}

// Merge overlays other onto t. Entries in other win.
func (t *Tables) Merge(other *Tables) {
	if other == nil {
		return
	}
	mergeStrings(t.Alt, other.Alt)
	mergeStrings(t.Sym1, other.Sym1)
	mergeStrings(t.Sym1Upper, other.Sym1Upper)
	mergeStrings(t.Sym2, other.Sym2)
	mergeStrings(t.Sym2Upper, other.Sym2Upper)
	for c, m := range other.Ctrl {
		t.Ctrl[c] = m
	}
	for r, v := range other.Variations {
		t.Variations[r] = append([]string(nil), v...)
	}
}

// Clone returns a deep copy.
func (t *Tables) Clone() *Tables {
	c := NewTables()
	c.Merge(t)
	return c
}

func mergeStrings(dst, src map[key.Code]string) {
	for c, s := range src {
		dst[c] = s
	}
}
