package layout

import (
	"slices"
	"unicode"

	"github.com/dshills/physkey/internal/input/key"
)

// Resolver maps key codes to text through the fallback chain custom
// layout, default layout, host character, nothing.
type Resolver struct {
	custom *Layout
	base   *Layout
}

// NewResolver creates a resolver. Either layout may be nil.
func NewResolver(custom, base *Layout) *Resolver {
	return &Resolver{custom: custom, base: base}
}

// Lookup returns the mapping for code from the custom layout or, failing
// that, the default layout.
func (r *Resolver) Lookup(code key.Code) (Mapping, bool) {
	if m, ok := r.custom.Lookup(code); ok {
		return m, true
	}
	return r.base.Lookup(code)
}

// IsMapped reports whether any layout maps code.
func (r *Resolver) IsMapped(code key.Code) bool {
	_, ok := r.Lookup(code)
	return ok
}

// Codes returns every code either layout maps, in ascending order.
func (r *Resolver) Codes() []key.Code {
	var codes []key.Code
	for _, l := range []*Layout{r.custom, r.base} {
		if l != nil {
			codes = append(codes, l.Codes()...)
		}
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}

// Resolve returns the text code produces under casing. hostRune is the
// character the host reported for the event, or 0. The second result is
// false when nothing in the chain produces text.
func (r *Resolver) Resolve(code key.Code, casing Casing, hostRune rune) (string, bool) {
	upper := casing.Upper()
	if m, ok := r.Lookup(code); ok {
		if s := m.Text(upper); s != "" {
			return s, true
		}
	}
	if hostRune == 0 || !unicode.IsPrint(hostRune) {
		return "", false
	}
	s := string(hostRune)
	if unicode.IsLetter(hostRune) {
		if upper {
			s = ToUpper(s)
		} else {
			s = ToLower(s)
		}
	}
	return s, true
}

// Uppercase returns the uppercase form of the character code produced.
// Mapped keys use the layout's uppercase entry; anything else is
// uppercased algorithmically.
func (r *Resolver) Uppercase(code key.Code, committed string) string {
	if m, ok := r.Lookup(code); ok {
		if s := m.Text(true); s != "" {
			return s
		}
	}
	return ToUpper(committed)
}

// Name returns the name of the layout consulted first.
func (r *Resolver) Name() string {
	if r.custom != nil {
		return r.custom.Name
	}
	if r.base != nil {
		return r.base.Name
	}
	return ""
}
