package layout

import (
	"fmt"
	"sort"

	"github.com/dshills/physkey/internal/input/key"
)

// Tap is one entry in a multi-tap cycle.
type Tap struct {
	Lower string
	Upper string
}

// Text returns the tap in the requested case.
func (t Tap) Text(upper bool) string {
	if upper {
		if t.Upper != "" {
			return t.Upper
		}
		return ToUpper(t.Lower)
	}
	return t.Lower
}

// Mapping describes what one key produces.
type Mapping struct {
	Lower string
	Upper string

	// Taps lists multi-tap variants. Empty means the key does not cycle.
	Taps []Tap
}

// Text returns the mapping in the requested case. A missing uppercase
// form is derived from the lowercase one.
func (m Mapping) Text(upper bool) string {
	if upper {
		if m.Upper != "" {
			return m.Upper
		}
		return ToUpper(m.Lower)
	}
	return m.Lower
}

// HasTaps reports whether the key cycles through tap variants.
func (m Mapping) HasTaps() bool {
	return len(m.Taps) > 0
}

// Layout is a named set of key mappings.
type Layout struct {
	Name        string
	Description string
	Mappings    map[key.Code]Mapping
}

// NewLayout creates an empty layout.
func NewLayout(name string) *Layout {
	return &Layout{
		Name:     name,
		Mappings: make(map[key.Code]Mapping),
	}
}

// Set adds or replaces a mapping.
func (l *Layout) Set(code key.Code, m Mapping) *Layout {
	l.Mappings[code] = m
	return l
}

// Lookup returns the mapping for code.
func (l *Layout) Lookup(code key.Code) (Mapping, bool) {
	if l == nil {
		return Mapping{}, false
	}
	m, ok := l.Mappings[code]
	return m, ok
}

// Codes returns the mapped codes in ascending order.
func (l *Layout) Codes() []key.Code {
	codes := make([]key.Code, 0, len(l.Mappings))
	for c := range l.Mappings {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Validate checks that every mapping produces text.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return ErrNoName
	}
	for _, code := range l.Codes() {
		m := l.Mappings[code]
		if m.Lower == "" && m.Upper == "" && len(m.Taps) == 0 {
			return fmt.Errorf("%w: %v", ErrEmptyMapping, code)
		}
		for i, t := range m.Taps {
			if t.Lower == "" && t.Upper == "" {
				return fmt.Errorf("%w: %v tap %d", ErrEmptyMapping, code, i)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (l *Layout) Clone() *Layout {
	c := &Layout{
		Name:        l.Name,
		Description: l.Description,
		Mappings:    make(map[key.Code]Mapping, len(l.Mappings)),
	}
	for code, m := range l.Mappings {
		if m.Taps != nil {
			m.Taps = append([]Tap(nil), m.Taps...)
		}
		c.Mappings[code] = m
	}
	return c
}
