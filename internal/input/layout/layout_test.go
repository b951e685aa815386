package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/sink"
)

func TestCasingUpper(t *testing.T) {
	tests := []struct {
		name   string
		casing Casing
		want   bool
	}{
		{"none", Casing{}, false},
		{"shift", Casing{Shift: true}, true},
		{"caps", Casing{CapsLock: true}, true},
		{"caps and shift", Casing{Shift: true, CapsLock: true}, false},
		{"one-shot", Casing{OneShot: true}, true},
		{"one-shot beats caps and shift", Casing{OneShot: true, Shift: true, CapsLock: true}, true},
	}
	for _, tt := range tests {
		if got := tt.casing.Upper(); got != tt.want {
			t.Errorf("%s: Upper() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolverFallbackChain(t *testing.T) {
	custom := NewLayout("custom").Set(key.CodeQ, Mapping{Lower: "ä", Upper: "Ä"})
	r := NewResolver(custom, QWERTY())

	s, ok := r.Resolve(key.CodeQ, Casing{}, 'q')
	assert.True(t, ok)
	assert.Equal(t, "ä", s, "custom layout wins")

	s, _ = r.Resolve(key.CodeQ, Casing{Shift: true}, 'Q')
	assert.Equal(t, "Ä", s)

	s, _ = r.Resolve(key.CodeW, Casing{OneShot: true}, 'w')
	assert.Equal(t, "W", s, "default layout")

	s, ok = r.Resolve(key.Code1, Casing{Shift: true}, '!')
	assert.True(t, ok)
	assert.Equal(t, "!", s, "host character")

	s, _ = r.Resolve(key.CodeUnknown, Casing{CapsLock: true}, 'é')
	assert.Equal(t, "É", s, "host letters follow casing")

	_, ok = r.Resolve(key.CodeDpadUp, Casing{}, 0)
	assert.False(t, ok)

	assert.True(t, r.IsMapped(key.CodeQ))
	assert.False(t, r.IsMapped(key.CodeSpace))
	assert.Equal(t, "custom", r.Name())

	codes := r.Codes()
	assert.Len(t, codes, len(QWERTY().Mappings))
	assert.Equal(t, key.CodeA, codes[0])
	assert.Empty(t, NewResolver(nil, nil).Codes())
}

func TestResolverUppercase(t *testing.T) {
	base := NewLayout("x").Set(key.CodeS, Mapping{Lower: "ß", Upper: "ẞ"})
	r := NewResolver(nil, base)

	assert.Equal(t, "ẞ", r.Uppercase(key.CodeS, "ß"))
	assert.Equal(t, "Ü", r.Uppercase(key.CodeU, "ü"))
}

func TestMappingTextDerivesUppercase(t *testing.T) {
	m := Mapping{Lower: "é"}
	assert.Equal(t, "É", m.Text(true))
	assert.Equal(t, "é", m.Text(false))
	assert.Equal(t, "Ö", Tap{Lower: "ö"}.Text(true))
}

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"azerty", "qwerty", "qwertz", "suretype"}, BuiltinNames())

	qwertz, err := Builtin("qwertz")
	require.NoError(t, err)
	m, _ := qwertz.Lookup(key.CodeY)
	assert.Equal(t, "z", m.Lower)
	m, _ = qwertz.Lookup(key.CodeQ)
	assert.Equal(t, "q", m.Lower)

	st, err := Builtin("suretype")
	require.NoError(t, err)
	m, _ = st.Lookup(key.CodeQ)
	require.True(t, m.HasTaps())
	assert.Equal(t, []Tap{{"q", "Q"}, {"w", "W"}}, m.Taps)
	m, _ = st.Lookup(key.CodeL)
	assert.False(t, m.HasTaps())
	assert.Equal(t, "l", m.Lower)

	_, err = Builtin("dvorak")
	assert.ErrorIs(t, err, ErrUnknownLayout)

	for _, name := range BuiltinNames() {
		l, _ := Builtin(name)
		assert.NoError(t, l.Validate(), name)
	}
}

func TestDefaultTables(t *testing.T) {
	tb := DefaultTables()

	s, ok := tb.SymFor(1, key.CodeA, false)
	assert.True(t, ok)
	assert.Equal(t, "😢", s)

	s, _ = tb.SymFor(2, key.CodeA, false)
	assert.Equal(t, "=", s)

	s, _ = tb.SymFor(2, key.CodeA, true)
	assert.Equal(t, "≠", s, "shifted table first")
	s, _ = tb.SymFor(2, key.CodeQ, true)
	assert.Equal(t, "~", s, "falls back to base table")

	_, ok = tb.SymFor(3, key.CodeA, false)
	assert.False(t, ok)

	s, _ = tb.AltFor(key.CodeW)
	assert.Equal(t, "1", s)

	c, ok := tb.CtrlFor(key.CodeC)
	require.True(t, ok)
	assert.Equal(t, CtrlAction, c.Kind)
	assert.Equal(t, sink.ActionCopy, c.Action)

	c, _ = tb.CtrlFor(key.CodeE)
	assert.Equal(t, CtrlKeycode, c.Kind)
	assert.Equal(t, key.CodeDpadUp, c.Key)

	assert.Equal(t, "à", tb.VariationsFor('a')[0])
	assert.Equal(t, "À", tb.VariationsFor('A')[0])
	assert.Equal(t, "ẞ", tb.VariationsFor('S')[0])
}

func TestTablesMergeAndClone(t *testing.T) {
	tb := DefaultTables()
	extra := NewTables()
	extra.Alt[key.CodeQ] = "0"
	extra.Variations['x'] = []string{"×"}

	clone := tb.Clone()
	tb.Merge(extra)

	s, _ := tb.AltFor(key.CodeQ)
	assert.Equal(t, "0", s)
	assert.Equal(t, []string{"×"}, tb.VariationsFor('x'))

	s, _ = clone.AltFor(key.CodeQ)
	assert.Equal(t, "#", s, "clone is independent")
}

func TestParseCtrlMapping(t *testing.T) {
	m, err := ParseCtrlMapping("keycode", "DPAD_LEFT")
	require.NoError(t, err)
	assert.Equal(t, KeyMapping(key.CodeDpadLeft), m)

	m, err = ParseCtrlMapping("action", "delete_line")
	require.NoError(t, err)
	assert.Equal(t, sink.ActionNone, m.Action)
	assert.Equal(t, "action:delete_line", m.String())

	_, err = ParseCtrlMapping("macro", "x")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseCtrlMapping("keycode", "NOPE")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestLayoutCloneIsDeep(t *testing.T) {
	l, _ := Builtin("suretype")
	c := l.Clone()
	m := c.Mappings[key.CodeQ]
	m.Taps[0].Lower = "x"

	orig := l.Mappings[key.CodeQ]
	assert.Equal(t, "q", orig.Taps[0].Lower)
}
