package layout

import (
	"fmt"
	"sort"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/sink"
)

// DefaultLayoutName is the layout used when none is configured.
const DefaultLayoutName = "qwerty"

var builtins = map[string]func() *Layout{
	"qwerty":   QWERTY,
	"qwertz":   QWERTZ,
	"azerty":   AZERTY,
	"suretype": SureType,
}

// Builtin returns a copy of a built-in layout.
func Builtin(name string) (*Layout, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return fn(), nil
}

// BuiltinNames lists the built-in layouts.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// letters builds a layout mapping each letter key to the letter given in
// order, so "azerty" maps the Q position to 'a'.
func letters(name, description, keys, chars string) *Layout {
	l := NewLayout(name)
	l.Description = description
	kr, cr := []rune(keys), []rune(chars)
	for i, k := range kr {
		code, ok := key.CodeForLetter(k)
		if !ok {
			continue
		}
		lower := string(cr[i])
		l.Set(code, Mapping{Lower: lower, Upper: ToUpper(lower)})
	}
	return l
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// QWERTY maps every letter key to its own letter.
func QWERTY() *Layout {
	return letters("qwerty", "US QWERTY", alphabet, alphabet)
}

// QWERTZ swaps Y and Z.
func QWERTZ() *Layout {
	return letters("qwertz", "German QWERTZ", "yz", "zy").merge(QWERTY())
}

// AZERTY swaps A/Q and Z/W.
func AZERTY() *Layout {
	return letters("azerty", "French AZERTY", "aqzw", "qawz").merge(QWERTY())
}

// merge fills codes missing from l with the entries of fallback.
func (l *Layout) merge(fallback *Layout) *Layout {
	for c, m := range fallback.Mappings {
		if _, ok := l.Mappings[c]; !ok {
			l.Mappings[c] = m
		}
	}
	return l
}

// SureType is a reduced keyboard where most keys carry two letters that
// are selected by tapping repeatedly.
func SureType() *Layout {
	l := NewLayout("suretype")
	l.Description = "Two letters per key, multi-tap"
	pairs := []struct {
		code key.Code
		taps string
	}{
		{key.CodeQ, "qw"}, {key.CodeE, "er"}, {key.CodeT, "ty"},
		{key.CodeU, "ui"}, {key.CodeO, "op"}, {key.CodeA, "as"},
		{key.CodeD, "df"}, {key.CodeG, "gh"}, {key.CodeJ, "jk"},
		{key.CodeL, "l"}, {key.CodeZ, "zx"}, {key.CodeC, "cv"},
		{key.CodeB, "bn"}, {key.CodeM, "m"},
	}
	for _, p := range pairs {
		m := Mapping{}
		for _, r := range p.taps {
			s := string(r)
			m.Taps = append(m.Taps, Tap{Lower: s, Upper: ToUpper(s)})
		}
		m.Lower, m.Upper = m.Taps[0].Lower, m.Taps[0].Upper
		if len(m.Taps) == 1 {
			m.Taps = nil
		}
		l.Set(p.code, m)
	}
	return l
}

// DefaultTables returns the built-in Alt, Sym, Ctrl and variation tables.
func DefaultTables() *Tables {
	t := NewTables()
	fillLetters(t.Alt, "qwertyuiopasdfghjklzxcvbnm",
		"#", "1", "2", "3", "(", ")", "_", "-", "+", "@",
		"*", "4", "5", "6", "/", ":", ";", "'", "\"",
		"7", "8", "9", "?", "!", ",", ".")
	t.Alt[key.CodeSpace] = "0"
	t.Alt[key.CodeComma] = ";"
	t.Alt[key.CodePeriod] = ":"

	fillLetters(t.Sym1, "qwertyuiopasdfghjklzxcvbnm",
		"😀", "😂", "🥰", "😍", "😘", "😜", "😎", "🤔", "😴", "😡",
		"😢", "😱", "👍", "👎", "👏", "🙏", "💪", "🔥", "❤️",
		"🎉", "✨", "💯", "✅", "❌", "👀", "🤷")
	fillLetters(t.Sym1Upper, "ad", "😭", "👌")

	fillLetters(t.Sym2, "qwertyuiopasdfghjklzxcvbnm",
		"~", "`", "|", "\\", "{", "}", "[", "]", "<", ">",
		"=", "%", "^", "&", "€", "£", "¥", "°", "§",
		"¡", "¿", "©", "®", "™", "±", "×")
	fillLetters(t.Sym2Upper, "asm", "≠", "‰", "÷")

	t.Ctrl[key.CodeC] = ActionMapping(sink.ActionCopy)
	t.Ctrl[key.CodeV] = ActionMapping(sink.ActionPaste)
	t.Ctrl[key.CodeX] = ActionMapping(sink.ActionCut)
	t.Ctrl[key.CodeZ] = ActionMapping(sink.ActionUndo)
	t.Ctrl[key.CodeA] = ActionMapping(sink.ActionSelectAll)
	t.Ctrl[key.CodeW] = ActionMapping(sink.ActionExpandSelectionLeft)
	t.Ctrl[key.CodeR] = ActionMapping(sink.ActionExpandSelectionRight)
	t.Ctrl[key.CodeE] = KeyMapping(key.CodeDpadUp)
	t.Ctrl[key.CodeS] = KeyMapping(key.CodeDpadLeft)
	t.Ctrl[key.CodeD] = KeyMapping(key.CodeDpadDown)
	t.Ctrl[key.CodeF] = KeyMapping(key.CodeDpadRight)
	t.Ctrl[key.CodeT] = KeyMapping(key.CodeTab)
	t.Ctrl[key.CodeQ] = KeyMapping(key.CodeEscape)
	t.Ctrl[key.CodeY] = KeyMapping(key.CodePageUp)
	t.Ctrl[key.CodeH] = KeyMapping(key.CodePageDown)

	for base, vs := range map[rune][]string{
		'a': {"à", "á", "â", "ä", "æ", "ã", "å", "ā"},
		'c': {"ç", "ć", "č"},
		'e': {"è", "é", "ê", "ë", "ē", "ė", "ę"},
		'i': {"ì", "í", "î", "ï", "ī", "į"},
		'l': {"ł"},
		'n': {"ñ", "ń"},
		'o': {"ò", "ó", "ô", "ö", "õ", "ø", "ō", "œ"},
		's': {"ß", "ś", "š"},
		'u': {"ù", "ú", "û", "ü", "ū"},
		'y': {"ÿ", "ý"},
		'z': {"ž", "ź", "ż"},
	} {
		t.Variations[base] = vs
		upper := make([]string, 0, len(vs))
		for _, v := range vs {
			if v == "ß" {
				upper = append(upper, "ẞ")
				continue
			}
			upper = append(upper, ToUpper(v))
		}
		t.Variations[[]rune(ToUpper(string(base)))[0]] = upper
	}
	t.Variations['.'] = []string{"…", "·", "•"}
	t.Variations['?'] = []string{"¿"}
	t.Variations['!'] = []string{"¡"}
	t.Variations['-'] = []string{"–", "—"}
	return t
}

func fillLetters(dst map[key.Code]string, letters string, values ...string) {
	for i, r := range letters {
		code, ok := key.CodeForLetter(r)
		if !ok || i >= len(values) {
			continue
		}
		dst[code] = values[i]
	}
}
