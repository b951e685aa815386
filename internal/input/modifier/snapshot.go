package modifier

import "github.com/dshills/physkey/internal/input/key"

// Snapshot is an immutable view of the modifier state used to resolve one
// key event.
type Snapshot struct {
	states [numKinds]State
	host   key.Modifier
	sym    bool
}

// WithHostMeta merges modifiers the host reports as held into the view.
// Hosts sometimes report a held modifier the machine never saw go down.
func (s Snapshot) WithHostMeta(meta key.Meta) Snapshot {
	s.host = meta.Modifiers().Without(key.ModSym)
	return s
}

// WithSym records whether a Sym page is open.
func (s Snapshot) WithSym(active bool) Snapshot {
	s.sym = active
	return s
}

// State returns the state of k.
func (s Snapshot) State(k Kind) State {
	return s.states[k]
}

// Held reports whether k is physically held, by the machine or the host.
func (s Snapshot) Held(k Kind) bool {
	return s.states[k].Held || s.host.Has(k.Modifier())
}

// Active reports whether k applies to the current key.
func (s Snapshot) Active(k Kind) bool {
	return s.states[k].Active() || s.host.Has(k.Modifier())
}

// SymActive reports whether a Sym page is open.
func (s Snapshot) SymActive() bool {
	return s.sym
}

// CapsLock reports whether Shift is latched.
func (s Snapshot) CapsLock() bool {
	return s.states[Shift].Latched
}

// Dominant returns the modifier that decides how the current key is
// handled. Alt beats Ctrl. Sym beats both unless Ctrl is active, in which
// case Sym yields and Alt still beats Ctrl. Shift only wins alone.
func (s Snapshot) Dominant() key.Modifier {
	ctrl := s.Active(Ctrl)
	switch {
	case s.sym && !ctrl:
		return key.ModSym
	case s.Active(Alt):
		return key.ModAlt
	case ctrl:
		return key.ModCtrl
	case s.Active(Shift):
		return key.ModShift
	}
	return key.ModNone
}

// Modifiers returns every active modifier as a bitmask.
func (s Snapshot) Modifiers() key.Modifier {
	var mods key.Modifier
	for _, k := range Kinds {
		if s.Active(k) {
			mods = mods.With(k.Modifier())
		}
	}
	if s.sym {
		mods = mods.With(key.ModSym)
	}
	return mods
}
