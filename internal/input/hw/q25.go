package hw

import "github.com/dshills/physkey/internal/input/key"

// Scan codes the rest of the pipeline associates with dedicated Ctrl and
// Sym keys (the values Titan 2 keyboards report natively).
const (
	ScanCodeCtrl uint32 = 251
	ScanCodeSym  uint32 = 253
)

// The Q25 keyboard reports its Ctrl key as right Shift and its Sym key as
// right Alt, with matching meta bits.
const (
	q25CodeCtrl = key.CodeShiftRight
	q25CodeSym  = key.CodeAltRight

	q25MetaShift = key.MetaShiftLeftOn
	q25MetaAlt   = key.MetaAltLeftOn
	q25MetaCtrl  = key.MetaShiftRightOn
	q25MetaSym   = key.MetaAltRightOn

	reloadMetas = key.MetaShiftMask | key.MetaAltMask | key.MetaCtrlMask | key.MetaSymOn

	canonicalShift = key.MetaShiftLeftOn | key.MetaShiftOn
	canonicalAlt   = key.MetaAltLeftOn | key.MetaAltOn
	canonicalCtrl  = key.MetaCtrlLeftOn | key.MetaCtrlOn
	canonicalSym   = key.MetaSymOn
)

// Q25 remaps the Blackberry Q25 keyboard.
type Q25 struct {
	// lastMeta is the raw meta of the last event that carried Q25 bits.
	// A release may arrive with the bits already cleared; checking the
	// previous event keeps that release on the remapped path.
	lastMeta key.Meta
}

// NewQ25 creates a Q25 remapper.
func NewQ25() *Q25 {
	return &Q25{}
}

// Name implements Remapper.
func (q *Q25) Name() string { return ProfileQ25 }

// NeedsRemapping implements Remapper.
func (q *Q25) NeedsRemapping() bool { return true }

// Remap implements Remapper.
func (q *Q25) Remap(ev key.Event) key.Event {
	isCtrl := ev.Code == q25CodeCtrl
	isSym := ev.Code == q25CodeSym

	switch {
	case isCtrl:
		ev.Code = key.CodeCtrlLeft
	case isSym:
		ev.Code = key.CodeSym
	}

	// The scan code is only rewritten together with the meta state.
	if (ev.Meta|q.lastMeta)&(q25MetaCtrl|q25MetaSym) == 0 {
		return ev
	}
	q.lastMeta = ev.Meta
	ev.Meta = rebuildMeta(ev.Meta)
	switch {
	case isCtrl:
		ev.ScanCode = ScanCodeCtrl
	case isSym:
		ev.ScanCode = ScanCodeSym
	}
	return ev
}

func rebuildMeta(raw key.Meta) key.Meta {
	var m key.Meta
	if raw&q25MetaShift != 0 {
		m |= canonicalShift
	}
	if raw&q25MetaCtrl != 0 {
		m |= canonicalCtrl
	}
	if raw&q25MetaAlt != 0 {
		m |= canonicalAlt
	}
	if raw&q25MetaSym != 0 {
		m |= canonicalSym
	}
	return raw&^reloadMetas | m
}
