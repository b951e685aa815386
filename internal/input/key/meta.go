package key

// Meta is the host meta-state bitmask reported with each event.
type Meta uint32

const (
	MetaShiftOn      Meta = 0x1
	MetaAltOn        Meta = 0x2
	MetaSymOn        Meta = 0x4
	MetaAltLeftOn    Meta = 0x10
	MetaAltRightOn   Meta = 0x20
	MetaShiftLeftOn  Meta = 0x40
	MetaShiftRightOn Meta = 0x80
	MetaCtrlOn       Meta = 0x1000
	MetaCtrlLeftOn   Meta = 0x2000
	MetaCtrlRightOn  Meta = 0x4000
	MetaCapsLockOn   Meta = 0x100000

	MetaShiftMask = MetaShiftOn | MetaShiftLeftOn | MetaShiftRightOn
	MetaAltMask   = MetaAltOn | MetaAltLeftOn | MetaAltRightOn
	MetaCtrlMask  = MetaCtrlOn | MetaCtrlLeftOn | MetaCtrlRightOn
)

// Has returns true if all bits of flag are set.
func (m Meta) Has(flag Meta) bool {
	return m&flag == flag
}

// Any returns true if any bit of mask is set.
func (m Meta) Any(mask Meta) bool {
	return m&mask != 0
}

// Modifiers converts the meta bits to the logical modifier set.
func (m Meta) Modifiers() Modifier {
	var mods Modifier
	if m.Any(MetaShiftMask) {
		mods = mods.With(ModShift)
	}
	if m.Any(MetaCtrlMask) {
		mods = mods.With(ModCtrl)
	}
	if m.Any(MetaAltMask) {
		mods = mods.With(ModAlt)
	}
	if m.Any(MetaSymOn) {
		mods = mods.With(ModSym)
	}
	return mods
}
