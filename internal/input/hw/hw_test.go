package hw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/physkey/internal/input/key"
)

var t0 = time.Unix(1_700_000_000, 0)

func TestIdentityLeavesEventsAlone(t *testing.T) {
	n := NewNormalizer(nil, nil)
	ev := key.Down(key.CodeShiftRight, t0).WithMeta(key.MetaShiftRightOn | key.MetaShiftOn)

	assert.Equal(t, ev, n.Normalize(ev))
	assert.Equal(t, "none", n.Profile())
}

func TestQ25_RemapsCtrlKey(t *testing.T) {
	n := NewNormalizer(NewQ25(), nil)

	down := n.Normalize(key.Down(key.CodeShiftRight, t0).WithMeta(key.MetaShiftRightOn | key.MetaShiftOn))
	assert.Equal(t, key.CodeCtrlLeft, down.Code)
	assert.Equal(t, ScanCodeCtrl, down.ScanCode)
	assert.True(t, down.IsCtrlPressed())
	assert.False(t, down.IsShiftPressed(), "the Q25 Ctrl key must not look like Shift")
}

func TestQ25_RemapsSymKey(t *testing.T) {
	n := NewNormalizer(NewQ25(), nil)

	down := n.Normalize(key.Down(key.CodeAltRight, t0).WithMeta(key.MetaAltRightOn | key.MetaAltOn))
	assert.Equal(t, key.CodeSym, down.Code)
	assert.Equal(t, ScanCodeSym, down.ScanCode)
	assert.True(t, down.IsSymPressed())
	// META_ALT_ON is rebuilt from the left Alt bit only.
	assert.False(t, down.IsAltPressed())
}

func TestQ25_KeepsScanCodeWithoutQ25Meta(t *testing.T) {
	n := NewNormalizer(NewQ25(), nil)

	ev := key.Down(key.CodeShiftRight, t0)
	ev.ScanCode = 54
	got := n.Normalize(ev)

	assert.Equal(t, key.CodeCtrlLeft, got.Code)
	assert.Equal(t, uint32(54), got.ScanCode, "scan code changes only with the meta patch")
	assert.Equal(t, key.Meta(0), got.Meta)
}

func TestQ25_ReleaseWithClearedMetaIsStillRemapped(t *testing.T) {
	n := NewNormalizer(NewQ25(), nil)

	n.Normalize(key.Down(key.CodeAltRight, t0).WithMeta(key.MetaAltRightOn))
	up := n.Normalize(key.Up(key.CodeAltRight, t0.Add(80*time.Millisecond)))

	assert.Equal(t, key.CodeSym, up.Code)
	assert.Equal(t, key.Meta(0), up.Meta)
}

func TestQ25_PatchesConcurrentKeysForOneCycle(t *testing.T) {
	n := NewNormalizer(NewQ25(), nil)

	// Ctrl held while C is pressed: C carries the raw right-Shift bit.
	n.Normalize(key.Down(key.CodeShiftRight, t0).WithMeta(key.MetaShiftRightOn))
	c := n.Normalize(key.Down(key.CodeC, t0.Add(10*time.Millisecond)).WithMeta(key.MetaShiftRightOn | key.MetaShiftOn))
	assert.Equal(t, key.CodeC, c.Code)
	assert.True(t, c.IsCtrlPressed())
	assert.False(t, c.IsShiftPressed())

	// Left Shift survives the rebuild.
	s := n.Normalize(key.Down(key.CodeS, t0.Add(20*time.Millisecond)).WithMeta(key.MetaShiftRightOn | key.MetaShiftLeftOn | key.MetaShiftOn))
	assert.True(t, s.IsCtrlPressed())
	assert.True(t, s.IsShiftPressed())
}

func TestQ25_PlainEventsUntouched(t *testing.T) {
	n := NewNormalizer(NewQ25(), nil)

	ev := key.Down(key.CodeA, t0).WithMeta(key.MetaShiftLeftOn | key.MetaShiftOn | key.MetaCapsLockOn)
	assert.Equal(t, ev, n.Normalize(ev))
}

func TestForProfile(t *testing.T) {
	assert.Equal(t, ProfileQ25, ForProfile("q25", "").Name())
	assert.Equal(t, ProfileNone, ForProfile("none", "Q25").Name())
	assert.Equal(t, ProfileQ25, ForProfile("auto", "Q25").Name())
	assert.Equal(t, ProfileNone, ForProfile("", "Pixel").Name())
	assert.Equal(t, ProfileNone, ForProfile("nonsense", "Q25").Name())

	assert.Equal(t, "Unihertz", KeyboardName("Titan2"))
	assert.Equal(t, "Blackberry", KeyboardName("Q25"))
	assert.Equal(t, "unknown", KeyboardName("Pixel"))
}
