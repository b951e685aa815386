package key

import (
	"testing"
	"time"
)

func TestMetaModifiers(t *testing.T) {
	tests := []struct {
		meta Meta
		want Modifier
	}{
		{0, ModNone},
		{MetaShiftOn | MetaShiftLeftOn, ModShift},
		{MetaCtrlOn, ModCtrl},
		{MetaAltRightOn, ModAlt},
		{MetaSymOn | MetaCtrlLeftOn, ModSym | ModCtrl},
		{MetaCapsLockOn, ModNone},
	}

	for _, tt := range tests {
		if got := tt.meta.Modifiers(); got != tt.want {
			t.Errorf("Meta(%#x).Modifiers() = %v, want %v", tt.meta, got, tt.want)
		}
	}
}

func TestEventHelpers(t *testing.T) {
	now := time.Unix(100, 0)
	ev := Down(CodeA, now).WithMeta(MetaShiftOn).WithRune('A')

	if !ev.IsDown() {
		t.Error("expected down event")
	}
	if !ev.IsShiftPressed() || ev.IsCtrlPressed() || ev.IsAltPressed() || ev.IsSymPressed() {
		t.Errorf("unexpected modifier flags for %v", ev)
	}
	if ev.Rune != 'A' {
		t.Errorf("Rune = %q, want 'A'", ev.Rune)
	}
	if got := ev.String(); got != "Shift+A down" {
		t.Errorf("String() = %q", got)
	}

	up := Up(CodeSym, now)
	if up.IsDown() {
		t.Error("expected up event")
	}
	if got := up.String(); got != "SYM up" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseAction(t *testing.T) {
	if a, err := ParseAction("up"); err != nil || a != ActionUp {
		t.Errorf("ParseAction(up) = %v, %v", a, err)
	}
	if _, err := ParseAction("sideways"); err == nil {
		t.Error("expected error")
	}
}
