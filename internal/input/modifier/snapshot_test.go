package modifier

import (
	"testing"

	"github.com/dshills/physkey/internal/input/key"
)

func TestDominant(t *testing.T) {
	tests := []struct {
		name  string
		shift bool
		ctrl  bool
		alt   bool
		sym   bool
		want  key.Modifier
	}{
		{"none", false, false, false, false, key.ModNone},
		{"shift alone", true, false, false, false, key.ModShift},
		{"alt over ctrl", false, true, true, false, key.ModAlt},
		{"sym over alt", false, false, true, true, key.ModSym},
		{"ctrl over sym", false, true, false, true, key.ModCtrl},
		{"alt over ctrl over sym", false, true, true, true, key.ModAlt},
		{"sym over shift", true, false, false, true, key.ModSym},
		{"alt over shift", true, false, true, false, key.ModAlt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil, 0, nil)
			m.SetOneShot(Shift, tt.shift)
			m.SetLatched(Ctrl, tt.ctrl)
			m.SetOneShot(Alt, tt.alt)

			got := m.Snapshot().WithSym(tt.sym).Dominant()
			if got != tt.want {
				t.Errorf("Dominant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotHostMeta(t *testing.T) {
	m := NewMachine(nil, 0, nil)
	snap := m.Snapshot().WithHostMeta(key.MetaCtrlOn | key.MetaCtrlLeftOn | key.MetaSymOn)

	if !snap.Active(Ctrl) || !snap.Held(Ctrl) {
		t.Error("host reported Ctrl should count as held")
	}
	if snap.SymActive() {
		t.Error("host Sym bit must not open a Sym page")
	}
	if got := snap.Modifiers(); got != key.ModCtrl {
		t.Errorf("Modifiers() = %v, want Ctrl", got)
	}
}
