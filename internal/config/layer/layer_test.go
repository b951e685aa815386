package layer

import (
	"reflect"
	"testing"
)

func TestSource_String(t *testing.T) {
	tests := []struct {
		source Source
		want   string
	}{
		{SourceDefaults, "defaults"},
		{SourceFile, "file"},
		{SourceEnv, "env"},
		{SourceFlags, "flags"},
		{Source(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.source.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	l := New(SourceEnv, nil)
	if l.Name != "env" || l.Priority != PriorityEnv {
		t.Errorf("New(SourceEnv) = %+v", l)
	}
	if l.Data == nil {
		t.Error("expected non-nil data")
	}
}

func TestLayer_Clone(t *testing.T) {
	l := New(SourceFile, map[string]any{"keyboard": map[string]any{"long_press_mode": "alt"}})
	l.Path = "/etc/physkey.toml"

	c := l.Clone()
	c.Data["keyboard"].(map[string]any)["long_press_mode"] = "sym"

	if v, _ := GetByPath(l.Data, "keyboard.long_press_mode"); v != "alt" {
		t.Errorf("original changed to %v", v)
	}
	if c.Path != l.Path {
		t.Errorf("Path = %q, want %q", c.Path, l.Path)
	}
}

func TestManager_MergeByPriority(t *testing.T) {
	m := NewManager()
	m.Put(New(SourceEnv, map[string]any{"keyboard": map[string]any{"long_press_threshold_ms": int64(300)}}))
	m.Put(New(SourceDefaults, map[string]any{"keyboard": map[string]any{
		"long_press_threshold_ms": int64(500),
		"long_press_mode":         "alt",
	}}))
	m.Put(New(SourceFile, map[string]any{"keyboard": map[string]any{
		"long_press_threshold_ms": int64(400),
		"long_press_mode":         "sym",
	}}))

	if got := m.Names(); !reflect.DeepEqual(got, []string{"defaults", "file", "env"}) {
		t.Errorf("Names() = %v", got)
	}

	merged := m.Merge()
	if v, _ := GetByPath(merged, "keyboard.long_press_threshold_ms"); v != int64(300) {
		t.Errorf("threshold = %v, want 300 from env", v)
	}
	if v, _ := GetByPath(merged, "keyboard.long_press_mode"); v != "sym" {
		t.Errorf("mode = %v, want sym from file", v)
	}

	if got := m.WhichLayer("keyboard.long_press_mode"); got != "file" {
		t.Errorf("WhichLayer(mode) = %q, want file", got)
	}
	if got := m.WhichLayer("sym.pages"); got != "" {
		t.Errorf("WhichLayer(unset) = %q, want empty", got)
	}

	// The merged map is a copy.
	SetByPath(merged, "keyboard.long_press_mode", "shift")
	if v, _ := GetByPath(m.Merge(), "keyboard.long_press_mode"); v != "sym" {
		t.Errorf("Merge() result shares state with the cache: %v", v)
	}
}

func TestManager_PutReplacesAndRemove(t *testing.T) {
	m := NewManager()
	m.Put(New(SourceFile, map[string]any{"device": map[string]any{"profile": "q25"}}))
	m.Put(New(SourceFile, map[string]any{"device": map[string]any{"profile": "none"}}))

	if len(m.Names()) != 1 {
		t.Fatalf("Names() = %v, want one layer", m.Names())
	}
	if v, _ := GetByPath(m.Merge(), "device.profile"); v != "none" {
		t.Errorf("profile = %v, want none", v)
	}
	if m.Layer("file") == nil {
		t.Error("Layer(file) = nil")
	}

	if !m.Remove("file") {
		t.Error("Remove(file) = false")
	}
	if m.Remove("file") {
		t.Error("second Remove(file) = true")
	}
	if len(m.Merge()) != 0 {
		t.Error("expected empty merge after Remove")
	}
}

func TestSetByPath(t *testing.T) {
	data := map[string]any{"layout": "flat"}
	SetByPath(data, "layout.name", "azerty")
	SetByPath(data, "logging.level", "debug")

	if v, ok := GetByPath(data, "layout.name"); !ok || v != "azerty" {
		t.Errorf("layout.name = %v", v)
	}
	if v, ok := GetByPath(data, "logging.level"); !ok || v != "debug" {
		t.Errorf("logging.level = %v", v)
	}
	if _, ok := GetByPath(data, "logging.level.x"); ok {
		t.Error("path through a scalar should not resolve")
	}
}

func TestDiffSections(t *testing.T) {
	old := map[string]any{
		"keyboard": map[string]any{"long_press_mode": "alt"},
		"sym":      map[string]any{"pages": []any{"emoji"}},
		"launcher": map[string]any{"enabled": true},
	}
	next := map[string]any{
		"keyboard": map[string]any{"long_press_mode": "sym"},
		"sym":      map[string]any{"pages": []any{"emoji"}},
		"delete":   map[string]any{"swipe_to_delete": true},
	}

	got := DiffSections(old, next)
	want := []string{"delete", "keyboard", "launcher"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiffSections() = %v, want %v", got, want)
	}
	if got := DiffSections(old, old); len(got) != 0 {
		t.Errorf("DiffSections(same) = %v, want none", got)
	}
}
