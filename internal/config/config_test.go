package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/physkey/internal/config/loader"
	"github.com/dshills/physkey/internal/config/notify"
	"github.com/dshills/physkey/internal/input"
)

// newTestConfig returns a Config reading path and the given environment
// instead of the process environment.
func newTestConfig(t *testing.T, path string, env []string, opts ...Option) *Config {
	t.Helper()
	envLoader := loader.NewEnvLoader(loader.DefaultEnvPrefix).WithEnviron(func() []string { return env })
	opts = append([]Option{WithPath(path), WithEnvLoader(envLoader), WithWatcher(false)}, opts...)
	c := New(opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// recorder collects changes delivered to an observer.
type recorder struct {
	mu      sync.Mutex
	changes []notify.Change
}

func (r *recorder) observe(c notify.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) snapshot() []notify.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Change(nil), r.changes...)
}

func TestConfig_LoadDefaults(t *testing.T) {
	c := newTestConfig(t, filepath.Join(t.TempDir(), "missing.toml"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := c.Settings()
	want := Defaults()
	if s.Keyboard != want.Keyboard || s.Device != want.Device || s.Layout != want.Layout {
		t.Errorf("Settings() = %+v, want defaults", s)
	}
	if got := c.Origin("keyboard.long_press_mode"); got != "defaults" {
		t.Errorf("Origin() = %q, want defaults", got)
	}
}

func TestConfig_LoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, filepath.Join(dir, "base.toml"), `
[delete]
alt_backspace = true
`)
	writeFile(t, path, `
"@include" = "base.toml"

[keyboard]
long_press_mode = "sym"
long_press_threshold_ms = 300

[sym]
pages = ["symbols"]
`)

	c := newTestConfig(t, path, []string{
		"PHYSKEY_KEYBOARD_LONG_PRESS_THRESHOLD_MS=250ms",
		"PHYSKEY_DEVICE=q25",
	})
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := c.Settings()
	if s.Keyboard.LongPressMode != "sym" {
		t.Errorf("LongPressMode = %q, want sym", s.Keyboard.LongPressMode)
	}
	if s.Keyboard.LongPressThresholdMS != 250 {
		t.Errorf("LongPressThresholdMS = %d, want 250 from env", s.Keyboard.LongPressThresholdMS)
	}
	if !s.Keyboard.MultiTapEnabled {
		t.Error("unset keys should keep their defaults")
	}
	if len(s.Sym.Pages) != 1 || s.Sym.Pages[0] != "symbols" {
		t.Errorf("Pages = %v, want [symbols]", s.Sym.Pages)
	}
	if !s.Delete.AltBackspace {
		t.Error("included file not applied")
	}
	if s.Device.Profile != "q25" {
		t.Errorf("Profile = %q, want q25", s.Device.Profile)
	}

	if got := c.Origin("keyboard.long_press_threshold_ms"); got != "env" {
		t.Errorf("Origin(threshold) = %q, want env", got)
	}
	if got := c.Origin("keyboard.long_press_mode"); got != "file" {
		t.Errorf("Origin(mode) = %q, want file", got)
	}
}

func TestConfig_LoadRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, path, `
[keyboard]
long_press_mode = "hold"
`)

	c := newTestConfig(t, path, nil)
	err := c.Load(context.Background())
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "keyboard.long_press_mode") {
		t.Errorf("error = %v, want it to name the setting", err)
	}
}

func TestConfig_LoadParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, path, "[keyboard\n")

	c := newTestConfig(t, path, nil)
	err := c.Load(context.Background())

	var perr *loader.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want *loader.ParseError", err)
	}
	if perr.Path != path {
		t.Errorf("Path = %q, want %q", perr.Path, path)
	}
}

func TestConfig_LoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestConfig(t, filepath.Join(t.TempDir(), "physkey.toml"), nil)
	if err := c.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestConfig_ReloadPublishesChangedSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, path, "[keyboard]\nlong_press_mode = \"alt\"\n")

	c := newTestConfig(t, path, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var all, symOnly recorder
	c.Subscribe(all.observe)
	c.SubscribePath("sym", symOnly.observe)

	writeFile(t, path, "[keyboard]\nlong_press_mode = \"shift\"\n[launcher]\nenabled = true\n")
	if err := c.Reload(context.Background(), path); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	got := all.snapshot()
	if len(got) != 3 {
		t.Fatalf("received %d changes, want 3: %+v", len(got), got)
	}
	if got[0].Path != "keyboard" || got[1].Path != "launcher" || got[2].Type != notify.ChangeReload {
		t.Errorf("changes = %+v", got)
	}
	oldKb, _ := got[0].OldValue.(KeyboardSettings)
	newKb, _ := got[0].NewValue.(KeyboardSettings)
	if oldKb.LongPressMode != "alt" || newKb.LongPressMode != "shift" {
		t.Errorf("keyboard change %q -> %q", oldKb.LongPressMode, newKb.LongPressMode)
	}
	if got[0].Source != path {
		t.Errorf("Source = %q, want %q", got[0].Source, path)
	}

	// Only the reload reaches a subscriber of an unchanged section.
	if s := symOnly.snapshot(); len(s) != 1 || s[0].Type != notify.ChangeReload {
		t.Errorf("sym subscriber got %+v", s)
	}
}

func TestConfig_ReloadFailureKeepsSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, path, "[keyboard]\nlong_press_mode = \"sym\"\n")

	c := newTestConfig(t, path, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var rec recorder
	c.Subscribe(rec.observe)

	writeFile(t, path, "[keyboard]\nlong_press_threshold_ms = \"slow\"\n")
	if err := c.Reload(context.Background(), path); err == nil {
		t.Fatal("expected Reload() to fail")
	}

	if got := c.Settings().Keyboard.LongPressMode; got != "sym" {
		t.Errorf("LongPressMode = %q, want previous value sym", got)
	}
	if got := c.Origin("keyboard.long_press_mode"); got != "file" {
		t.Errorf("Origin() = %q, previous file layer should be restored", got)
	}
	changes := rec.snapshot()
	if len(changes) != 1 || changes[0].Type != notify.ChangeError || changes[0].Err == nil {
		t.Errorf("changes = %+v, want one error", changes)
	}
}

func TestConfig_ReloadBeforeLoad(t *testing.T) {
	c := newTestConfig(t, filepath.Join(t.TempDir(), "physkey.toml"), nil)
	if err := c.Reload(context.Background(), "test"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Reload() error = %v, want ErrNotLoaded", err)
	}
	if err := c.Set("sym.auto_close", true); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Set() error = %v, want ErrNotLoaded", err)
	}
}

func TestConfig_Set(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, path, "[sym]\nauto_close = false\n")

	c := newTestConfig(t, path, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var rec recorder
	c.SubscribePath("sym", rec.observe)

	if err := c.Set("sym.auto_close", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !c.Settings().Sym.AutoClose {
		t.Error("AutoClose not applied")
	}
	changes := rec.snapshot()
	if len(changes) != 1 || changes[0].Source != SourceAPI {
		t.Errorf("changes = %+v, want one api change", changes)
	}

	// Overrides outrank the file across reloads.
	if err := c.Reload(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if !c.Settings().Sym.AutoClose {
		t.Error("override lost on reload")
	}
	if got := c.Origin("sym.auto_close"); got != "flags" {
		t.Errorf("Origin() = %q, want flags", got)
	}
}

func TestConfig_SetRejects(t *testing.T) {
	c := newTestConfig(t, filepath.Join(t.TempDir(), "physkey.toml"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"", "keyboard", ".mode", "keyboard."} {
		if err := c.Set(path, 1); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Set(%q) error = %v, want ErrInvalidPath", path, err)
		}
	}

	if err := c.Set("keyboard.long_press_mode", "hold"); err == nil {
		t.Error("expected an error for an invalid mode")
	}
	if got := c.Settings().Keyboard.LongPressMode; got != "alt" {
		t.Errorf("LongPressMode = %q after a rejected Set", got)
	}
	if c.Origin("keyboard.long_press_mode") != "defaults" {
		t.Error("rejected override should not stay installed")
	}
}

func TestConfig_SettingsSnapshot(t *testing.T) {
	c := newTestConfig(t, filepath.Join(t.TempDir(), "physkey.toml"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := c.Settings()
	s.Sym.Pages[0] = "changed"
	if c.Settings().Sym.Pages[0] != "emoji" {
		t.Error("Settings() should return a copy")
	}
}

func TestConfig_Close(t *testing.T) {
	c := newTestConfig(t, filepath.Join(t.TempDir(), "physkey.toml"), nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if err := c.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Load() after Close = %v, want ErrClosed", err)
	}
}

func TestConfig_LiveReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, path, "[launcher]\nenabled = false\n")

	c := newTestConfig(t, path, nil, WithWatcher(true), WithDebounce(20*time.Millisecond))
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 4)
	c.Subscribe(func(ch notify.Change) {
		if ch.Type == notify.ChangeReload {
			reloaded <- struct{}{}
		}
	})

	writeFile(t, path, "[launcher]\nenabled = true\n")

	// An editor may produce more than one write; wait for the final state.
	deadline := time.After(3 * time.Second)
	for !c.Settings().Launcher.Enabled {
		select {
		case <-reloaded:
		case <-deadline:
			t.Fatal("settings were not reloaded")
		}
	}
}

func TestConfig_WatchesIncludesAndLayoutFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.yaml")
	tables := filepath.Join(dir, "tables.json")
	writeFile(t, path, "\"@include\": base.yaml\nlayout:\n  tables_path: "+tables+"\n")
	writeFile(t, filepath.Join(dir, "base.yaml"), "launcher:\n  enabled: true\n")
	writeFile(t, tables, "{}")

	c := newTestConfig(t, path, nil, WithWatcher(true))
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !c.Settings().Launcher.Enabled {
		t.Error("included YAML file not applied")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if got := c.extraFiles[filepath.Join(dir, "base.yaml")]; got != roleInclude {
		t.Errorf("base.yaml role = %v, want include", got)
	}
	if got := c.extraFiles[tables]; got != roleLayout {
		t.Errorf("tables.json role = %v, want layout", got)
	}
}

func TestConfig_Bind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physkey.toml")
	writeFile(t, path, "[layout]\nname = \"azerty\"\n")

	c := newTestConfig(t, path, nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	sys := input.NewSystem(input.DefaultSystemConfig(), input.Options{})
	defer sys.Close()

	sub, err := c.Bind(sys)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer sub.Unsubscribe()

	if got := sys.Tables().Resolver().Name(); got != "azerty" {
		t.Errorf("layout = %q, want azerty", got)
	}

	if err := c.Set("layout.name", "suretype"); err != nil {
		t.Fatal(err)
	}
	if got := sys.Tables().Resolver().Name(); got != "suretype" {
		t.Errorf("layout after Set = %q, want suretype", got)
	}

	if err := c.Set("keyboard.long_press_mode", "variations"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("device.profile", "q25"); err != nil {
		t.Fatal(err)
	}
	if _, err := sys.Status(); err != nil {
		t.Errorf("system unusable after rebinding: %v", err)
	}
}
