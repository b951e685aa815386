package config

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/physkey/internal/input/hw"
	"github.com/dshills/physkey/internal/input/longpress"
	"github.com/dshills/physkey/internal/input/sym"
	"github.com/dshills/physkey/internal/logging"
)

func TestDefaults_RouterConfig(t *testing.T) {
	cfg, err := Defaults().RouterConfig()
	if err != nil {
		t.Fatalf("RouterConfig() error = %v", err)
	}

	if cfg.LongPress.Threshold != longpress.DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", cfg.LongPress.Threshold, longpress.DefaultThreshold)
	}
	if cfg.LongPress.Mode != longpress.ModeAlt {
		t.Errorf("Mode = %v, want alt", cfg.LongPress.Mode)
	}
	if cfg.LongPress.SymPage != int(sym.Page1) {
		t.Errorf("SymPage = %d, want emoji page", cfg.LongPress.SymPage)
	}
	if !cfg.MultiTapEnabled || !cfg.SwipeToDelete {
		t.Error("multi-tap and swipe to delete should default on")
	}
	if len(cfg.Sym.Pages) != 2 || cfg.Sym.Pages[0] != sym.Page1 {
		t.Errorf("Pages = %v, want [emoji symbols]", cfg.Sym.Pages)
	}
}

func TestSettings_RouterConfigClamps(t *testing.T) {
	s := Defaults()
	s.Keyboard.LongPressThresholdMS = 5
	s.Keyboard.MultiTapTimeoutMS = -20

	cfg, err := s.RouterConfig()
	if err != nil {
		t.Fatalf("RouterConfig() error = %v", err)
	}
	if cfg.LongPress.Threshold != longpress.MinThreshold {
		t.Errorf("Threshold = %v, want clamped to %v", cfg.LongPress.Threshold, longpress.MinThreshold)
	}
	if cfg.MultiTapTimeout != 0 {
		t.Errorf("MultiTapTimeout = %v, want 0", cfg.MultiTapTimeout)
	}

	s.Keyboard.LongPressThresholdMS = 60000
	cfg, _ = s.RouterConfig()
	if cfg.LongPress.Threshold != longpress.MaxThreshold {
		t.Errorf("Threshold = %v, want clamped to %v", cfg.LongPress.Threshold, longpress.MaxThreshold)
	}
}

func TestSettings_RouterConfigMapsFields(t *testing.T) {
	s := Defaults()
	s.Keyboard.LongPressMode = "sym"
	s.Keyboard.DoubleTapThresholdMS = 450
	s.Keyboard.ClearAltOnSpace = true
	s.Sym.Pages = []string{"symbols"}
	s.Sym.AutoClose = true
	s.Sym.EmojiLongPressFirst = false
	s.Delete = DeleteSettings{ShiftBackspace: true, AltBackspace: true, BackspaceAtStart: true}
	s.Launcher.Enabled = true

	cfg, err := s.RouterConfig()
	if err != nil {
		t.Fatalf("RouterConfig() error = %v", err)
	}
	if cfg.LongPress.Mode != longpress.ModeSym || cfg.LongPress.SymPage != 0 {
		t.Errorf("LongPress = %+v, want sym mode following the first page", cfg.LongPress)
	}
	if cfg.DoubleTapThreshold != 450*time.Millisecond {
		t.Errorf("DoubleTapThreshold = %v", cfg.DoubleTapThreshold)
	}
	if !cfg.ClearAltOnSpace || !cfg.Sym.AutoClose || !cfg.LauncherShortcuts {
		t.Error("boolean settings not carried over")
	}
	if len(cfg.Sym.Pages) != 1 || cfg.Sym.Pages[0] != sym.Page2 {
		t.Errorf("Pages = %v, want [symbols]", cfg.Sym.Pages)
	}
	if !cfg.ShiftBackspaceDelete || !cfg.AltBackspaceDelete || !cfg.BackspaceAtStartDelete || cfg.SwipeToDelete {
		t.Errorf("delete flags = %+v", s.Delete)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		path   string
	}{
		{"mode", func(s *Settings) { s.Keyboard.LongPressMode = "hold" }, "keyboard.long_press_mode"},
		{"page", func(s *Settings) { s.Sym.Pages = []string{"emoji", "off"} }, "sym.pages"},
		{"profile", func(s *Settings) { s.Device.Profile = "blackberry" }, "device.profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)

			err := s.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Errorf("Path = %q, want %q", verr.Path, tt.path)
			}
		})
	}

	if err := Defaults().Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}

func TestSettings_Remapper(t *testing.T) {
	s := Defaults()
	s.Device.Profile = hw.ProfileQ25
	if got := s.Remapper().Name(); got != hw.ProfileQ25 {
		t.Errorf("Remapper().Name() = %q, want q25", got)
	}

	s.Device.Profile = hw.ProfileNone
	if s.Remapper().NeedsRemapping() {
		t.Error("profile none should not remap")
	}
}

func TestSettings_LayoutSource(t *testing.T) {
	t.Setenv("PHYSKEY_LAYOUTS", "/opt/physkey")

	s := Defaults()
	s.Layout.CustomPath = "$PHYSKEY_LAYOUTS/custom.json"
	src := s.LayoutSource()

	if src.Layout != "qwerty" {
		t.Errorf("Layout = %q, want qwerty", src.Layout)
	}
	if src.CustomPath != "/opt/physkey/custom.json" {
		t.Errorf("CustomPath = %q", src.CustomPath)
	}
	if src.TablesPath != "" {
		t.Errorf("TablesPath = %q, want empty", src.TablesPath)
	}
}

func TestSettings_LoggerConfig(t *testing.T) {
	s := Defaults()
	s.Logging = LoggingSettings{Level: "debug", JSON: true}

	cfg := s.LoggerConfig()
	if cfg.Level != logging.LogLevelDebug || !cfg.JSON {
		t.Errorf("LoggerConfig() = %+v", cfg)
	}
}

func TestSettings_Section(t *testing.T) {
	s := Defaults()
	if got, ok := s.Section("keyboard").(KeyboardSettings); !ok || got != s.Keyboard {
		t.Errorf("Section(keyboard) = %v", s.Section("keyboard"))
	}
	if s.Section("editor") != nil {
		t.Error("unknown section should be nil")
	}
}

func TestDecode(t *testing.T) {
	s, err := Decode(map[string]any{
		"keyboard": map[string]any{"long_press_mode": "shift", "multitap_timeout_ms": 250},
		"sym":      map[string]any{"auto_close": true},
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Keyboard.LongPressMode != "shift" || s.Keyboard.MultiTapTimeoutMS != 250 || !s.Sym.AutoClose {
		t.Errorf("Decode() = %+v", s)
	}
	if s.Keyboard.LongPressThresholdMS != Defaults().Keyboard.LongPressThresholdMS {
		t.Error("unset keys should keep their defaults")
	}

	if _, err := Decode(map[string]any{"sym": map[string]any{"pages": "emoji"}}); err == nil {
		t.Error("expected an error for pages given as a string")
	}
	if _, err := Decode(nil); err != nil {
		t.Errorf("Decode(nil) error = %v", err)
	}
}
