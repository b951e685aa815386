package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/dshills/physkey/internal/config/loader"
	"github.com/dshills/physkey/internal/input"
	"github.com/dshills/physkey/internal/input/hw"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/input/longpress"
	"github.com/dshills/physkey/internal/input/modifier"
	"github.com/dshills/physkey/internal/input/multitap"
	"github.com/dshills/physkey/internal/input/sym"
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/timer"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// Settings is the decoded physkey.toml.
type Settings struct {
	Keyboard KeyboardSettings `toml:"keyboard"`
	Sym      SymSettings      `toml:"sym"`
	Delete   DeleteSettings   `toml:"delete"`
	Device   DeviceSettings   `toml:"device"`
	Layout   LayoutSettings   `toml:"layout"`
	Logging  LoggingSettings  `toml:"logging"`
	Launcher LauncherSettings `toml:"launcher"`
}

// KeyboardSettings holds the timing and long-press settings.
type KeyboardSettings struct {
	// LongPressThresholdMS is how long a key is held before its long-press
	// alternative replaces it. Clamped to 50..1000 when applied.
	LongPressThresholdMS int64 `toml:"long_press_threshold_ms"`

	// LongPressMode is "alt", "shift", "variations" or "sym".
	LongPressMode string `toml:"long_press_mode"`

	// DoubleTapThresholdMS is the window for a second modifier tap to latch.
	DoubleTapThresholdMS int64 `toml:"double_tap_threshold_ms"`

	// MultiTapTimeoutMS is the window between taps of one multi-tap cycle.
	MultiTapTimeoutMS int64 `toml:"multitap_timeout_ms"`

	// MultiTapEnabled enables multi-tap cycling.
	MultiTapEnabled bool `toml:"multitap_enabled"`

	// ClearAltOnSpace drops an Alt latch when Alt+Space is typed.
	ClearAltOnSpace bool `toml:"clear_alt_on_space"`

	// CursorUpdateDelayMS delays status refreshes after cursor edits.
	CursorUpdateDelayMS int64 `toml:"cursor_update_delay_ms"`
}

// SymSettings configures the Sym pages.
type SymSettings struct {
	// Pages lists the enabled pages in toggle order: "emoji", "symbols".
	Pages []string `toml:"pages"`

	// AutoClose closes the page after a glyph is committed.
	AutoClose bool `toml:"auto_close"`

	// EmojiLongPressFirst makes Sym-mode long presses use the emoji page.
	// When false they follow the first enabled page.
	EmojiLongPressFirst bool `toml:"emoji_long_press_first"`
}

// DeleteSettings selects which Del combinations delete forward.
type DeleteSettings struct {
	ShiftBackspace   bool `toml:"shift_backspace"`
	AltBackspace     bool `toml:"alt_backspace"`
	BackspaceAtStart bool `toml:"backspace_at_start"`
	SwipeToDelete    bool `toml:"swipe_to_delete"`
}

// DeviceSettings selects the hardware remapping profile.
type DeviceSettings struct {
	// Profile is "auto", "none" or "q25".
	Profile string `toml:"profile"`

	// Name is the reported keyboard name used by "auto".
	Name string `toml:"name"`
}

// LayoutSettings names the layout and table files.
type LayoutSettings struct {
	Name       string `toml:"name"`
	CustomPath string `toml:"custom_path"`
	TablesPath string `toml:"tables_path"`
}

// LoggingSettings configures the logger.
type LoggingSettings struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// LauncherSettings configures launcher shortcuts.
type LauncherSettings struct {
	Enabled bool `toml:"enabled"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Keyboard: KeyboardSettings{
			LongPressThresholdMS: longpress.DefaultThreshold.Milliseconds(),
			LongPressMode:        longpress.ModeAlt.String(),
			DoubleTapThresholdMS: modifier.DefaultDoubleTapThreshold.Milliseconds(),
			MultiTapTimeoutMS:    multitap.DefaultTimeout.Milliseconds(),
			MultiTapEnabled:      true,
			CursorUpdateDelayMS:  input.DefaultCursorUpdateDelay.Milliseconds(),
		},
		Sym: SymSettings{
			Pages:               []string{sym.Page1.String(), sym.Page2.String()},
			EmojiLongPressFirst: true,
		},
		Delete: DeleteSettings{
			SwipeToDelete: true,
		},
		Device: DeviceSettings{
			Profile: hw.ProfileAuto,
		},
		Layout: LayoutSettings{
			Name: layout.DefaultLayoutName,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// Validate reports values that cannot be applied. Out-of-range durations
// are not errors; they are clamped by RouterConfig.
func (s Settings) Validate() error {
	_, err := s.RouterConfig()
	return err
}

// RouterConfig converts the settings to a router configuration.
func (s Settings) RouterConfig() (input.Config, error) {
	cfg := input.DefaultConfig()

	mode, err := longpress.ParseMode(s.Keyboard.LongPressMode)
	if err != nil {
		return cfg, &ValidationError{Path: "keyboard.long_press_mode", Message: err.Error(), Value: s.Keyboard.LongPressMode}
	}

	pages := make([]sym.Page, 0, len(s.Sym.Pages))
	for _, name := range s.Sym.Pages {
		p, err := sym.ParsePage(name)
		if err != nil || p == sym.Off {
			return cfg, &ValidationError{Path: "sym.pages", Message: "unknown page", Value: name}
		}
		pages = append(pages, p)
	}

	switch s.Device.Profile {
	case hw.ProfileAuto, hw.ProfileNone, hw.ProfileQ25, "":
	default:
		return cfg, &ValidationError{Path: "device.profile", Message: "unknown profile", Value: s.Device.Profile}
	}

	cfg.LongPress.Threshold = timer.Clamp(millis(s.Keyboard.LongPressThresholdMS), longpress.MinThreshold, longpress.MaxThreshold)
	cfg.LongPress.Mode = mode
	cfg.LongPress.SymPage = 0
	if s.Sym.EmojiLongPressFirst {
		cfg.LongPress.SymPage = int(sym.Page1)
	}
	cfg.DoubleTapThreshold = nonNegative(millis(s.Keyboard.DoubleTapThresholdMS))
	cfg.MultiTapEnabled = s.Keyboard.MultiTapEnabled
	cfg.MultiTapTimeout = nonNegative(millis(s.Keyboard.MultiTapTimeoutMS))
	cfg.ClearAltOnSpace = s.Keyboard.ClearAltOnSpace
	cfg.CursorUpdateDelay = nonNegative(millis(s.Keyboard.CursorUpdateDelayMS))
	cfg.Sym = sym.Config{Pages: pages, AutoClose: s.Sym.AutoClose}
	cfg.ShiftBackspaceDelete = s.Delete.ShiftBackspace
	cfg.AltBackspaceDelete = s.Delete.AltBackspace
	cfg.BackspaceAtStartDelete = s.Delete.BackspaceAtStart
	cfg.SwipeToDelete = s.Delete.SwipeToDelete
	cfg.LauncherShortcuts = s.Launcher.Enabled

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "router config")
	}
	return cfg, nil
}

// Section returns the named section of s, or nil.
func (s Settings) Section(name string) any {
	switch name {
	case "keyboard":
		return s.Keyboard
	case "sym":
		return s.Sym
	case "delete":
		return s.Delete
	case "device":
		return s.Device
	case "layout":
		return s.Layout
	case "logging":
		return s.Logging
	case "launcher":
		return s.Launcher
	}
	return nil
}

// Remapper returns the hardware remapper for the device settings.
func (s Settings) Remapper() hw.Remapper {
	return hw.ForProfile(s.Device.Profile, s.Device.Name)
}

// LayoutSource returns where the layout store loads from, with paths
// expanded.
func (s Settings) LayoutSource() layout.Source {
	return layout.Source{
		Layout:     loader.ExpandPath(s.Layout.Name),
		CustomPath: loader.ExpandPath(s.Layout.CustomPath),
		TablesPath: loader.ExpandPath(s.Layout.TablesPath),
	}
}

// LoggerConfig returns the logger configuration.
func (s Settings) LoggerConfig() logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLogLevel(s.Logging.Level)
	cfg.JSON = s.Logging.JSON
	return cfg
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
