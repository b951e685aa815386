// Package key provides hardware key event types for the input pipeline.
//
// This package defines the fundamental types for representing physical
// keyboard input as the host reports it:
//
//   - Code: a host key code (Android numbering)
//   - Meta: the host meta-state bitmask delivered with every event
//   - Modifier: the logical modifiers the pipeline reasons about (Shift, Ctrl, Alt, Sym)
//   - Event: one physical key transition (down or up) with timestamp and scan code
//
// # Code Names
//
// Codes print and parse by their host names without the KEYCODE_ prefix:
// "A", "SHIFT_LEFT", "DPAD_UP", "SYM". Codes without a name print as
// "KEYCODE_<n>" and parse back to the same value.
package key
