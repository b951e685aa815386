package input

import (
	"fmt"
	"strings"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/modifier"
	"github.com/dshills/physkey/internal/input/sym"
)

// Decision tells the host whether its own key handling must also run.
type Decision uint8

const (
	// Consume means the router handled the key; the host must drop it.
	Consume Decision = iota

	// CallHostDefault means the host must run its default handling.
	CallHostDefault
)

// String returns a string representation of the decision.
func (d Decision) String() string {
	switch d {
	case Consume:
		return "consume"
	case CallHostDefault:
		return "call-host-default"
	default:
		return "unknown"
	}
}

// Note identifies a notification for status displays and autocorrection.
type Note uint8

const (
	// NoteAltCharInserted follows an Alt combination or long press.
	NoteAltCharInserted Note = iota + 1
	// NoteNormalCharCommitted follows a key released before its long press.
	NoteNormalCharCommitted
	// NoteStatusRefresh asks the status display to redraw.
	NoteStatusRefresh
	// NoteNavMode reports navigation mode turning on or off.
	NoteNavMode
)

// String returns a string representation of the note.
func (n Note) String() string {
	switch n {
	case NoteAltCharInserted:
		return "alt-char-inserted"
	case NoteNormalCharCommitted:
		return "normal-char-committed"
	case NoteStatusRefresh:
		return "status-refresh"
	case NoteNavMode:
		return "nav-mode"
	default:
		return "unknown"
	}
}

// Notification is one note with its payload.
type Notification struct {
	Note Note

	// Text is the character for NoteAltCharInserted, the committed text
	// for NoteNormalCharCommitted, and "on" or "off" for NoteNavMode.
	Text string
}

// String returns a string representation of the notification.
func (n Notification) String() string {
	if n.Text == "" {
		return n.Note.String()
	}
	return fmt.Sprintf("%s(%q)", n.Note, n.Text)
}

// Result is the outcome of one key event.
type Result struct {
	Decision Decision
	Notes    []Notification
}

// Consumed reports whether the host must drop the event.
func (r Result) Consumed() bool {
	return r.Decision == Consume
}

// Has reports whether the result carries note n.
func (r Result) Has(n Note) bool {
	for _, note := range r.Notes {
		if note.Note == n {
			return true
		}
	}
	return false
}

// String returns a string representation of the result.
func (r Result) String() string {
	if len(r.Notes) == 0 {
		return r.Decision.String()
	}
	parts := make([]string, len(r.Notes))
	for i, n := range r.Notes {
		parts[i] = n.String()
	}
	return r.Decision.String() + " [" + strings.Join(parts, ", ") + "]"
}

// Listener receives every notification, including those raised by timers
// between key events. The Result of a key event stays authoritative.
type Listener interface {
	Notify(n Notification)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(n Notification)

// Notify calls f(n).
func (f ListenerFunc) Notify(n Notification) {
	f(n)
}

// Shortcuts launches applications from the launcher with a single letter.
type Shortcuts interface {
	// Launch runs the shortcut assigned to code and reports whether one
	// was assigned.
	Launch(code key.Code) bool
}

// FieldKind classifies the focused field.
type FieldKind uint8

const (
	// FieldNone means no editable field has focus.
	FieldNone FieldKind = iota
	// FieldText is an ordinary text field.
	FieldText
	// FieldNumeric is a field that only accepts numbers.
	FieldNumeric
)

// String returns a string representation of the field kind.
func (k FieldKind) String() string {
	switch k {
	case FieldNone:
		return "none"
	case FieldText:
		return "text"
	case FieldNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// ParseFieldKind parses "none", "text" or "numeric".
func ParseFieldKind(s string) (FieldKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return FieldNone, nil
	case "text":
		return FieldText, nil
	case "numeric", "number":
		return FieldNumeric, nil
	}
	return FieldNone, fmt.Errorf("unknown field kind %q", s)
}

// Field describes the focus target of an input session.
type Field struct {
	Kind FieldKind

	// Package is the application owning the focus.
	Package string

	// IsLauncher is true when the focused application is a home launcher.
	IsLauncher bool
}

// Editable reports whether the field accepts text.
func (f Field) Editable() bool {
	return f.Kind != FieldNone
}

// Status is what a status display shows.
type Status struct {
	Modifiers modifier.Snapshot
	SymPage   sym.Page
	NavMode   bool
	CapsLock  bool
	Field     Field
}
