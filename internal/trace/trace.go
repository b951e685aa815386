// Package trace records and replays key traces: YAML files listing key
// transitions with millisecond offsets, run through a Router on virtual
// time so long presses and multi-tap timeouts replay exactly.
//
//	name: long press w
//	field: text
//	events:
//	  - {at: 0, down: W}
//	  - {at: 600, up: W}
//	expect:
//	  text: "1"
package trace

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dshills/physkey/internal/input"
	"github.com/dshills/physkey/internal/input/key"
)

// ErrInvalidTrace wraps every trace format error.
var ErrInvalidTrace = errors.New("invalid trace")

// Trace is one recorded key sequence.
type Trace struct {
	Name string `yaml:"name"`

	// Settings are applied over the defaults, in physkey.toml shape.
	Settings map[string]any `yaml:"settings,omitempty"`

	// Layout names a built-in layout or a layout file. Overrides Settings.
	Layout string `yaml:"layout,omitempty"`

	// Field is "text", "numeric" or "none". Default: text.
	Field string `yaml:"field,omitempty"`

	// Package is the focused application.
	Package string `yaml:"package,omitempty"`

	// Launcher marks the focused application as a home launcher.
	Launcher bool `yaml:"launcher,omitempty"`

	// Text is the initial field content. The cursor starts at its end
	// unless Cursor is set.
	Text   string `yaml:"text,omitempty"`
	Cursor *int   `yaml:"cursor,omitempty"`

	Events []Step  `yaml:"events"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step is one trace line. A step with no key only advances time.
type Step struct {
	// At is the offset from the start of the trace in milliseconds.
	At int64 `yaml:"at"`

	Down string `yaml:"down,omitempty"`
	Up   string `yaml:"up,omitempty"`

	// Tap is a down and up at the same instant.
	Tap string `yaml:"tap,omitempty"`

	// Rune is the character the host reports with the event.
	Rune string `yaml:"rune,omitempty"`

	// Meta lists host meta flags: shift, alt, ctrl, sym, caps_lock.
	Meta []string `yaml:"meta,omitempty"`
}

// Expect is checked by Report.Check.
type Expect struct {
	Text   *string `yaml:"text,omitempty"`
	Cursor *int    `yaml:"cursor,omitempty"`

	// Decisions lists "consume" or "call-host-default" per key event.
	Decisions []string `yaml:"decisions,omitempty"`

	// Notes lists notification names in order, e.g. "alt-char-inserted".
	Notes []string `yaml:"notes,omitempty"`

	// Actions lists editing actions sent to the field, e.g. "select_all".
	Actions []string `yaml:"actions,omitempty"`

	// Keys lists key codes forwarded to the field.
	Keys []string `yaml:"keys,omitempty"`
}

// Offset returns At as a duration.
func (s Step) Offset() time.Duration {
	return time.Duration(s.At) * time.Millisecond
}

// events converts the step to key events at start+At.
func (s Step) events(start time.Time) ([]key.Event, error) {
	meta, err := parseMeta(s.Meta)
	if err != nil {
		return nil, err
	}
	var r rune
	if s.Rune != "" {
		runes := []rune(s.Rune)
		if len(runes) != 1 {
			return nil, errors.Wrapf(ErrInvalidTrace, "rune %q is not one character", s.Rune)
		}
		r = runes[0]
	}

	at := start.Add(s.Offset())
	build := func(name string, action key.Action) (key.Event, error) {
		code, err := key.ParseCode(name)
		if err != nil {
			return key.Event{}, errors.Wrap(ErrInvalidTrace, err.Error())
		}
		return key.NewEvent(code, action, meta, at).WithRune(r), nil
	}

	var out []key.Event
	set := 0
	for _, k := range []struct {
		name    string
		actions []key.Action
	}{
		{s.Down, []key.Action{key.ActionDown}},
		{s.Up, []key.Action{key.ActionUp}},
		{s.Tap, []key.Action{key.ActionDown, key.ActionUp}},
	} {
		if k.name == "" {
			continue
		}
		set++
		for _, a := range k.actions {
			ev, err := build(k.name, a)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
	}
	if set > 1 {
		return nil, errors.Wrapf(ErrInvalidTrace, "step at %dms has more than one of down, up and tap", s.At)
	}
	return out, nil
}

var metaNames = map[string]key.Meta{
	"shift":     key.MetaShiftOn | key.MetaShiftLeftOn,
	"alt":       key.MetaAltOn | key.MetaAltLeftOn,
	"ctrl":      key.MetaCtrlOn | key.MetaCtrlLeftOn,
	"sym":       key.MetaSymOn,
	"caps_lock": key.MetaCapsLockOn,
}

func parseMeta(names []string) (key.Meta, error) {
	var m key.Meta
	for _, n := range names {
		flag, ok := metaNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, errors.Wrapf(ErrInvalidTrace, "unknown meta flag %q", n)
		}
		m |= flag
	}
	return m, nil
}

// Validate checks the trace for format errors.
func (t *Trace) Validate() error {
	if len(t.Events) == 0 {
		return errors.Wrap(ErrInvalidTrace, "no events")
	}
	if _, err := input.ParseFieldKind(t.fieldName()); err != nil {
		return errors.Wrap(ErrInvalidTrace, err.Error())
	}
	if t.Cursor != nil && (*t.Cursor < 0 || *t.Cursor > len([]rune(t.Text))) {
		return errors.Wrapf(ErrInvalidTrace, "cursor %d outside the initial text", *t.Cursor)
	}
	var last int64
	for i, s := range t.Events {
		if s.At < last {
			return errors.Wrapf(ErrInvalidTrace, "event %d at %dms goes back in time", i, s.At)
		}
		last = s.At
		if _, err := s.events(time.Time{}); err != nil {
			return errors.Wrapf(err, "event %d", i)
		}
	}
	return nil
}

func (t *Trace) fieldName() string {
	if t.Field == "" {
		return "text"
	}
	return t.Field
}

// Parse decodes and validates a YAML trace.
func Parse(data []byte) (*Trace, error) {
	var t Trace
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(ErrInvalidTrace, err.Error())
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Read parses a trace from r.
func Read(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading trace")
	}
	return Parse(data)
}

// Load parses the trace file at path.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading trace %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "trace %s", path)
	}
	return t, nil
}

// Write encodes t as YAML.
func Write(w io.Writer, t *Trace) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return errors.Wrap(err, "encoding trace")
	}
	return enc.Close()
}
