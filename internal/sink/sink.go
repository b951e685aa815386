// Package sink defines the text sink the key pipeline writes to and an
// in-memory implementation used by tests and the command line tools.
package sink

import (
	"errors"
	"fmt"

	"github.com/dshills/physkey/internal/input/key"
)

// ErrUnavailable is returned when the sink is not attached to a field.
var ErrUnavailable = errors.New("text sink unavailable")

// Action is a semantic editing action.
type Action uint8

const (
	ActionNone Action = iota
	ActionCopy
	ActionPaste
	ActionCut
	ActionUndo
	ActionSelectAll
	ActionExpandSelectionLeft
	ActionExpandSelectionRight
)

var actionNames = map[Action]string{
	ActionNone:                 "none",
	ActionCopy:                 "copy",
	ActionPaste:                "paste",
	ActionCut:                  "cut",
	ActionUndo:                 "undo",
	ActionSelectAll:            "select_all",
	ActionExpandSelectionLeft:  "expand_selection_left",
	ActionExpandSelectionRight: "expand_selection_right",
}

// String returns the action's table name, e.g. "select_all".
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", a)
}

// ParseAction parses a table name such as "copy" or "select_all".
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s && a != ActionNone {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// TextSink is the editing surface of the focused field.
// Counts are in user-perceived characters (grapheme clusters).
type TextSink interface {
	// CommitText inserts text at the cursor, replacing any selection.
	CommitText(text string) error

	// DeleteBeforeCursor removes n characters before the cursor.
	DeleteBeforeCursor(n int) error

	// DeleteAfterCursor removes n characters after the cursor.
	DeleteAfterCursor(n int) error

	// TextBeforeCursor returns up to n characters before the cursor.
	TextBeforeCursor(n int) (string, error)

	// HasSelection reports whether a non-empty selection exists.
	HasSelection() bool

	// PerformAction runs a semantic action such as copy or paste.
	PerformAction(a Action) error

	// SendKey synthesizes a down/up pair for a non-printing key.
	SendKey(code key.Code) error
}

// Detached is the sink used while no field has focus. Every call fails
// with ErrUnavailable.
type Detached struct{}

func (Detached) CommitText(string) error              { return ErrUnavailable }
func (Detached) DeleteBeforeCursor(int) error         { return ErrUnavailable }
func (Detached) DeleteAfterCursor(int) error          { return ErrUnavailable }
func (Detached) TextBeforeCursor(int) (string, error) { return "", ErrUnavailable }
func (Detached) HasSelection() bool                   { return false }
func (Detached) PerformAction(Action) error           { return ErrUnavailable }
func (Detached) SendKey(key.Code) error               { return ErrUnavailable }
