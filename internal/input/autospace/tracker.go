// Package autospace tracks spaces the input pipeline inserted on its own so
// that a following punctuation mark can take their place.
package autospace

import (
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/sink"
)

// Tracker remembers whether the character before the cursor is an
// automatically inserted space. It is owned by one input session.
type Tracker struct {
	pending bool
	logger  *logging.Logger
}

// NewTracker creates a tracker with no pending space.
func NewTracker(logger *logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NullLogger
	}
	return &Tracker{logger: logger.WithComponent("autospace")}
}

// Mark records that an automatic space was just committed.
func (t *Tracker) Mark() {
	t.pending = true
	t.logger.Debug("auto space marked")
}

// Consume returns whether a space was pending and clears the flag.
func (t *Tracker) Consume() bool {
	had := t.pending
	t.pending = false
	return had
}

// Clear forgets any pending space.
func (t *Tracker) Clear() {
	t.pending = false
}

// Pending reports whether an automatic space is pending.
func (t *Tracker) Pending() bool {
	return t.pending
}

// ReplaceWithPunctuation swaps a pending automatic space directly before
// the cursor for text, producing "word. " from "word ". Returns false and
// leaves the sink untouched when no automatic space precedes the cursor.
func (t *Tracker) ReplaceWithPunctuation(s sink.TextSink, text string) bool {
	if !t.Consume() || s == nil {
		return false
	}
	before, err := s.TextBeforeCursor(1)
	if err != nil || before != " " {
		return false
	}
	if err := s.DeleteBeforeCursor(1); err != nil {
		return false
	}
	if err := s.CommitText(text + " "); err != nil {
		return false
	}
	t.logger.Debug("auto space replaced by %q", text)
	return true
}
