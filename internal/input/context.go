package input

import (
	"time"

	"github.com/google/uuid"
)

// Session is the state of one focus period. A new session starts whenever
// a field gains focus; nothing from a previous session carries over.
type Session struct {
	// ID uniquely identifies the session in logs and traces.
	ID string

	// Field is the focus target.
	Field Field

	// Started is when the session began.
	Started time.Time

	// KeyDowns counts key-down events routed in this session.
	KeyDowns int

	// Consumed counts key-down events the router consumed.
	Consumed int
}

// NewSession creates a session for field with a fresh ID.
func NewSession(field Field, started time.Time) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Field:   field,
		Started: started,
	}
}

// Clone returns a copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// Editable reports whether the session's field accepts text.
func (s *Session) Editable() bool {
	return s != nil && s.Field.Editable()
}

// Numeric reports whether the session's field only accepts numbers.
func (s *Session) Numeric() bool {
	return s != nil && s.Field.Kind == FieldNumeric
}

// record counts one key-down and its decision.
func (s *Session) record(d Decision) {
	s.KeyDowns++
	if d == Consume {
		s.Consumed++
	}
}
