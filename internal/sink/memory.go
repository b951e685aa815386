package sink

import (
	"strings"
	"sync"

	"github.com/rivo/uniseg"

	"github.com/dshills/physkey/internal/input/key"
)

// Memory is an in-memory TextSink with a cursor, a selection, a clipboard
// and an undo history. It is safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	// text is split into grapheme clusters; cursor and selection index it.
	text     []string
	cursor   int
	selStart int
	selEnd   int

	clipboard string
	history   [][]string

	keys    []key.Code
	actions []Action

	detached bool
}

// NewMemory creates an empty sink.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWithText creates a sink holding text with the cursor at the end.
func NewMemoryWithText(text string) *Memory {
	m := &Memory{}
	m.text = graphemes(text)
	m.cursor = len(m.text)
	return m
}

func graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// SetAvailable attaches or detaches the sink. A detached sink returns
// ErrUnavailable from every operation.
func (m *Memory) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detached = !available
}

// Text returns the full field contents.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.text, "")
}

// Cursor returns the cursor position in characters.
func (m *Memory) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// SetCursor moves the cursor and clears the selection.
func (m *Memory) SetCursor(pos int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursor = clampInt(pos, 0, len(m.text))
	m.selStart, m.selEnd = 0, 0
}

// Select sets the selection to [start, end) and places the cursor at end.
func (m *Memory) Select(start, end int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if start > end {
		start, end = end, start
	}
	m.selStart = clampInt(start, 0, len(m.text))
	m.selEnd = clampInt(end, 0, len(m.text))
	m.cursor = m.selEnd
}

// Selection returns the selected text.
func (m *Memory) Selection() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.text[m.selStart:m.selEnd], "")
}

// Clipboard returns the clipboard contents.
func (m *Memory) Clipboard() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clipboard
}

// Keys returns the non-printing keys sent so far.
func (m *Memory) Keys() []key.Code {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]key.Code(nil), m.keys...)
}

// Actions returns the semantic actions performed so far.
func (m *Memory) Actions() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Action(nil), m.actions...)
}

// CommitText implements TextSink.
func (m *Memory) CommitText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return ErrUnavailable
	}
	m.commitLocked(text)
	return nil
}

func (m *Memory) commitLocked(text string) {
	m.snapshotLocked()
	m.replaceSelectionLocked()

	ins := graphemes(text)
	next := make([]string, 0, len(m.text)+len(ins))
	next = append(next, m.text[:m.cursor]...)
	next = append(next, ins...)
	next = append(next, m.text[m.cursor:]...)
	m.text = next
	m.cursor += len(ins)
}

// DeleteBeforeCursor implements TextSink.
func (m *Memory) DeleteBeforeCursor(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return ErrUnavailable
	}
	if n <= 0 {
		return nil
	}
	start := clampInt(m.cursor-n, 0, m.cursor)
	m.snapshotLocked()
	m.text = append(m.text[:start:start], m.text[m.cursor:]...)
	m.cursor = start
	m.selStart, m.selEnd = 0, 0
	return nil
}

// DeleteAfterCursor implements TextSink.
func (m *Memory) DeleteAfterCursor(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return ErrUnavailable
	}
	m.deleteAfterLocked(n)
	return nil
}

func (m *Memory) deleteAfterLocked(n int) {
	if n <= 0 {
		return
	}
	end := clampInt(m.cursor+n, m.cursor, len(m.text))
	m.snapshotLocked()
	m.text = append(m.text[:m.cursor:m.cursor], m.text[end:]...)
	m.selStart, m.selEnd = 0, 0
}

// TextBeforeCursor implements TextSink.
func (m *Memory) TextBeforeCursor(n int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return "", ErrUnavailable
	}
	start := clampInt(m.cursor-n, 0, m.cursor)
	return strings.Join(m.text[start:m.cursor], ""), nil
}

// HasSelection implements TextSink.
func (m *Memory) HasSelection() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.detached && m.selEnd > m.selStart
}

// PerformAction implements TextSink.
func (m *Memory) PerformAction(a Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return ErrUnavailable
	}
	m.actions = append(m.actions, a)

	switch a {
	case ActionCopy:
		m.clipboard = strings.Join(m.text[m.selStart:m.selEnd], "")
	case ActionCut:
		m.clipboard = strings.Join(m.text[m.selStart:m.selEnd], "")
		if m.selEnd > m.selStart {
			m.snapshotLocked()
			m.replaceSelectionLocked()
		}
	case ActionPaste:
		if m.clipboard != "" {
			m.commitLocked(m.clipboard)
		}
	case ActionUndo:
		if n := len(m.history); n > 0 {
			m.text = m.history[n-1]
			m.history = m.history[:n-1]
			m.cursor = len(m.text)
			m.selStart, m.selEnd = 0, 0
		}
	case ActionSelectAll:
		m.selStart, m.selEnd = 0, len(m.text)
		m.cursor = m.selEnd
	case ActionExpandSelectionLeft:
		if m.selEnd == m.selStart {
			m.selStart, m.selEnd = m.cursor, m.cursor
		}
		if m.selStart > 0 {
			m.selStart--
		}
	case ActionExpandSelectionRight:
		if m.selEnd == m.selStart {
			m.selStart, m.selEnd = m.cursor, m.cursor
		}
		if m.selEnd < len(m.text) {
			m.selEnd++
			m.cursor = m.selEnd
		}
	}
	return nil
}

// SendKey implements TextSink. Horizontal arrows move the cursor.
func (m *Memory) SendKey(code key.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return ErrUnavailable
	}
	m.keys = append(m.keys, code)

	switch code {
	case key.CodeDpadLeft:
		m.cursor = clampInt(m.cursor-1, 0, len(m.text))
		m.selStart, m.selEnd = 0, 0
	case key.CodeDpadRight:
		m.cursor = clampInt(m.cursor+1, 0, len(m.text))
		m.selStart, m.selEnd = 0, 0
	case key.CodeForwardDel:
		m.deleteAfterLocked(1)
	}
	return nil
}

func (m *Memory) replaceSelectionLocked() {
	if m.selEnd <= m.selStart {
		return
	}
	m.text = append(m.text[:m.selStart:m.selStart], m.text[m.selEnd:]...)
	m.cursor = m.selStart
	m.selStart, m.selEnd = 0, 0
}

func (m *Memory) snapshotLocked() {
	m.history = append(m.history, append([]string(nil), m.text...))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
