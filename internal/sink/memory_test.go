package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/physkey/internal/input/key"
)

func TestMemory_CommitAndDelete(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.CommitText("ab"))
	require.NoError(t, m.CommitText("😢"))
	assert.Equal(t, "ab😢", m.Text())
	assert.Equal(t, 3, m.Cursor())

	require.NoError(t, m.DeleteBeforeCursor(1))
	assert.Equal(t, "ab", m.Text(), "emoji counts as one character")

	before, err := m.TextBeforeCursor(5)
	require.NoError(t, err)
	assert.Equal(t, "ab", before)
}

func TestMemory_GraphemeClusters(t *testing.T) {
	m := NewMemoryWithText("éx👍🏽")
	assert.Equal(t, 3, m.Cursor())

	require.NoError(t, m.DeleteBeforeCursor(1))
	assert.Equal(t, "éx", m.Text())

	last, err := m.TextBeforeCursor(2)
	require.NoError(t, err)
	assert.Equal(t, "éx", last)
}

func TestMemory_DeleteAfterCursor(t *testing.T) {
	m := NewMemoryWithText("hello")
	m.SetCursor(0)

	require.NoError(t, m.DeleteAfterCursor(1))
	assert.Equal(t, "ello", m.Text())
	assert.Equal(t, 0, m.Cursor())

	require.NoError(t, m.SendKey(key.CodeForwardDel))
	assert.Equal(t, "llo", m.Text())
}

func TestMemory_SelectionActions(t *testing.T) {
	m := NewMemoryWithText("hello world")

	require.NoError(t, m.PerformAction(ActionSelectAll))
	assert.True(t, m.HasSelection())
	require.NoError(t, m.PerformAction(ActionCopy))
	assert.Equal(t, "hello world", m.Clipboard())

	require.NoError(t, m.PerformAction(ActionCut))
	assert.Equal(t, "", m.Text())
	assert.False(t, m.HasSelection())

	require.NoError(t, m.PerformAction(ActionPaste))
	assert.Equal(t, "hello world", m.Text())

	require.NoError(t, m.PerformAction(ActionUndo))
	assert.Equal(t, "", m.Text())

	assert.Equal(t, []Action{ActionSelectAll, ActionCopy, ActionCut, ActionPaste, ActionUndo}, m.Actions())
}

func TestMemory_CommitReplacesSelection(t *testing.T) {
	m := NewMemoryWithText("abc")
	m.Select(1, 2)
	assert.Equal(t, "b", m.Selection())

	require.NoError(t, m.CommitText("X"))
	assert.Equal(t, "aXc", m.Text())
	assert.Equal(t, 2, m.Cursor())
}

func TestMemory_ExpandSelection(t *testing.T) {
	m := NewMemoryWithText("abc")

	require.NoError(t, m.PerformAction(ActionExpandSelectionLeft))
	require.NoError(t, m.PerformAction(ActionExpandSelectionLeft))
	assert.Equal(t, "bc", m.Selection())
}

func TestMemory_SendKeyMovesCursor(t *testing.T) {
	m := NewMemoryWithText("abc")

	require.NoError(t, m.SendKey(key.CodeDpadLeft))
	require.NoError(t, m.SendKey(key.CodeDpadLeft))
	assert.Equal(t, 1, m.Cursor())
	require.NoError(t, m.SendKey(key.CodeTab))
	assert.Equal(t, []key.Code{key.CodeDpadLeft, key.CodeDpadLeft, key.CodeTab}, m.Keys())
}

func TestMemory_Detached(t *testing.T) {
	m := NewMemory()
	m.SetAvailable(false)

	assert.ErrorIs(t, m.CommitText("a"), ErrUnavailable)
	assert.ErrorIs(t, m.DeleteBeforeCursor(1), ErrUnavailable)
	_, err := m.TextBeforeCursor(1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, m.SendKey(key.CodeTab), ErrUnavailable)
	assert.Equal(t, "", m.Text())
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("select_all")
	require.NoError(t, err)
	assert.Equal(t, ActionSelectAll, a)
	assert.Equal(t, "expand_selection_left", ActionExpandSelectionLeft.String())

	_, err = ParseAction("teleport")
	assert.Error(t, err)
	_, err = ParseAction("none")
	assert.Error(t, err)
}
