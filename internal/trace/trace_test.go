package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/physkey/internal/input/key"
)

func TestParse(t *testing.T) {
	tr, err := Parse([]byte(`
name: alt chord
field: numeric
text: ab
cursor: 1
events:
  - {at: 0, down: ALT_LEFT}
  - {at: 10, tap: KEYCODE_W, meta: [alt], rune: "1"}
  - {at: 20, up: ALT_LEFT}
  - {at: 500}
expect:
  text: a1b
  notes: [alt-char-inserted]
`))
	require.NoError(t, err)

	assert.Equal(t, "alt chord", tr.Name)
	assert.Equal(t, "numeric", tr.Field)
	require.NotNil(t, tr.Cursor)
	assert.Equal(t, 1, *tr.Cursor)
	require.Len(t, tr.Events, 4)
	require.NotNil(t, tr.Expect)
	assert.Equal(t, "a1b", *tr.Expect.Text)
	assert.Equal(t, []string{"alt-char-inserted"}, tr.Expect.Notes)

	events, err := tr.Events[1].events(Epoch)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, key.CodeW, events[0].Code)
	assert.Equal(t, key.ActionDown, events[0].Action)
	assert.Equal(t, key.ActionUp, events[1].Action)
	assert.True(t, events[0].Meta&key.MetaAltOn != 0)
	assert.Equal(t, '1', events[0].Rune)
	assert.Equal(t, Epoch.Add(tr.Events[1].Offset()), events[0].Time)

	events, err = tr.Events[3].events(Epoch)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"not yaml", "events: [", ""},
		{"no events", "name: empty\n", "no events"},
		{"unknown field kind", "field: password\nevents: [{at: 0, tap: A}]\n", "unknown field kind"},
		{"cursor past text", "text: ab\ncursor: 3\nevents: [{at: 0, tap: A}]\n", "cursor 3"},
		{"time goes back", "events: [{at: 10, tap: A}, {at: 5, tap: B}]\n", "goes back in time"},
		{"unknown key", "events: [{at: 0, tap: NOPE}]\n", "unknown key code"},
		{"two keys in one step", "events: [{at: 0, down: A, up: B}]\n", "more than one"},
		{"long rune", "events: [{at: 0, tap: A, rune: ab}]\n", "not one character"},
		{"unknown meta", "events: [{at: 0, tap: A, meta: [hyper]}]\n", "unknown meta flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTrace)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseMeta(t *testing.T) {
	m, err := parseMeta([]string{"Shift", " ctrl ", "caps_lock"})
	require.NoError(t, err)
	assert.True(t, m&key.MetaShiftOn != 0)
	assert.True(t, m&key.MetaCtrlOn != 0)
	assert.True(t, m&key.MetaCapsLockOn != 0)
	assert.False(t, m&key.MetaAltOn != 0)

	m, err = parseMeta(nil)
	require.NoError(t, err)
	assert.Equal(t, key.Meta(0), m)
}

func TestWriteThenRead(t *testing.T) {
	text := "1"
	tr := &Trace{
		Name: "recorded",
		Events: []Step{
			{At: 0, Down: "W"},
			{At: 640, Up: "W"},
		},
		Expect: &Expect{Text: &text},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tr))
	assert.Contains(t, buf.String(), "down: W")
	assert.NotContains(t, buf.String(), "settings")

	got, err := Read(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, tr.Events, got.Events)
	assert.Equal(t, "1", *got.Expect.Text)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.yaml")
}
