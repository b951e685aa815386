package input

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/physkey/internal/input/autospace"
	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/modifier"
)

// wordLookBehind is how many characters before the cursor are inspected
// when deleting the last word.
const wordLookBehind = 64

// deleteLastWord removes the word before the cursor together with any
// whitespace after it. A run of punctuation counts as a word. It reports
// whether anything was deleted.
func (r *Router) deleteLastWord() bool {
	before, err := r.out.TextBeforeCursor(wordLookBehind)
	if err != nil || before == "" {
		return false
	}
	n := lastWordLength(before)
	if n == 0 {
		return false
	}
	if err := r.out.DeleteBeforeCursor(n); err != nil {
		r.sinkFailed("delete word", err)
		return false
	}
	return true
}

// lastWordLength returns how many grapheme clusters at the end of text
// make up the last word and its trailing whitespace.
func lastWordLength(text string) int {
	var clusters []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	i := len(clusters)
	for i > 0 && isSpaceCluster(clusters[i-1]) {
		i--
	}
	if i == 0 {
		return len(clusters)
	}

	wordy := !isBoundaryAt(clusters, i-1)
	for i > 0 && !isSpaceCluster(clusters[i-1]) && isBoundaryAt(clusters, i-1) != wordy {
		i--
	}
	return len(clusters) - i
}

func isSpaceCluster(c string) bool {
	return strings.TrimFunc(c, unicode.IsSpace) == ""
}

func isBoundaryAt(clusters []string, i int) bool {
	r, _ := utf8.DecodeRuneInString(clusters[i])
	var prev rune
	if i > 0 {
		prev, _ = utf8.DecodeLastRuneInString(clusters[i-1])
	}
	return autospace.IsWordBoundary(r, prev)
}

// forwardDelete turns Del into a forward delete when one of the
// configured alternatives applies: Shift+Del, Alt+Del, or Del with the
// cursor at the start of a line.
func (r *Router) forwardDelete(code key.Code, snap modifier.Snapshot) bool {
	if code != key.CodeDel {
		return false
	}

	shift := snap.Held(modifier.Shift)
	alt := snap.Active(modifier.Alt)

	apply := false
	switch {
	case shift && r.config.ShiftBackspaceDelete:
		apply = true
	case alt && r.config.AltBackspaceDelete:
		apply = true
		if r.modifiers.ConsumeOneShot(modifier.Alt) {
			r.statusChanged()
		}
	case !shift && r.config.BackspaceAtStartDelete:
		before, err := r.out.TextBeforeCursor(1)
		apply = err == nil && (before == "" || before == "\n")
	}
	if !apply {
		return false
	}

	if err := r.out.DeleteAfterCursor(1); err != nil {
		r.sinkFailed("forward delete", err)
	}
	r.scheduleRefresh()
	return true
}
