package autospace

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Boundary is the punctuation that ends a word. Apostrophes are excluded.
	Boundary = ".,;:!?()[]{}\\/\""

	// AutoSpace is the punctuation that replaces a pending automatic space.
	AutoSpace = ".,;:!?\\/\""
)

// NormalizeApostrophe maps curly and modifier apostrophes to the ASCII apostrophe.
func NormalizeApostrophe(r rune) rune {
	switch r {
	case '’', '‘', 'ʼ':
		return '\''
	}
	return r
}

// IsAutoSpacePunctuation reports whether text starts with AutoSpace punctuation.
func IsAutoSpacePunctuation(text string) bool {
	r, size := utf8.DecodeRuneInString(text)
	return size > 0 && strings.ContainsRune(AutoSpace, r)
}

// IsWordBoundary reports whether r separates words. prev is the rune before
// r, or 0 at the start of text; an apostrophe directly after a letter or
// digit is part of the word.
func IsWordBoundary(r, prev rune) bool {
	n := NormalizeApostrophe(r)
	if unicode.IsSpace(n) {
		return true
	}
	if strings.ContainsRune(Boundary, n) {
		return true
	}
	if n == '\'' {
		p := NormalizeApostrophe(prev)
		return !(unicode.IsLetter(p) || unicode.IsDigit(p))
	}
	return !(unicode.IsLetter(n) || unicode.IsDigit(n))
}
