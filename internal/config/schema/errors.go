package schema

import (
	"fmt"
	"strings"
)

// Problem is one schema violation. Path is dotted ("keyboard.long_press_mode")
// and empty for the document itself.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// ValidationErrors lists every violation found in a settings document.
type ValidationErrors struct {
	Problems []Problem
}

func (e *ValidationErrors) Error() string {
	switch len(e.Problems) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Problems[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.String())
	}
	return b.String()
}

// Add records a violation.
func (e *ValidationErrors) Add(path, message string) {
	e.Problems = append(e.Problems, Problem{Path: path, Message: message})
}

// AsError returns e, or nil when nothing was recorded.
func (e *ValidationErrors) AsError() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// At returns the violations recorded for path.
func (e *ValidationErrors) At(path string) []Problem {
	var out []Problem
	for _, p := range e.Problems {
		if p.Path == path {
			out = append(out, p)
		}
	}
	return out
}
