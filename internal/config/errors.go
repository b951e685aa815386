package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned by Set for a path that names no setting.
	ErrInvalidPath = errors.New("invalid setting path")

	// ErrNotLoaded is returned by Reload and Set before the first Load.
	ErrNotLoaded = errors.New("configuration not loaded")

	ErrClosed = errors.New("configuration closed")
)

// ValidationError is a setting that passed the schema but cannot be
// applied, such as an unknown sym page name.
type ValidationError struct {
	Path    string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Value)
}
