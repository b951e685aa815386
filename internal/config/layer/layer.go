// Package layer stacks settings sources by priority. Higher priority layers
// override lower ones key by key when merged.
package layer

import (
	"github.com/dshills/physkey/internal/config/loader"
)

// Layer represents a single configuration layer.
type Layer struct {
	// Name identifies the layer (e.g., "defaults", "file", "env").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates where this layer was loaded from.
	Source Source

	// Path is the file path (if loaded from file).
	Path string

	// Data holds the configuration values as a nested map.
	Data map[string]any
}

// New creates a layer with the standard name and priority for source.
func New(source Source, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{
		Name:     source.String(),
		Source:   source,
		Priority: DefaultPriority(source),
		Data:     data,
	}
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	c := *l
	c.Data = loader.Clone(l.Data)
	return &c
}

// Source indicates where a configuration layer came from.
type Source uint8

const (
	// SourceDefaults represents built-in defaults.
	SourceDefaults Source = iota
	// SourceFile represents the settings file and its includes.
	SourceFile
	// SourceEnv represents PHYSKEY_* environment variables.
	SourceEnv
	// SourceFlags represents command-line overrides.
	SourceFlags
)

// String returns the source name, also used as the standard layer name.
func (s Source) String() string {
	switch s {
	case SourceDefaults:
		return "defaults"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "env"
	case SourceFlags:
		return "flags"
	default:
		return "unknown"
	}
}
