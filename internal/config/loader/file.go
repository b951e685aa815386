package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// IncludeKey is the top-level key that layers other settings files beneath
// the current one. Relative paths resolve against the including file.
const IncludeKey = "@include"

// MaxIncludeDepth bounds how deeply includes nest.
const MaxIncludeDepth = 4

// Format is a settings file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the format from the file extension. Anything that is not
// .yaml or .yml is read as TOML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// FileLoader reads a settings file and the files it includes. Files later
// in an include list override earlier ones and the including file
// overrides them all.
type FileLoader struct {
	fs       FileSystem
	path     string
	included []string
}

// NewFileLoader creates a loader for path on fsys.
func NewFileLoader(fsys FileSystem, path string) *FileLoader {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &FileLoader{fs: fsys, path: path}
}

// Path returns the top-level settings file.
func (l *FileLoader) Path() string {
	return l.path
}

// Included returns every include path the last Load resolved, whether or
// not the file existed.
func (l *FileLoader) Included() []string {
	return slices.Clone(l.included)
}

// Load reads the settings file. A missing file yields nil, nil.
func (l *FileLoader) Load() (map[string]any, error) {
	l.included = nil
	return l.load(l.path, nil)
}

func (l *FileLoader) load(path string, chain []string) (map[string]any, error) {
	if slices.Contains(chain, path) {
		return nil, errors.Errorf("include cycle: %s -> %s", strings.Join(chain, " -> "), path)
	}
	if len(chain) > MaxIncludeDepth {
		return nil, errors.Errorf("include depth exceeded at %s", path)
	}

	data, err := l.fs.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading settings file %s", path)
	}
	doc, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	includes, err := includeList(doc[IncludeKey])
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	delete(doc, IncludeKey)
	if len(includes) == 0 {
		return doc, nil
	}

	chain = append(chain, path)
	merged := map[string]any{}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		l.included = append(l.included, inc)

		sub, err := l.load(inc, chain)
		if err != nil {
			return nil, errors.Wrapf(err, "including %s", inc)
		}
		merged = DeepMerge(merged, sub)
	}
	return DeepMerge(merged, doc), nil
}

// includeList accepts a single path or a list of paths.
func includeList(v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("%s entries must be strings, got %T", IncludeKey, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.Errorf("%s must be a path or a list of paths, got %T", IncludeKey, v)
}

// Parse decodes a settings document. source names it in errors and picks
// the format.
func Parse(source string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	var err error
	if FormatOf(source) == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = toml.Unmarshal(data, &doc)
	}
	if err == nil {
		return doc, nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		perr.Line, perr.Column = derr.Position()
	} else {
		// yaml.v3 reports "yaml: line N: ..."
		_, _ = fmt.Sscanf(err.Error(), "yaml: line %d:", &perr.Line)
	}
	return nil, perr
}

// ParseError is a syntax error in a settings file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
