package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dshills/physkey/internal/input/key"
)

// fileLayout is the TOML and YAML form of a layout. It mirrors the JSON
// document accepted by ParseLayoutJSON.
type fileLayout struct {
	Name        string                 `toml:"name" yaml:"name"`
	Description string                 `toml:"description" yaml:"description"`
	Mappings    map[string]fileMapping `toml:"mappings" yaml:"mappings"`
}

type fileMapping struct {
	Lowercase       string    `toml:"lowercase" yaml:"lowercase"`
	Uppercase       string    `toml:"uppercase" yaml:"uppercase"`
	MultiTapEnabled bool      `toml:"multiTapEnabled" yaml:"multiTapEnabled"`
	Taps            []fileTap `toml:"taps" yaml:"taps"`
}

type fileTap struct {
	Lowercase string `toml:"lowercase" yaml:"lowercase"`
	Uppercase string `toml:"uppercase" yaml:"uppercase"`
}

func (f *fileLayout) build() (*Layout, error) {
	l := NewLayout(f.Name)
	l.Description = f.Description
	for name, fm := range f.Mappings {
		code, err := key.ParseCode(name)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidValue, "mapping key %q", name)
		}
		m := Mapping{Lower: Normalize(fm.Lowercase), Upper: Normalize(fm.Uppercase)}
		if fm.MultiTapEnabled {
			for _, t := range fm.Taps {
				m.Taps = append(m.Taps, Tap{Lower: Normalize(t.Lowercase), Upper: Normalize(t.Uppercase)})
			}
		}
		l.Set(code, m)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// ParseLayoutTOML parses a TOML layout document.
func ParseLayoutTOML(data []byte) (*Layout, error) {
	var f fileLayout
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding TOML layout")
	}
	return f.build()
}

// ParseLayoutYAML parses a YAML layout document.
func ParseLayoutYAML(data []byte) (*Layout, error) {
	var f fileLayout
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding YAML layout")
	}
	return f.build()
}

// fileTables is the TOML and YAML form of the secondary tables.
type fileTables struct {
	Alt        map[string]string   `toml:"alt" yaml:"alt"`
	Sym1       map[string]string   `toml:"sym1" yaml:"sym1"`
	Sym1Upper  map[string]string   `toml:"sym1Upper" yaml:"sym1Upper"`
	Sym2       map[string]string   `toml:"sym2" yaml:"sym2"`
	Sym2Upper  map[string]string   `toml:"sym2Upper" yaml:"sym2Upper"`
	Ctrl       map[string]fileCtrl `toml:"ctrl" yaml:"ctrl"`
	Variations map[string][]string `toml:"variations" yaml:"variations"`
}

type fileCtrl struct {
	Type  string `toml:"type" yaml:"type"`
	Value string `toml:"value" yaml:"value"`
}

func (f *fileTables) build() (*Tables, error) {
	t := NewTables()
	sections := []struct {
		name string
		src  map[string]string
		dst  map[key.Code]string
	}{
		{"alt", f.Alt, t.Alt},
		{"sym1", f.Sym1, t.Sym1},
		{"sym1Upper", f.Sym1Upper, t.Sym1Upper},
		{"sym2", f.Sym2, t.Sym2},
		{"sym2Upper", f.Sym2Upper, t.Sym2Upper},
	}
	for _, s := range sections {
		for name, v := range s.src {
			code, err := key.ParseCode(name)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidValue, "section %s key %q", s.name, name)
			}
			s.dst[code] = Normalize(v)
		}
	}
	for name, c := range f.Ctrl {
		code, err := key.ParseCode(name)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidValue, "ctrl key %q", name)
		}
		m, err := ParseCtrlMapping(c.Type, c.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "ctrl key %q", name)
		}
		t.Ctrl[code] = m
	}
	for name, vs := range f.Variations {
		r := []rune(Normalize(name))
		if len(r) != 1 {
			return nil, errors.Wrapf(ErrInvalidValue, "variation key %q", name)
		}
		for _, v := range vs {
			t.Variations[r[0]] = append(t.Variations[r[0]], Normalize(v))
		}
	}
	return t, nil
}

// ParseTablesYAML parses a YAML tables document.
func ParseTablesYAML(data []byte) (*Tables, error) {
	var f fileTables
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding YAML tables")
	}
	return f.build()
}

// ParseTablesTOML parses a TOML tables document.
func ParseTablesTOML(data []byte) (*Tables, error) {
	var f fileTables
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding TOML tables")
	}
	return f.build()
}

// LoadLayoutFile loads a layout, choosing the format by extension.
func LoadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading layout file")
	}
	var l *Layout
	switch ext(path) {
	case ".json":
		l, err = ParseLayoutJSON(data)
	case ".toml":
		l, err = ParseLayoutTOML(data)
	case ".yaml", ".yml":
		l, err = ParseLayoutYAML(data)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return l, nil
}

// LoadTablesFile loads tables, choosing the format by extension.
func LoadTablesFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading tables file")
	}
	var t *Tables
	switch ext(path) {
	case ".json":
		t, err = ParseTablesJSON(data)
	case ".toml":
		t, err = ParseTablesTOML(data)
	case ".yaml", ".yml":
		t, err = ParseTablesYAML(data)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return t, nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
