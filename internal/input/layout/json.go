package layout

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/physkey/internal/input/key"
)

//go:embed schema/layout.schema.json
var layoutSchemaJSON []byte

const layoutSchemaURL = "layout.schema.json"

var (
	layoutSchemaOnce sync.Once
	layoutSchema     *jsonschema.Schema
	layoutSchemaErr  error
)

func compiledLayoutSchema() (*jsonschema.Schema, error) {
	layoutSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(layoutSchemaURL, bytes.NewReader(layoutSchemaJSON)); err != nil {
			layoutSchemaErr = errors.Wrap(err, "adding layout schema")
			return
		}
		layoutSchema, layoutSchemaErr = compiler.Compile(layoutSchemaURL)
	})
	return layoutSchema, layoutSchemaErr
}

// ParseLayoutJSON parses and validates a JSON layout document:
//
//	{"name": "suretype", "mappings": {"KEYCODE_Q": {"lowercase": "q",
//	 "uppercase": "Q", "multiTapEnabled": true,
//	 "taps": [{"lowercase": "q"}, {"lowercase": "w"}]}}}
//
// Taps are ignored unless multiTapEnabled is true.
func ParseLayoutJSON(data []byte) (*Layout, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	schema, err := compiledLayoutSchema()
	if err != nil {
		return nil, err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, errors.Wrap(ErrInvalidJSON, err.Error())
	}
	if err := schema.Validate(instance); err != nil {
		return nil, errors.Wrap(ErrSchema, err.Error())
	}

	root := gjson.ParseBytes(data)
	l := NewLayout(root.Get("name").String())
	l.Description = root.Get("description").String()

	var parseErr error
	root.Get("mappings").ForEach(func(k, v gjson.Result) bool {
		code, err := key.ParseCode(k.String())
		if err != nil {
			parseErr = errors.Wrapf(ErrInvalidValue, "mapping key %q", k.String())
			return false
		}
		m := Mapping{
			Lower: Normalize(v.Get("lowercase").String()),
			Upper: Normalize(v.Get("uppercase").String()),
		}
		if v.Get("multiTapEnabled").Bool() {
			for _, t := range v.Get("taps").Array() {
				m.Taps = append(m.Taps, Tap{
					Lower: Normalize(t.Get("lowercase").String()),
					Upper: Normalize(t.Get("uppercase").String()),
				})
			}
		}
		l.Set(code, m)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// ParseTablesJSON parses a JSON tables document. Every section is
// optional:
//
//	{"alt": {"KEYCODE_Q": "#"}, "sym1": {...}, "sym1Upper": {...},
//	 "sym2": {...}, "sym2Upper": {...},
//	 "ctrl": {"KEYCODE_C": {"type": "action", "value": "copy"}},
//	 "variations": {"a": ["à", "á"]}}
func ParseTablesJSON(data []byte) (*Tables, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	t := NewTables()

	sections := []struct {
		path string
		dst  map[key.Code]string
	}{
		{"alt", t.Alt},
		{"sym1", t.Sym1},
		{"sym1Upper", t.Sym1Upper},
		{"sym2", t.Sym2},
		{"sym2Upper", t.Sym2Upper},
	}
	for _, s := range sections {
		if err := parseCodeStrings(root.Get(s.path), s.dst); err != nil {
			return nil, errors.Wrapf(err, "section %s", s.path)
		}
	}

	var err error
	root.Get("ctrl").ForEach(func(k, v gjson.Result) bool {
		var code key.Code
		code, err = key.ParseCode(k.String())
		if err != nil {
			err = errors.Wrapf(ErrInvalidValue, "ctrl key %q", k.String())
			return false
		}
		var m CtrlMapping
		m, err = ParseCtrlMapping(v.Get("type").String(), v.Get("value").String())
		if err != nil {
			err = errors.Wrapf(err, "ctrl key %q", k.String())
			return false
		}
		t.Ctrl[code] = m
		return true
	})
	if err != nil {
		return nil, err
	}

	root.Get("variations").ForEach(func(k, v gjson.Result) bool {
		r := []rune(Normalize(k.String()))
		if len(r) != 1 {
			err = errors.Wrapf(ErrInvalidValue, "variation key %q", k.String())
			return false
		}
		for _, item := range v.Array() {
			t.Variations[r[0]] = append(t.Variations[r[0]], Normalize(item.String()))
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func parseCodeStrings(section gjson.Result, dst map[key.Code]string) error {
	var err error
	section.ForEach(func(k, v gjson.Result) bool {
		var code key.Code
		code, err = key.ParseCode(k.String())
		if err != nil {
			err = errors.Wrapf(ErrInvalidValue, "key %q", k.String())
			return false
		}
		dst[code] = Normalize(v.String())
		return true
	})
	return err
}

// SetAltMapping returns doc with the Alt entry for code set to value.
// doc is a JSON tables document; an empty doc starts a new one.
func SetAltMapping(doc []byte, code key.Code, value string) ([]byte, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		doc = []byte("{}")
	}
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidJSON
	}
	if value == "" {
		return nil, errors.Wrapf(ErrEmptyMapping, "alt %v", code)
	}
	out, err := sjson.SetBytes(doc, altPath(code), Normalize(value))
	if err != nil {
		return nil, errors.Wrap(err, "setting alt mapping")
	}
	return out, nil
}

// RemoveAltMapping returns doc without the Alt entry for code.
func RemoveAltMapping(doc []byte, code key.Code) ([]byte, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidJSON
	}
	out, err := sjson.DeleteBytes(doc, altPath(code))
	if err != nil {
		return nil, errors.Wrap(err, "removing alt mapping")
	}
	return out, nil
}

func altPath(code key.Code) string {
	name := code.String()
	if !strings.HasPrefix(name, "KEYCODE_") {
		name = "KEYCODE_" + name
	}
	return "alt." + name
}
