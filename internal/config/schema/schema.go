// Package schema validates merged settings against the embedded JSON
// Schema before they are decoded.
package schema

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed physkey.schema.json
var settingsSchemaJSON []byte

const settingsSchemaURL = "physkey.schema.json"

var (
	embeddedOnce   sync.Once
	embeddedSchema *jsonschema.Schema
	embeddedErr    error
)

// LoadEmbedded compiles the built-in settings schema. The result is shared.
func LoadEmbedded() (*jsonschema.Schema, error) {
	embeddedOnce.Do(func() {
		embeddedSchema, embeddedErr = Compile(settingsSchemaJSON)
	})
	return embeddedSchema, embeddedErr
}

// Compile compiles a settings schema document.
func Compile(doc []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(settingsSchemaURL, bytes.NewReader(doc)); err != nil {
		return nil, errors.Wrap(err, "adding settings schema")
	}
	s, err := compiler.Compile(settingsSchemaURL)
	if err != nil {
		return nil, errors.Wrap(err, "compiling settings schema")
	}
	return s, nil
}

// EmbeddedJSON returns the raw embedded schema, for printing.
func EmbeddedJSON() []byte {
	return bytes.Clone(settingsSchemaJSON)
}
