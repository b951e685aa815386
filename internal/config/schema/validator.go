package schema

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks settings maps against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a validator for schema.
func NewValidator(schema *jsonschema.Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate checks data and returns *ValidationErrors listing every
// failing setting, or nil.
func (v *Validator) Validate(data map[string]any) error {
	instance, err := normalize(data)
	if err != nil {
		return err
	}

	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return errors.Wrap(err, "validating settings")
	}

	errs := &ValidationErrors{}
	collectLeaves(verr, errs)
	sort.SliceStable(errs.Problems, func(i, j int) bool {
		return errs.Problems[i].Path < errs.Problems[j].Path
	})
	return errs.AsError()
}

// normalize converts loader values (int64, nested maps) to the plain JSON
// types the schema library expects.
func normalize(data map[string]any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "encoding settings")
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, errors.Wrap(err, "decoding settings")
	}
	return instance, nil
}

func collectLeaves(verr *jsonschema.ValidationError, errs *ValidationErrors) {
	if len(verr.Causes) == 0 {
		errs.Add(instancePath(verr.InstanceLocation), verr.Message)
		return
	}
	for _, cause := range verr.Causes {
		collectLeaves(cause, errs)
	}
}

// instancePath turns a JSON pointer like /keyboard/long_press_mode into
// keyboard.long_press_mode.
func instancePath(pointer string) string {
	return strings.ReplaceAll(strings.TrimPrefix(pointer, "/"), "/", ".")
}
