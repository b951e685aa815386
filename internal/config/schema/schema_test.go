package schema

import (
	"errors"
	"strings"
	"testing"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	s, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	return NewValidator(s)
}

func TestValidator_AcceptsSettings(t *testing.T) {
	v := newValidator(t)

	data := map[string]any{
		"keyboard": map[string]any{
			"long_press_threshold_ms": int64(400),
			"long_press_mode":         "variations",
			"multitap_enabled":        true,
		},
		"sym": map[string]any{
			"pages":      []any{"symbols", "emoji"},
			"auto_close": true,
		},
		"device":  map[string]any{"profile": "q25"},
		"logging": map[string]any{"level": "debug"},
	}
	if err := v.Validate(data); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := v.Validate(map[string]any{}); err != nil {
		t.Errorf("Validate(empty) error = %v", err)
	}
}

func TestValidator_ReportsEveryLeaf(t *testing.T) {
	v := newValidator(t)

	data := map[string]any{
		"keyboard": map[string]any{
			"long_press_mode":         "hold",
			"long_press_threshold_ms": "fast",
		},
		"sym": map[string]any{
			"pages": []any{"emoji", "emoji"},
		},
	}
	err := v.Validate(data)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var errs *ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type = %T, want *ValidationErrors", err)
	}
	for _, path := range []string{"keyboard.long_press_mode", "keyboard.long_press_threshold_ms", "sym.pages"} {
		if len(errs.At(path)) == 0 {
			t.Errorf("no error reported for %s in %v", path, errs)
		}
	}
}

func TestValidator_UnknownKeys(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(map[string]any{
		"keyboard": map[string]any{"long_press": int64(1)},
	})
	if err == nil || !strings.Contains(err.Error(), "keyboard") {
		t.Errorf("expected an error for an unknown keyboard key, got %v", err)
	}

	if err := v.Validate(map[string]any{"editor": map[string]any{}}); err == nil {
		t.Error("expected an error for an unknown section")
	}
}

func TestCompile_Invalid(t *testing.T) {
	if _, err := Compile([]byte(`{"type": 12}`)); err == nil {
		t.Error("expected an error for an invalid schema")
	}
}

func TestEmbeddedJSON(t *testing.T) {
	doc := EmbeddedJSON()
	if !strings.Contains(string(doc), `"long_press_mode"`) {
		t.Error("embedded schema missing long_press_mode")
	}
	doc[0] = 'x'
	if EmbeddedJSON()[0] == 'x' {
		t.Error("EmbeddedJSON should return a copy")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := &ValidationErrors{}
	if errs.Error() != "no validation errors" {
		t.Errorf("got %q for empty errors", errs.Error())
	}
	if errs.AsError() != nil {
		t.Error("AsError() should be nil without errors")
	}

	errs.Add("sym.pages", "duplicate page")
	if errs.Error() != "sym.pages: duplicate page" {
		t.Errorf("got %q", errs.Error())
	}

	errs.Add("", "bad document")
	if !strings.HasPrefix(errs.Error(), "2 validation errors:") {
		t.Errorf("got %q", errs.Error())
	}
	if got := errs.At(""); len(got) != 1 || got[0].String() != "bad document" {
		t.Errorf("At(\"\") = %v", got)
	}
}
