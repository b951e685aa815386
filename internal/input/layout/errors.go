package layout

import "errors"

var (
	// ErrNoName is returned for a layout without a name.
	ErrNoName = errors.New("layout has no name")

	// ErrEmptyMapping is returned for a mapping that produces no text.
	ErrEmptyMapping = errors.New("mapping produces no text")

	// ErrInvalidJSON is returned for malformed JSON input.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrSchema is returned when a layout fails schema validation.
	ErrSchema = errors.New("layout does not match schema")

	// ErrInvalidValue is returned for an unparseable key or value.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownFormat is returned for an unsupported file extension.
	ErrUnknownFormat = errors.New("unknown file format")

	// ErrUnknownLayout is returned for an unknown built-in layout name.
	ErrUnknownLayout = errors.New("unknown layout")
)
