// Package layout resolves key codes to characters.
//
// A Layout maps key codes to lowercase and uppercase strings and, for keys
// that cycle through several characters, an ordered list of taps. Tables
// hold the secondary maps used by modifiers and pages: the Alt table, the
// two Sym pages with their shifted variants, the Ctrl table and the
// character variation lists.
//
// Layouts load from JSON (validated against an embedded schema) or TOML;
// tables load from YAML or JSON. A Store holds the active layout and
// tables and swaps them atomically on reload.
package layout
