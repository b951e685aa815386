package layout

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/dshills/physkey/internal/logging"
)

// Source names where the active layout and tables come from.
type Source struct {
	// Layout is a built-in layout name or a layout file path.
	Layout string

	// CustomPath is an optional layout file consulted before Layout.
	CustomPath string

	// TablesPath is an optional tables file merged over the defaults.
	TablesPath string
}

// Store holds the active layout and tables. Readers get immutable values;
// Load and the setters swap them as a unit.
type Store struct {
	mu       sync.RWMutex
	base     *Layout
	custom   *Layout
	tables   *Tables
	resolver *Resolver
	logger   *logging.Logger
}

// NewStore creates a store holding the default layout and tables.
func NewStore(logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NullLogger
	}
	base := QWERTY()
	return &Store{
		base:     base,
		tables:   DefaultTables(),
		resolver: NewResolver(nil, base),
		logger:   logger.WithComponent("layout"),
	}
}

// Resolver returns the resolver for the active layouts.
func (s *Store) Resolver() *Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolver
}

// Tables returns the active tables. Callers must not modify them.
func (s *Store) Tables() *Tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables
}

// SetLayout replaces the default layout.
func (s *Store) SetLayout(l *Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = l
	s.resolver = NewResolver(s.custom, s.base)
}

// SetCustom replaces the custom layout. nil removes it.
func (s *Store) SetCustom(l *Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = l
	s.resolver = NewResolver(s.custom, s.base)
}

// SetTables replaces the tables.
func (s *Store) SetTables(t *Tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = t
}

// Load reads everything src names and swaps it in. On error the active
// values are left untouched.
func (s *Store) Load(src Source) error {
	name := src.Layout
	if name == "" {
		name = DefaultLayoutName
	}

	base, err := Builtin(name)
	if errors.Is(err, ErrUnknownLayout) {
		base, err = LoadLayoutFile(name)
	}
	if err != nil {
		return err
	}

	var custom *Layout
	if src.CustomPath != "" {
		if custom, err = LoadLayoutFile(src.CustomPath); err != nil {
			return err
		}
	}

	tables := DefaultTables()
	if src.TablesPath != "" {
		extra, err := LoadTablesFile(src.TablesPath)
		if err != nil {
			return err
		}
		tables.Merge(extra)
	}

	s.mu.Lock()
	s.base, s.custom, s.tables = base, custom, tables
	s.resolver = NewResolver(custom, base)
	s.mu.Unlock()

	s.logger.Info("loaded layout %q (custom %q, tables %q)", base.Name, src.CustomPath, src.TablesPath)
	return nil
}
