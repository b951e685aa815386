package layer

import (
	"sort"
	"sync"

	"github.com/dshills/physkey/internal/config/loader"
)

// Manager manages configuration layers and provides merged access.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer       // Sorted by priority (ascending)
	merged map[string]any // Cached merged result
	dirty  bool           // Whether merged cache needs refresh
}

// NewManager creates a new layer manager.
func NewManager() *Manager {
	return &Manager{dirty: true}
}

// Put adds a layer, replacing any layer with the same name.
func (m *Manager) Put(layer *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(layer.Name); i >= 0 {
		m.layers[i] = layer
	} else {
		m.layers = append(m.layers, layer)
	}
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
	m.dirty = true
}

// Remove removes a layer by name.
// Returns true if the layer was found and removed.
func (m *Manager) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(name)
	if i < 0 {
		return false
	}
	m.layers = append(m.layers[:i], m.layers[i+1:]...)
	m.dirty = true
	return true
}

// Layer returns a layer by name, or nil.
func (m *Manager) Layer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.index(name); i >= 0 {
		return m.layers[i]
	}
	return nil
}

// Names returns the layer names from lowest to highest priority.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.layers))
	for i, l := range m.layers {
		names[i] = l.Name
	}
	return names
}

// Merge returns a copy of all layers merged by priority.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirty {
		merged := make(map[string]any)
		for _, l := range m.layers {
			merged = loader.DeepMerge(merged, loader.Clone(l.Data))
		}
		m.merged = merged
		m.dirty = false
	}
	return loader.Clone(m.merged)
}

// WhichLayer returns the name of the highest priority layer that sets
// path, or "" if none does.
func (m *Manager) WhichLayer(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		if _, ok := GetByPath(m.layers[i].Data, path); ok {
			return m.layers[i].Name
		}
	}
	return ""
}

func (m *Manager) index(name string) int {
	for i, l := range m.layers {
		if l.Name == name {
			return i
		}
	}
	return -1
}
