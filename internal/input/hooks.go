package input

import (
	"slices"
	"sync"

	"github.com/dshills/physkey/internal/input/key"
)

// Hook sees every normalized key event around routing.
//
// BeforeKey may rewrite the event; returning true consumes it and the
// router skips it entirely. AfterKey sees the outcome and may adjust the
// result before it is returned.
type Hook interface {
	BeforeKey(ev *key.Event, s *Session) bool
	AfterKey(ev key.Event, res *Result, s *Session)
}

// HookPriority orders hooks; lower runs first. Equal priorities run in
// the order they were added.
type HookPriority int

const (
	HookFirst  HookPriority = -100
	HookNormal HookPriority = 0
	HookLast   HookPriority = 100
)

// HookID identifies an added hook.
type HookID uint64

// HookInfo describes an added hook.
type HookInfo struct {
	ID       HookID
	Name     string
	Priority HookPriority
}

type hookEntry struct {
	HookInfo
	hook Hook
}

// HookManager holds the router's hooks.
type HookManager struct {
	mu       sync.RWMutex
	entries  []hookEntry
	lastID   HookID
	disabled bool
}

func NewHookManager() *HookManager {
	return &HookManager{}
}

// Add installs h. A non-empty name replaces the hook added under that name.
func (m *HookManager) Add(name string, priority HookPriority, h Hook) HookID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name != "" {
		m.deleteLocked(func(e hookEntry) bool { return e.Name == name })
	}
	m.lastID++
	e := hookEntry{HookInfo: HookInfo{ID: m.lastID, Name: name, Priority: priority}, hook: h}
	at := slices.IndexFunc(m.entries, func(o hookEntry) bool { return o.Priority > priority })
	if at < 0 {
		at = len(m.entries)
	}
	m.entries = slices.Insert(m.entries, at, e)
	return e.ID
}

// Remove uninstalls the hook with id.
func (m *HookManager) Remove(id HookID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(func(e hookEntry) bool { return e.ID == id })
}

// RemoveNamed uninstalls the hook added under name.
func (m *HookManager) RemoveNamed(name string) bool {
	if name == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(func(e hookEntry) bool { return e.Name == name })
}

func (m *HookManager) deleteLocked(match func(hookEntry) bool) bool {
	n := len(m.entries)
	m.entries = slices.DeleteFunc(m.entries, match)
	return len(m.entries) != n
}

// SetEnabled turns every hook on or off without removing them.
func (m *HookManager) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.disabled = !enabled
	m.mu.Unlock()
}

func (m *HookManager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.disabled
}

func (m *HookManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Hooks describes the installed hooks in run order.
func (m *HookManager) Hooks() []HookInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]HookInfo, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.HookInfo
	}
	return out
}

// active returns the hooks to run; they are called outside the lock so a
// hook may add or remove hooks.
func (m *HookManager) active() []Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disabled {
		return nil
	}
	hooks := make([]Hook, len(m.entries))
	for i, e := range m.entries {
		hooks[i] = e.hook
	}
	return hooks
}

// Before runs BeforeKey in order and stops at the first hook that
// consumes the event.
func (m *HookManager) Before(ev *key.Event, s *Session) bool {
	for _, h := range m.active() {
		if h.BeforeKey(ev, s) {
			return true
		}
	}
	return false
}

// After runs AfterKey in order.
func (m *HookManager) After(ev key.Event, res *Result, s *Session) {
	for _, h := range m.active() {
		h.AfterKey(ev, res, s)
	}
}

// HookFuncs adapts plain functions to Hook. Nil fields do nothing.
type HookFuncs struct {
	Before func(ev *key.Event, s *Session) bool
	After  func(ev key.Event, res *Result, s *Session)
}

func (h HookFuncs) BeforeKey(ev *key.Event, s *Session) bool {
	return h.Before != nil && h.Before(ev, s)
}

func (h HookFuncs) AfterKey(ev key.Event, res *Result, s *Session) {
	if h.After != nil {
		h.After(ev, res, s)
	}
}

// LoggingHook logs each routed event with its outcome through Logf.
type LoggingHook struct {
	Logf func(format string, args ...any)
}

func (LoggingHook) BeforeKey(*key.Event, *Session) bool { return false }

func (h LoggingHook) AfterKey(ev key.Event, res *Result, s *Session) {
	if h.Logf == nil || res == nil {
		return
	}
	field := FieldNone
	if s != nil {
		field = s.Field.Kind
	}
	h.Logf("key %s in %s field: %s", ev, field, res)
}

// FilterHook consumes the events Drop matches before they are routed.
type FilterHook struct {
	Drop func(ev *key.Event, s *Session) bool
}

func (h FilterHook) BeforeKey(ev *key.Event, s *Session) bool {
	return h.Drop != nil && h.Drop(ev, s)
}

func (FilterHook) AfterKey(key.Event, *Result, *Session) {}
