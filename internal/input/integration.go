package input

import (
	"errors"
	"sync"

	"github.com/dshills/physkey/internal/input/hw"
	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/sink"
	"github.com/dshills/physkey/internal/timer"
)

// ErrClosed is returned by System methods after Close.
var ErrClosed = errors.New("input system closed")

// SystemConfig configures a System.
type SystemConfig struct {
	// Router configuration
	Router Config

	// Loop configuration for the dispatch goroutine
	Loop timer.LoopConfig

	// Metrics enabled
	EnableMetrics bool

	// Hooks enabled
	EnableHooks bool
}

// DefaultSystemConfig returns sensible defaults for the input system.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		Router:        DefaultConfig(),
		Loop:          timer.DefaultLoopConfig(),
		EnableMetrics: true,
		EnableHooks:   true,
	}
}

// System runs a Router on its own dispatch goroutine for hosts that
// deliver key events from arbitrary goroutines in real time. Key events,
// timer callbacks and configuration changes are serialized on the loop.
type System struct {
	mu     sync.RWMutex
	loop   *timer.Loop
	router *Router
	closed bool
}

// NewSystem creates a system and starts its dispatch goroutine.
// Listener callbacks run on that goroutine.
func NewSystem(config SystemConfig, opts Options) *System {
	if config.Loop.Logger == nil {
		config.Loop.Logger = opts.Logger
	}
	loop := timer.NewLoop(config.Loop)
	opts.Scheduler = loop

	r := NewRouter(config.Router, opts)
	r.Metrics().SetEnabled(config.EnableMetrics)
	r.Hooks().SetEnabled(config.EnableHooks)

	return &System{loop: loop, router: r}
}

// do runs fn on the dispatch goroutine and waits for it.
func (s *System) do(fn func(r *Router)) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if !s.loop.Do(func() { fn(s.router) }) {
		return ErrClosed
	}
	return nil
}

// HandleKeyEvent routes ev and returns its result.
func (s *System) HandleKeyEvent(ev key.Event) (Result, error) {
	var res Result
	err := s.do(func(r *Router) { res = r.HandleKeyEvent(ev) })
	return res, err
}

// StartSession begins a session for field writing to out.
func (s *System) StartSession(field Field, out sink.TextSink) (*Session, error) {
	var sess *Session
	err := s.do(func(r *Router) { sess = r.StartSession(field, out) })
	return sess, err
}

// EndSession ends the current session.
func (s *System) EndSession() error {
	return s.do(func(r *Router) { r.EndSession() })
}

// SetConfig applies a new router configuration.
func (s *System) SetConfig(config Config) error {
	return s.do(func(r *Router) { r.SetConfig(config) })
}

// SetRemapper replaces the hardware remapper.
func (s *System) SetRemapper(rm hw.Remapper) error {
	return s.do(func(r *Router) { r.SetRemapper(rm) })
}

// Status returns what a status display shows.
func (s *System) Status() (Status, error) {
	var st Status
	err := s.do(func(r *Router) { st = r.Status() })
	return st, err
}

// Session returns a copy of the current session.
func (s *System) Session() (*Session, error) {
	var sess *Session
	err := s.do(func(r *Router) { sess = r.Session() })
	return sess, err
}

// Tables returns the layout store. It is safe for concurrent use, so
// reloads do not go through the loop.
func (s *System) Tables() *layout.Store {
	return s.router.Tables()
}

// Hooks returns the hook manager.
func (s *System) Hooks() *HookManager {
	return s.router.Hooks()
}

// Metrics returns the metrics tracker.
func (s *System) Metrics() *Metrics {
	return s.router.Metrics()
}

// Close ends the session and stops the dispatch goroutine. Pending timers
// are dropped.
func (s *System) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	_ = s.do(func(r *Router) { r.EndSession() })

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.loop.Close()
}

// IsClosed returns true if the system has been closed.
func (s *System) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
