package longpress

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/physkey/internal/input/autospace"
	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/sink"
	"github.com/dshills/physkey/internal/timer"
)

// Threshold bounds.
const (
	MinThreshold     = 50 * time.Millisecond
	MaxThreshold     = 1000 * time.Millisecond
	DefaultThreshold = 500 * time.Millisecond
)

// Tables gives access to the active layout and tables. *layout.Store
// implements it.
type Tables interface {
	Resolver() *layout.Resolver
	Tables() *layout.Tables
}

// Notifier receives the outcome of each press.
type Notifier interface {
	// AltCharInserted is called after a long-press alternative is
	// committed, with its first character.
	AltCharInserted(r rune)

	// NormalCharCommitted is called when a key is released before its
	// long press fired.
	NormalCharCommitted(text string)
}

// Config configures a Scheduler.
type Config struct {
	Threshold time.Duration
	Mode      Mode

	// SymPage is the Sym page (1 or 2) used by ModeSym.
	SymPage int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Mode:      ModeAlt,
		SymPage:   1,
	}
}

// press is the state of one key that is down.
type press struct {
	code     key.Code
	armedAt  time.Time
	inserted string
	shifted  bool
	sink     sink.TextSink
	handle   timer.Handle

	// activated is set once the alternative replaced the inserted text.
	activated bool

	// released is set when the key went up while a hold modifier kept the
	// timer alive.
	released bool
}

// Scheduler tracks pressed keys and their long-press timers. At most one
// press exists per key code. It must be driven from the goroutine that
// runs the timer callbacks.
type Scheduler struct {
	config   Config
	sched    timer.Scheduler
	tables   Tables
	spaces   *autospace.Tracker
	notifier Notifier
	logger   *logging.Logger

	presses map[key.Code]*press
}

// NewScheduler creates a scheduler. notifier and logger may be nil.
func NewScheduler(config Config, sched timer.Scheduler, tables Tables, spaces *autospace.Tracker, notifier Notifier, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NullLogger
	}
	if spaces == nil {
		spaces = autospace.NewTracker(logger)
	}
	s := &Scheduler{
		sched:    sched,
		tables:   tables,
		spaces:   spaces,
		notifier: notifier,
		logger:   logger.WithComponent("longpress"),
		presses:  make(map[key.Code]*press),
	}
	s.SetConfig(config)
	return s
}

// SetConfig replaces the configuration, clamping the threshold. Timers
// already armed keep their delay.
func (s *Scheduler) SetConfig(config Config) {
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	config.Threshold = timer.Clamp(config.Threshold, MinThreshold, MaxThreshold)
	if config.SymPage != 2 {
		config.SymPage = 1
	}
	s.config = config
}

// Config returns the active configuration.
func (s *Scheduler) Config() Config {
	return s.config
}

// Supports reports whether a key that produced committed qualifies for a
// long press in the active mode.
func (s *Scheduler) Supports(code key.Code, committed string, shifted bool) bool {
	tables := s.tables.Tables()
	switch s.config.Mode {
	case ModeVariations:
		r, _ := utf8.DecodeRuneInString(committed)
		return committed != "" && len(tables.VariationsFor(r)) > 0
	case ModeSym:
		_, ok := tables.SymFor(s.config.SymPage, code, shifted)
		return ok
	case ModeShift:
		return committed != "" && s.tables.Resolver().IsMapped(code)
	case ModeAlt:
		_, ok := tables.AltFor(code)
		return ok
	}
	return false
}

// Press commits text for code and records the key as pressed. If the key
// qualifies for the active mode a long-press timer is armed. A press
// already recorded for code is replaced.
func (s *Scheduler) Press(out sink.TextSink, code key.Code, text string, shifted bool) {
	s.Cancel(code)

	p := &press{code: code, armedAt: s.sched.Now(), shifted: shifted, sink: out}
	s.presses[code] = p

	if text != "" {
		if err := out.CommitText(text); err != nil {
			s.logger.Debug("commit %q for %v skipped: %v", text, code, err)
		} else {
			p.inserted = text
		}
	}

	if s.Supports(code, text, shifted) {
		s.arm(p)
	}
}

// ArmOnly records code as pressed with text already committed by someone
// else, and arms its timer unconditionally. The shifted flag is derived
// from the case of text.
func (s *Scheduler) ArmOnly(out sink.TextSink, code key.Code, text string) {
	s.Cancel(code)

	r, _ := utf8.DecodeRuneInString(text)
	p := &press{
		code:     code,
		armedAt:  s.sched.Now(),
		inserted: text,
		shifted:  unicode.IsUpper(r),
		sink:     out,
	}
	s.presses[code] = p
	s.arm(p)
}

func (s *Scheduler) arm(p *press) {
	p.handle = s.sched.Schedule(s.config.Threshold, func() { s.fire(p) })
	s.logger.Debug("armed %v for %v (%v mode)", p.code, s.config.Threshold, s.config.Mode)
}

// Pending reports whether code is currently recorded as pressed.
func (s *Scheduler) Pending(code key.Code) bool {
	p, ok := s.presses[code]
	return ok && !p.released
}

// Release handles the key-up of code and reports whether the key had a
// recorded press. With holdModifier set the timer stays armed, so the
// long press can still complete while that modifier is held.
func (s *Scheduler) Release(code key.Code, holdModifier bool) bool {
	p, ok := s.presses[code]
	if !ok || p.released {
		return false
	}

	if holdModifier && p.handle != nil && !p.activated {
		p.released = true
	} else {
		delete(s.presses, code)
		if p.handle != nil {
			p.handle.Cancel()
		}
	}

	if !p.activated && p.inserted != "" && s.notifier != nil {
		s.notifier.NormalCharCommitted(p.inserted)
	}
	return true
}

// CancelReleased drops timers kept alive by a hold modifier. The router
// calls it when that modifier goes up.
func (s *Scheduler) CancelReleased() {
	for code, p := range s.presses {
		if p.released {
			delete(s.presses, code)
			if p.handle != nil {
				p.handle.Cancel()
			}
		}
	}
}

// Cancel drops the press and timer for code without touching the text.
func (s *Scheduler) Cancel(code key.Code) {
	p, ok := s.presses[code]
	if !ok {
		return
	}
	delete(s.presses, code)
	if p.handle != nil {
		p.handle.Cancel()
	}
}

// CancelTimer stops the timer for code but keeps the key recorded as
// pressed, so its repeats are still swallowed.
func (s *Scheduler) CancelTimer(code key.Code) {
	if p, ok := s.presses[code]; ok && p.handle != nil {
		p.handle.Cancel()
		p.handle = nil
	}
}

// Reset drops every press and timer.
func (s *Scheduler) Reset() {
	for code := range s.presses {
		s.Cancel(code)
	}
}

func (s *Scheduler) fire(p *press) {
	if cur, ok := s.presses[p.code]; !ok || cur != p || p.activated {
		return
	}
	if p.released {
		delete(s.presses, p.code)
	}
	alt, ok := s.alternative(p)
	if !ok {
		return
	}

	out := p.sink
	if p.inserted != "" {
		if err := out.DeleteBeforeCursor(1); err != nil {
			s.logger.Debug("long press for %v skipped: %v", p.code, err)
			return
		}
	}
	p.activated = true

	first, _ := utf8.DecodeRuneInString(alt)
	if s.config.Mode == ModeAlt || s.config.Mode == ModeSym {
		if autospace.IsAutoSpacePunctuation(alt) && s.spaces.ReplaceWithPunctuation(out, alt) {
			s.logger.Debug("long press %v replaced auto space with %q", p.code, alt)
			s.notifyAlt(first)
			return
		}
		s.spaces.Clear()
	}
	if err := out.CommitText(alt); err != nil {
		s.logger.Debug("long press commit for %v failed: %v", p.code, err)
		return
	}
	s.logger.Debug("long press %v -> %q", p.code, alt)
	s.notifyAlt(first)
}

// alternative resolves the replacement text for p in the active mode.
func (s *Scheduler) alternative(p *press) (string, bool) {
	tables := s.tables.Tables()
	switch s.config.Mode {
	case ModeVariations:
		if p.inserted == "" {
			return "", false
		}
		r, _ := utf8.DecodeRuneInString(p.inserted)
		switch {
		case p.shifted && unicode.IsLower(r):
			r = unicode.ToUpper(r)
		case !p.shifted && unicode.IsUpper(r):
			r = unicode.ToLower(r)
		}
		vs := tables.VariationsFor(r)
		if len(vs) == 0 {
			return "", false
		}
		return vs[0], true

	case ModeSym:
		return tables.SymFor(s.config.SymPage, p.code, p.shifted)

	case ModeShift:
		resolver := s.tables.Resolver()
		if m, ok := resolver.Lookup(p.code); ok {
			upper := m.Text(true)
			return upper, upper != ""
		}
		r, _ := utf8.DecodeRuneInString(p.inserted)
		if p.inserted == "" || !unicode.IsLetter(r) {
			return "", false
		}
		return layout.ToUpper(p.inserted), true

	case ModeAlt:
		return tables.AltFor(p.code)
	}
	return "", false
}

func (s *Scheduler) notifyAlt(r rune) {
	if s.notifier != nil && r != utf8.RuneError {
		s.notifier.AltCharInserted(r)
	}
}
