package input

import (
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/physkey/internal/input/autospace"
	"github.com/dshills/physkey/internal/input/hw"
	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/input/longpress"
	"github.com/dshills/physkey/internal/input/modifier"
	"github.com/dshills/physkey/internal/input/multitap"
	"github.com/dshills/physkey/internal/input/sym"
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/sink"
	"github.com/dshills/physkey/internal/timer"
)

// DefaultCursorUpdateDelay is how long the router waits after a cursor
// moving edit before asking the status display to redraw.
const DefaultCursorUpdateDelay = 50 * time.Millisecond

// Config configures the router.
type Config struct {
	// LongPress configures the long-press scheduler. A zero SymPage
	// follows the first enabled Sym page.
	LongPress longpress.Config

	// DoubleTapThreshold is the window in which a second modifier tap
	// latches the modifier.
	// Default: 300ms
	DoubleTapThreshold time.Duration

	// MultiTapEnabled enables cycling through tap variants.
	MultiTapEnabled bool

	// MultiTapTimeout is the window between taps of one cycle.
	// Default: 400ms
	MultiTapTimeout time.Duration

	// Sym configures the Sym pages.
	Sym sym.Config

	// ClearAltOnSpace drops an Alt latch when Alt+Space is typed.
	ClearAltOnSpace bool

	// SwipeToDelete lets the delete-word gesture remove the last word.
	SwipeToDelete bool

	// ShiftBackspaceDelete makes Shift+Del delete forward.
	ShiftBackspaceDelete bool

	// AltBackspaceDelete makes Alt+Del delete forward.
	AltBackspaceDelete bool

	// BackspaceAtStartDelete makes Del at the start of a line delete forward.
	BackspaceAtStartDelete bool

	// LauncherShortcuts enables single letter shortcuts in the launcher.
	LauncherShortcuts bool

	// CursorUpdateDelay delays status refreshes after cursor moving edits.
	// Default: 50ms
	CursorUpdateDelay time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	lp := longpress.DefaultConfig()
	lp.SymPage = 0
	return Config{
		LongPress:          lp,
		DoubleTapThreshold: modifier.DefaultDoubleTapThreshold,
		MultiTapEnabled:    true,
		MultiTapTimeout:    multitap.DefaultTimeout,
		Sym:                sym.DefaultConfig(),
		SwipeToDelete:      true,
		CursorUpdateDelay:  DefaultCursorUpdateDelay,
	}
}

// Validate reports settings that are out of range. The router never fails
// on them; Clamped shows what it uses instead.
func (c Config) Validate() error {
	var errs []error
	if t := c.LongPress.Threshold; t != 0 && (t < longpress.MinThreshold || t > longpress.MaxThreshold) {
		errs = append(errs, fmt.Errorf("long press threshold %v outside [%v, %v]", t, longpress.MinThreshold, longpress.MaxThreshold))
	}
	if c.DoubleTapThreshold < 0 {
		errs = append(errs, fmt.Errorf("negative double tap threshold %v", c.DoubleTapThreshold))
	}
	if c.MultiTapTimeout < 0 {
		errs = append(errs, fmt.Errorf("negative multi-tap timeout %v", c.MultiTapTimeout))
	}
	if c.CursorUpdateDelay < 0 {
		errs = append(errs, fmt.Errorf("negative cursor update delay %v", c.CursorUpdateDelay))
	}
	if p := c.LongPress.SymPage; p < 0 || p > 2 {
		errs = append(errs, fmt.Errorf("long press sym page %d not in 1..2", p))
	}
	return errors.Join(errs...)
}

// Clamped returns c with every duration moved into its safe range.
func (c Config) Clamped() Config {
	def := DefaultConfig()
	if c.LongPress.Threshold <= 0 {
		c.LongPress.Threshold = longpress.DefaultThreshold
	}
	c.LongPress.Threshold = timer.Clamp(c.LongPress.Threshold, longpress.MinThreshold, longpress.MaxThreshold)
	if c.LongPress.SymPage < 0 || c.LongPress.SymPage > 2 {
		c.LongPress.SymPage = 0
	}
	if c.DoubleTapThreshold <= 0 {
		c.DoubleTapThreshold = def.DoubleTapThreshold
	}
	if c.MultiTapTimeout <= 0 {
		c.MultiTapTimeout = def.MultiTapTimeout
	}
	if c.CursorUpdateDelay < 0 {
		c.CursorUpdateDelay = def.CursorUpdateDelay
	}
	return c
}

// Options holds the collaborators of a Router.
type Options struct {
	// Scheduler runs timers and provides the time. Required.
	Scheduler timer.Scheduler

	// Tables holds the active layout and tables. Default: built-in tables.
	Tables *layout.Store

	// Remapper rewrites device specific events. Default: hw.Identity.
	Remapper hw.Remapper

	// Listener receives notifications. Optional.
	Listener Listener

	// Shortcuts runs launcher shortcuts. Optional.
	Shortcuts Shortcuts

	// Logger receives debug output. Default: logging.NullLogger.
	Logger *logging.Logger
}

// Router turns normalized hardware key events into text sink edits and a
// consume decision. It owns every component of the pipeline.
//
// A Router is not safe for concurrent use. Key events and timer callbacks
// must arrive on one goroutine; System arranges that for real-time hosts.
type Router struct {
	config Config
	logger *logging.Logger

	sched      timer.Scheduler
	normalizer *hw.Normalizer
	tables     *layout.Store
	modifiers  *modifier.Machine
	longPress  *longpress.Scheduler
	multiTap   *multitap.Cycler
	sym        *sym.Controller
	spaces     *autospace.Tracker
	refresh    *timer.Debouncer

	hooks     *HookManager
	metrics   *Metrics
	listener  Listener
	shortcuts Shortcuts

	session *Session
	out     sink.TextSink

	// notes collects notifications raised while an event is routed.
	notes *[]Notification
}

// NewRouter creates a router with no focused field.
func NewRouter(config Config, opts Options) *Router {
	if opts.Scheduler == nil {
		panic("input: NewRouter requires a timer.Scheduler")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NullLogger
	}
	if opts.Tables == nil {
		opts.Tables = layout.NewStore(opts.Logger)
	}
	if opts.Remapper == nil {
		opts.Remapper = hw.Identity{}
	}
	config = config.Clamped()

	r := &Router{
		logger:     opts.Logger.WithComponent("router"),
		sched:      opts.Scheduler,
		normalizer: hw.NewNormalizer(opts.Remapper, opts.Logger),
		tables:     opts.Tables,
		spaces:     autospace.NewTracker(opts.Logger),
		refresh:    timer.NewDebouncer(opts.Scheduler),
		hooks:      NewHookManager(),
		metrics:    NewMetrics(),
		listener:   opts.Listener,
		shortcuts:  opts.Shortcuts,
		out:        sink.Detached{},
	}
	r.modifiers = modifier.NewMachine(timer.PassiveClock(opts.Scheduler), config.DoubleTapThreshold, opts.Logger)
	r.sym = sym.NewController(config.Sym, opts.Tables, opts.Logger)
	r.longPress = longpress.NewScheduler(config.LongPress, opts.Scheduler, opts.Tables, r.spaces, pressNotifier{r}, opts.Logger)
	r.multiTap = multitap.NewCycler(opts.Scheduler, config.MultiTapTimeout, opts.Logger)
	r.session = NewSession(Field{}, opts.Scheduler.Now())
	r.SetConfig(config)
	return r
}

// SetConfig applies a new configuration. Armed timers keep their delay.
func (r *Router) SetConfig(config Config) {
	config = config.Clamped()
	r.config = config

	r.modifiers.SetDoubleTapThreshold(config.DoubleTapThreshold)
	r.multiTap.SetTimeout(config.MultiTapTimeout)
	r.sym.SetConfig(config.Sym)

	lp := config.LongPress
	if lp.SymPage == 0 {
		lp.SymPage = int(r.sym.PreferredPage())
	}
	r.longPress.SetConfig(lp)
	r.logger.Debug("config applied: long press %v/%v, double tap %v, multi-tap %v/%v",
		lp.Mode, lp.Threshold, config.DoubleTapThreshold, config.MultiTapEnabled, config.MultiTapTimeout)
}

// Config returns the active configuration.
func (r *Router) Config() Config {
	return r.config
}

// Hooks returns the hook manager.
func (r *Router) Hooks() *HookManager {
	return r.hooks
}

// Metrics returns the metrics tracker.
func (r *Router) Metrics() *Metrics {
	return r.metrics
}

// Tables returns the layout store the router reads from.
func (r *Router) Tables() *layout.Store {
	return r.tables
}

// SetListener replaces the notification listener.
func (r *Router) SetListener(l Listener) {
	r.listener = l
}

// SetShortcuts replaces the launcher shortcuts.
func (r *Router) SetShortcuts(s Shortcuts) {
	r.shortcuts = s
}

// SetRemapper replaces the hardware remapper.
func (r *Router) SetRemapper(rm hw.Remapper) {
	if rm == nil {
		rm = hw.Identity{}
	}
	r.normalizer = hw.NewNormalizer(rm, r.logger)
}

// Session returns a copy of the current session.
func (r *Router) Session() *Session {
	return r.session.Clone()
}

// Status returns what a status display shows.
func (r *Router) Status() Status {
	return Status{
		Modifiers: r.modifiers.Snapshot().WithSym(r.sym.Active()),
		SymPage:   r.sym.Page(),
		NavMode:   r.modifiers.NavLatched(),
		CapsLock:  r.modifiers.CapsLock(),
		Field:     r.session.Field,
	}
}

// StartSession begins a session for field, writing to out. All state of
// the previous session is dropped. A navigation latch survives only when
// the new field is not editable.
func (r *Router) StartSession(field Field, out sink.TextSink) *Session {
	if out == nil {
		out = sink.Detached{}
	}
	r.resetState(!field.Editable())
	r.out = out
	r.session = NewSession(field, r.sched.Now())
	r.metrics.Count(CountSession)
	r.logger.Debug("session %s started (field=%s package=%q)", r.session.ID, field.Kind, field.Package)
	return r.session.Clone()
}

// EndSession drops all state of the current session and detaches the sink.
func (r *Router) EndSession() {
	r.logger.Debug("session %s ended after %d keys", r.session.ID, r.session.KeyDowns)
	r.resetState(true)
	r.out = sink.Detached{}
	r.session = NewSession(Field{}, r.sched.Now())
}

func (r *Router) resetState(preserveNav bool) {
	r.longPress.Reset()
	r.multiTap.Reset()
	r.sym.Reset()
	r.spaces.Clear()
	r.refresh.Stop()
	r.modifiers.Reset(preserveNav, r.navCancelled)
}

// CommitAutoSpace commits a space on behalf of autocorrection and marks it
// as automatic, so a following punctuation mark can replace it.
func (r *Router) CommitAutoSpace() bool {
	if err := r.out.CommitText(" "); err != nil {
		r.metrics.Count(CountSinkFailure)
		return false
	}
	r.spaces.Mark()
	return true
}

// KeyDown routes a key-down event.
func (r *Router) KeyDown(ev key.Event) Result {
	defer r.metrics.Time(true)()

	var notes []Notification
	r.notes = &notes
	ev = r.normalizer.Normalize(ev)

	var d Decision
	if r.hooks.Before(&ev, r.session) {
		r.metrics.Count(CountHookConsumed)
		d = Consume
	} else if r.session.Editable() {
		d = r.keyDown(ev)
	} else {
		d = r.keyDownNoField(ev)
	}
	r.notes = nil

	r.session.record(d)
	r.metrics.CountDecision(d)
	res := Result{Decision: d, Notes: notes}
	r.hooks.After(ev, &res, r.session)
	return res
}

// KeyUp routes a key-up event.
func (r *Router) KeyUp(ev key.Event) Result {
	defer r.metrics.Time(false)()

	var notes []Notification
	r.notes = &notes
	ev = r.normalizer.Normalize(ev)

	var d Decision
	if r.hooks.Before(&ev, r.session) {
		r.metrics.Count(CountHookConsumed)
		d = Consume
	} else if r.session.Editable() {
		d = r.keyUp(ev)
	} else {
		d = r.keyUpNoField(ev)
	}
	r.notes = nil

	r.metrics.CountDecision(d)
	res := Result{Decision: d, Notes: notes}
	r.hooks.After(ev, &res, r.session)
	return res
}

// HandleKeyEvent routes ev by its action.
func (r *Router) HandleKeyEvent(ev key.Event) Result {
	if ev.IsDown() {
		return r.KeyDown(ev)
	}
	return r.KeyUp(ev)
}

// keyDown is the pipeline for an editable field.
func (r *Router) keyDown(ev key.Event) Decision {
	code := ev.Code

	if r.modifiers.ReleaseNavLatch() {
		r.navCancelled()
	}

	// Back always reaches the host so the field can be closed.
	if code == key.CodeBack {
		return CallHostDefault
	}

	if k, ok := modifier.KindOf(code); ok {
		return r.modifierDown(k)
	}

	if code == key.CodeSym {
		page := r.sym.Toggle()
		r.logger.Debug("sym page -> %v", page)
		r.statusChanged()
		return Consume
	}

	if code == key.CodeDeleteWord {
		if r.config.SwipeToDelete && r.deleteLastWord() {
			r.scheduleRefresh()
		}
		return Consume
	}

	// A key that is already down is a host repeat.
	if r.longPress.Pending(code) {
		return Consume
	}

	r.modifiers.RegisterNonModifierKey()
	if st := r.multiTap.State(); st.Active && st.LastCode != code {
		r.multiTap.Reset()
	}

	snap := r.modifiers.Snapshot().WithHostMeta(ev.Meta).WithSym(r.sym.Active())
	tables := r.tables.Tables()

	if r.session.Numeric() {
		if alt, ok := tables.AltFor(code); ok {
			r.commit(alt)
			r.scheduleRefresh()
			return Consume
		}
	}

	if r.forwardDelete(code, snap) {
		return Consume
	}

	ctrlActive := snap.Active(modifier.Ctrl)
	if r.sym.Active() && !ctrlActive {
		page := r.sym.Page()
		res := r.sym.HandleKey(r.out, code, snap.Active(modifier.Shift))
		if r.sym.Page() != page {
			r.statusChanged()
		}
		switch res {
		case sym.Consume:
			r.consumeShiftOneShot(snap.State(modifier.Shift).OneShot)
			r.spaces.Clear()
			r.scheduleRefresh()
			return Consume
		case sym.CallHostDefault:
			return CallHostDefault
		}
	}

	if ev.IsSymPressed() && !r.sym.Active() && !ctrlActive {
		if glyph, ok := r.sym.ResolveChord(code, snap.Active(modifier.Shift)); ok {
			r.commit(glyph)
			r.consumeShiftOneShot(snap.State(modifier.Shift).OneShot)
			r.scheduleRefresh()
			return Consume
		}
	}

	if snap.Active(modifier.Alt) {
		return r.altCombination(code)
	}

	if ctrlActive {
		return r.ctrlCombination(code)
	}

	return r.resolveKey(ev, snap)
}

// modifierDown handles Shift, Ctrl and Alt key-downs in a field.
func (r *Router) modifierDown(k modifier.Kind) Decision {
	switch k {
	case modifier.Alt:
		// Alt closes an open Sym page and never reaches the host, which
		// would open its symbol picker.
		if r.sym.Close() {
			r.statusChanged()
		}
		if r.modifiers.Press(k, true, r.navCancelled).Changed {
			r.statusChanged()
		}
		return Consume
	case modifier.Ctrl:
		out := r.modifiers.Press(k, true, r.navCancelled)
		if out.Changed {
			r.statusChanged()
		}
		if out.Consume {
			return Consume
		}
		return CallHostDefault
	default:
		if r.modifiers.Press(k, true, r.navCancelled).Changed {
			r.statusChanged()
		}
		return CallHostDefault
	}
}

// altCombination handles a key while Alt is held, one-shot or latched.
func (r *Router) altCombination(code key.Code) Decision {
	r.longPress.Cancel(code)
	if r.modifiers.ConsumeOneShot(modifier.Alt) {
		r.statusChanged()
	}

	// Space is always a literal space; the host would open its symbol
	// picker instead.
	if code == key.CodeSpace {
		r.commit(" ")
		if r.config.ClearAltOnSpace && r.modifiers.State(modifier.Alt).Latched {
			r.modifiers.SetLatched(modifier.Alt, false)
		}
		r.statusChanged()
		return Consume
	}

	alt, ok := r.tables.Tables().AltFor(code)
	if !ok {
		return CallHostDefault
	}
	first, _ := utf8.DecodeRuneInString(alt)
	if autospace.IsAutoSpacePunctuation(alt) && r.spaces.ReplaceWithPunctuation(r.out, alt) {
		r.emit(Notification{Note: NoteAltCharInserted, Text: string(first)})
		r.statusChanged()
		return Consume
	}
	r.spaces.Clear()
	if r.commit(alt) {
		r.emit(Notification{Note: NoteAltCharInserted, Text: string(first)})
	}
	r.statusChanged()
	return Consume
}

// ctrlCombination handles a key while Ctrl is held, one-shot or latched.
func (r *Router) ctrlCombination(code key.Code) Decision {
	m, ok := r.tables.Tables().CtrlFor(code)
	if ok {
		switch m.Kind {
		case layout.CtrlAction:
			if m.Action == sink.ActionNone {
				r.logger.Debug("ctrl+%v maps to unknown action %q, dropped", code, m.Name)
				return Consume
			}
			r.consumeCtrlOneShot()
			if err := r.out.PerformAction(m.Action); err != nil {
				r.sinkFailed("ctrl action", err)
			}
			r.scheduleRefresh()
		case layout.CtrlKeycode:
			r.consumeCtrlOneShot()
			if err := r.out.SendKey(m.Key); err != nil {
				r.sinkFailed("ctrl key", err)
			}
			if m.Key.IsCursorMovement() {
				r.scheduleRefresh()
			}
		}
		return Consume
	}

	switch code {
	case key.CodeDel:
		r.consumeCtrlOneShot()
		if r.out.HasSelection() {
			r.commit("")
		} else {
			r.deleteLastWord()
		}
		r.scheduleRefresh()
		return Consume
	case key.CodeEnter, key.CodeBack:
		r.consumeCtrlOneShot()
		return CallHostDefault
	}
	// Nothing happened, so a Ctrl one-shot stays armed.
	return Consume
}

// consumeCtrlOneShot clears a Ctrl one-shot once it shaped a key. A held
// or nav-latched Ctrl keeps it; a held Ctrl drops it on release instead.
func (r *Router) consumeCtrlOneShot() {
	if r.modifiers.State(modifier.Ctrl).Held || r.modifiers.NavLatched() {
		return
	}
	if r.modifiers.ConsumeOneShot(modifier.Ctrl) {
		r.statusChanged()
	}
}

// resolveKey runs the layout, multi-tap and long-press stages.
func (r *Router) resolveKey(ev key.Event, snap modifier.Snapshot) Decision {
	code := ev.Code
	shiftOneShot := snap.State(modifier.Shift).OneShot
	casing := layout.Casing{
		Shift:    snap.Held(modifier.Shift),
		CapsLock: snap.CapsLock(),
		OneShot:  shiftOneShot,
	}
	upper := casing.Upper()
	resolver := r.tables.Resolver()
	mapping, mapped := resolver.Lookup(code)

	if r.config.MultiTapEnabled && mapped && mapping.HasTaps() {
		res := r.multiTap.HandleTap(r.out, code, mapping, upper)
		if res.Handled {
			if res.ReplacedInWindow {
				r.metrics.Count(CountMultiTapReplace)
			}
			r.consumeShiftOneShot(shiftOneShot)
			r.spaces.Clear()
			if res.Committed != "" {
				r.longPress.ArmOnly(r.out, code, res.Committed)
			}
			r.scheduleRefresh()
			return Consume
		}
	}

	text, ok := resolver.Resolve(code, casing, ev.Rune)
	supported := r.longPress.Supports(code, text, upper)
	letter := ok && startsWithLetter(text)

	if !ok || (!supported && !mapped && !(shiftOneShot && letter)) {
		// Nothing of ours applies; the host inserts its own character.
		return CallHostDefault
	}

	r.spaces.Clear()
	r.longPress.Press(r.out, code, text, upper)
	if supported || letter {
		r.consumeShiftOneShot(shiftOneShot)
	}
	r.scheduleRefresh()
	return Consume
}

func (r *Router) consumeShiftOneShot(armed bool) {
	if armed && r.modifiers.ConsumeOneShot(modifier.Shift) {
		r.statusChanged()
	}
}

// keyUp is the key-up pipeline for an editable field.
func (r *Router) keyUp(ev key.Event) Decision {
	code := ev.Code

	if k, ok := modifier.KindOf(code); ok {
		if r.modifiers.Release(k) {
			r.statusChanged()
		}
		if k == modifier.Shift {
			r.longPress.CancelReleased()
		}
		return CallHostDefault
	}

	if code == key.CodeSym {
		return Consume
	}

	holdShift := r.modifiers.State(modifier.Shift).Held || ev.IsShiftPressed()
	had := r.longPress.Release(code, holdShift)
	if had && !r.sym.Active() {
		return Consume
	}
	return CallHostDefault
}

// keyDownNoField handles navigation mode and launcher shortcuts while no
// editable field has focus. Everything else reaches the host untouched.
func (r *Router) keyDownNoField(ev key.Event) Decision {
	code := ev.Code

	if code == key.CodeBack {
		if r.modifiers.ReleaseNavLatch() {
			r.navCancelled()
			r.statusChanged()
		}
		return CallHostDefault
	}

	if code.IsCtrl() {
		return r.ctrlDownNoField()
	}
	if code.IsModifier() {
		return CallHostDefault
	}
	r.modifiers.RegisterNonModifierKey()

	if r.modifiers.NavLatched() {
		if m, ok := r.tables.Tables().CtrlFor(code); ok && m.Kind == layout.CtrlKeycode {
			if err := r.out.SendKey(m.Key); err != nil {
				r.sinkFailed("nav key", err)
			}
			return Consume
		}
		return CallHostDefault
	}

	if r.config.LauncherShortcuts && r.session.Field.IsLauncher && code.IsAlphabetic() &&
		r.shortcuts != nil && !r.modifiers.State(modifier.Ctrl).Latched {
		if r.shortcuts.Launch(code) {
			r.logger.Debug("launcher shortcut %v", code)
			return Consume
		}
	}
	return CallHostDefault
}

// ctrlDownNoField implements the navigation latch: a Ctrl double tap
// engages it and the next Ctrl tap releases it.
func (r *Router) ctrlDownNoField() Decision {
	if r.modifiers.State(modifier.Ctrl).Held {
		if r.modifiers.NavLatched() {
			return Consume
		}
		return CallHostDefault
	}

	wasNav := r.modifiers.NavLatched()
	out := r.modifiers.Press(modifier.Ctrl, false, r.navCancelled)
	if wasNav {
		r.statusChanged()
		if out.Consume {
			return Consume
		}
		return CallHostDefault
	}

	if r.modifiers.State(modifier.Ctrl).Latched {
		r.modifiers.EngageNavLatch()
		r.metrics.Count(CountNavMode)
		r.emit(Notification{Note: NoteNavMode, Text: "on"})
		r.statusChanged()
		return Consume
	}
	return CallHostDefault
}

func (r *Router) keyUpNoField(ev key.Event) Decision {
	code := ev.Code
	nav := r.modifiers.NavLatched()

	if code.IsCtrl() {
		r.modifiers.Release(modifier.Ctrl)
		if nav {
			return Consume
		}
		return CallHostDefault
	}
	if nav {
		if m, ok := r.tables.Tables().CtrlFor(code); ok && m.Kind == layout.CtrlKeycode {
			return Consume
		}
	}
	return CallHostDefault
}

// navCancelled reports navigation mode turning off.
func (r *Router) navCancelled() {
	r.logger.Debug("navigation mode off")
	r.emit(Notification{Note: NoteNavMode, Text: "off"})
}

// commit writes text to the sink and reports whether it was accepted.
func (r *Router) commit(text string) bool {
	if err := r.out.CommitText(text); err != nil {
		r.sinkFailed("commit", err)
		return false
	}
	return true
}

func (r *Router) sinkFailed(op string, err error) {
	r.metrics.Count(CountSinkFailure)
	r.logger.Debug("%s skipped: %v", op, err)
}

// emit delivers n to the listener and, while an event is routed, to its
// result.
func (r *Router) emit(n Notification) {
	if r.notes != nil {
		*r.notes = append(*r.notes, n)
	}
	if r.listener != nil {
		r.listener.Notify(n)
	}
}

// statusChanged emits one status refresh per routed event.
func (r *Router) statusChanged() {
	if r.notes != nil {
		for _, n := range *r.notes {
			if n.Note == NoteStatusRefresh {
				return
			}
		}
	}
	r.emit(Notification{Note: NoteStatusRefresh})
}

// scheduleRefresh asks for a status refresh once the host has caught up
// with the cursor. A newer request supersedes an older one.
func (r *Router) scheduleRefresh() {
	r.refresh.Trigger(r.config.CursorUpdateDelay, func() {
		r.metrics.Count(CountDelayedRefresh)
		r.emit(Notification{Note: NoteStatusRefresh})
	})
}

// pressNotifier forwards long-press outcomes to the router.
type pressNotifier struct {
	r *Router
}

func (p pressNotifier) AltCharInserted(c rune) {
	p.r.metrics.Count(CountLongPress)
	p.r.emit(Notification{Note: NoteAltCharInserted, Text: string(c)})
	p.r.scheduleRefresh()
}

func (p pressNotifier) NormalCharCommitted(text string) {
	p.r.emit(Notification{Note: NoteNormalCharCommitted, Text: text})
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}
