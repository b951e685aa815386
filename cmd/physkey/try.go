package main

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"

	"github.com/dshills/physkey/internal/config"
	"github.com/dshills/physkey/internal/input"
	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/modifier"
	"github.com/dshills/physkey/internal/input/sym"
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/sink"
	"github.com/dshills/physkey/internal/trace"
)

// historySize is the number of decision and note lines kept on screen.
const historySize = 14

type tryOptions struct {
	record  string
	logFile string
	field   string
	hold    time.Duration
}

func newTryCmd(global *globalOptions) *cobra.Command {
	opts := &tryOptions{}

	cmd := &cobra.Command{
		Use:   "try",
		Short: "Type into a simulated field from the terminal",
		Long: `Try runs the input pipeline on real time behind a terminal screen. Every
terminal key becomes a hardware key press; F1 to F4 stand in for Shift, Alt,
Ctrl and Sym, and F5 turns the next key into a long press. Settings file
changes apply while the harness runs. Ctrl+Q quits.

With --record the session is written as a trace that replay reproduces.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := input.ParseFieldKind(opts.field)
			if err != nil {
				return err
			}

			logOut := io.Discard
			if opts.logFile != "" {
				f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return errors.Wrap(err, "opening log file")
				}
				defer f.Close()
				logOut = f
			}

			cfg, logger, err := global.loadConfig(cmd.Context(), true, logOut)
			if err != nil {
				return err
			}
			defer cfg.Close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return errors.Wrap(err, "creating terminal screen")
			}
			if err := screen.Init(); err != nil {
				return errors.Wrap(err, "initializing terminal screen")
			}

			h := newTryHarness(screen, opts.hold, logger)
			defer h.close()
			if err := h.start(cfg, input.Field{Kind: kind}); err != nil {
				screen.Fini()
				return err
			}
			h.run()
			screen.Fini()

			if opts.record != "" {
				return h.writeTrace(opts.record, cfg, kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.record, "record", "r", "", "Write the session to a trace file")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Append logs to this file")
	cmd.Flags().StringVar(&opts.field, "field", "text", "Field kind (text, numeric, none)")
	cmd.Flags().DurationVar(&opts.hold, "hold", 700*time.Millisecond, "How long F5 holds the next key")
	return cmd
}

// tryHarness connects a terminal screen to an input System.
type tryHarness struct {
	screen tcell.Screen
	hold   time.Duration
	logger *logging.Logger

	sys       *input.System
	out       *sink.Memory
	startedAt time.Time

	mu       sync.Mutex
	history  []string
	steps    []trace.Step
	holdNext bool
}

func newTryHarness(screen tcell.Screen, hold time.Duration, logger *logging.Logger) *tryHarness {
	return &tryHarness{
		screen: screen,
		hold:   hold,
		logger: logger.WithComponent("try"),
		out:    sink.NewMemory(),
	}
}

func (h *tryHarness) start(cfg *config.Config, field input.Field) error {
	sysCfg := input.DefaultSystemConfig()
	sysCfg.Loop.Logger = h.logger
	h.sys = input.NewSystem(sysCfg, input.Options{
		Listener: input.ListenerFunc(h.notify),
		Logger:   h.logger,
	})
	h.sys.Hooks().Add("log", input.HookLast, input.LoggingHook{Logf: h.logger.Debug})

	if _, err := cfg.Bind(h.sys); err != nil {
		return err
	}
	if _, err := h.sys.StartSession(field, h.out); err != nil {
		return err
	}
	h.startedAt = time.Now()
	return nil
}

func (h *tryHarness) close() {
	if h.sys != nil {
		h.sys.Close()
	}
}

// run polls terminal events until the user quits.
func (h *tryHarness) run() {
	h.draw()
	for {
		switch ev := h.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlQ || ev.Key() == tcell.KeyCtrlC {
				return
			}
			h.handleKey(ev)
		case *tcell.EventResize:
			h.screen.Sync()
		}
		h.draw()
	}
}

func (h *tryHarness) handleKey(ev *tcell.EventKey) {
	if ev.Key() == holdKey {
		h.mu.Lock()
		h.holdNext = !h.holdNext
		h.mu.Unlock()
		return
	}

	p, ok := translateKey(ev.Key(), ev.Rune())
	if !ok {
		h.addHistory(fmt.Sprintf("no hardware key for %s", ev.Name()))
		return
	}

	h.mu.Lock()
	hold := h.holdNext
	h.holdNext = false
	h.mu.Unlock()

	h.send(p, key.ActionDown)
	if !hold {
		h.send(p, key.ActionUp)
		return
	}
	time.AfterFunc(h.hold, func() {
		h.send(p, key.ActionUp)
		_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// send delivers one transition to the system and records it.
func (h *tryHarness) send(p keyPress, action key.Action) {
	now := time.Now()
	var meta key.Meta
	var metaNames []string
	if p.Shift {
		meta = key.MetaShiftOn | key.MetaShiftLeftOn
		metaNames = []string{"shift"}
	}
	ev := key.NewEvent(p.Code, action, meta, now).WithRune(p.Rune)

	res, err := h.sys.HandleKeyEvent(ev)
	if err != nil {
		h.addHistory(fmt.Sprintf("error: %v", err))
		return
	}

	step := trace.Step{At: now.Sub(h.startedAt).Milliseconds(), Meta: metaNames}
	if p.Rune != 0 {
		step.Rune = string(p.Rune)
	}
	if action == key.ActionDown {
		step.Down = p.Code.String()
	} else {
		step.Up = p.Code.String()
	}

	h.mu.Lock()
	h.steps = append(h.steps, step)
	h.mu.Unlock()
	h.addHistory(fmt.Sprintf("%-4s %-12s -> %s", action, p.Code, res))
}

// notify runs on the system's dispatch goroutine.
func (h *tryHarness) notify(n input.Notification) {
	h.addHistory("note " + n.String())
	_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (h *tryHarness) addHistory(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, line)
	if len(h.history) > historySize {
		h.history = h.history[len(h.history)-historySize:]
	}
}

var (
	titleStyle  = tcell.StyleDefault.Bold(true)
	fieldStyle  = tcell.StyleDefault.Reverse(true)
	activeStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	faintStyle  = tcell.StyleDefault.Dim(true)
)

func (h *tryHarness) draw() {
	h.screen.Clear()

	drawString(h.screen, 0, 0, "physkey try", titleStyle)
	drawString(h.screen, 12, 0, "F1 shift  F2 alt  F3 ctrl  F4 sym  F5 hold  Ctrl+Q quit", faintStyle)

	text := displayText(h.out.Text())
	width, _ := h.screen.Size()
	drawString(h.screen, 0, 2, strings.Repeat(" ", width), fieldStyle)
	drawString(h.screen, 0, 2, text, fieldStyle)
	before := displayText(firstGraphemes(h.out.Text(), h.out.Cursor()))
	h.screen.ShowCursor(uniseg.StringWidth(before), 2)
	if sel := h.out.Selection(); sel != "" {
		drawString(h.screen, 0, 3, "selected "+displayText(sel), faintStyle)
	}

	x := 0
	if st, err := h.sys.Status(); err == nil {
		for _, k := range []modifier.Kind{modifier.Shift, modifier.Alt, modifier.Ctrl} {
			label := k.String() + ":" + modifierLabel(st.Modifiers.State(k))
			style := faintStyle
			if st.Modifiers.Active(k) {
				style = activeStyle
			}
			x = drawString(h.screen, x, 4, label, style) + 2
		}
		style := faintStyle
		if st.SymPage != sym.Off {
			style = activeStyle
		}
		x = drawString(h.screen, x, 4, "sym:"+st.SymPage.String(), style) + 2
		if st.NavMode {
			drawString(h.screen, x, 4, "nav", activeStyle)
		}
	}

	h.mu.Lock()
	if h.holdNext {
		drawString(h.screen, 0, 5, "next key is held", activeStyle)
	}
	for i, line := range h.history {
		drawString(h.screen, 0, 7+i, line, tcell.StyleDefault)
	}
	h.mu.Unlock()

	h.screen.Show()
}

func modifierLabel(s modifier.State) string {
	switch {
	case s.Latched:
		return "locked"
	case s.OneShot:
		return "one-shot"
	case s.Held:
		return "held"
	}
	return "-"
}

// drawString draws s one grapheme cluster per cell run and returns the
// column after it.
func drawString(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		runes := gr.Runes()
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += gr.Width()
	}
	return x
}

// firstGraphemes returns the first n grapheme clusters of s.
func firstGraphemes(s string, n int) string {
	var b strings.Builder
	gr := uniseg.NewGraphemes(s)
	for i := 0; i < n && gr.Next(); i++ {
		b.WriteString(gr.Str())
	}
	return b.String()
}

func displayText(s string) string {
	return strings.ReplaceAll(s, "\n", "⏎")
}

// recordedSections are the settings copied into a recorded trace.
var recordedSections = []string{"keyboard", "sym", "delete", "device", "layout", "launcher"}

func (h *tryHarness) writeTrace(path string, cfg *config.Config, kind input.FieldKind) error {
	merged := cfg.Merged()
	settings := make(map[string]any, len(recordedSections))
	for _, name := range recordedSections {
		if v, ok := merged[name]; ok {
			settings[name] = v
		}
	}

	h.mu.Lock()
	steps := append([]trace.Step(nil), h.steps...)
	h.mu.Unlock()
	slices.SortStableFunc(steps, func(a, b trace.Step) int { return cmp.Compare(a.At, b.At) })
	if len(steps) == 0 {
		return errors.New("nothing to record")
	}

	text := h.out.Text()
	t := &trace.Trace{
		Name:     "recorded " + h.startedAt.Format(time.RFC3339),
		Settings: settings,
		Field:    kind.String(),
		Events:   steps,
		Expect:   &trace.Expect{Text: &text},
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating trace file")
	}
	if err := trace.Write(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
