package trace

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dshills/physkey/internal/config"
	"github.com/dshills/physkey/internal/input"
	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/sink"
	"github.com/dshills/physkey/internal/timer"
)

// settle is how long Replay runs the clock after the last event so pending
// long presses and multi-tap timeouts resolve.
const settle = 2 * time.Second

// Epoch is the virtual start time of every replay.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Decision is the router's answer to one key event.
type Decision struct {
	At     time.Duration
	Event  key.Event
	Result input.Result

	// Text and Cursor are the field state after the event.
	Text   string
	Cursor int
}

// String formats the decision as one replay line.
func (d Decision) String() string {
	return fmt.Sprintf("%6dms %-4s %-16s -> %-18s %q", d.At.Milliseconds(), d.Event.Action, d.Event.Code, d.Result, d.Text)
}

// Note is a notification with the virtual time it was delivered.
type Note struct {
	At           time.Duration
	Notification input.Notification
}

// Report is the outcome of a replay.
type Report struct {
	Name      string
	Decisions []Decision
	Notes     []Note
	Text      string
	Cursor    int
	Actions   []sink.Action
	Keys      []key.Code
	Status    input.Status
}

// Options configures Replay.
type Options struct {
	// Tables overrides the layout store. Default: loaded from the trace
	// settings.
	Tables *layout.Store

	// Shortcuts handles launcher shortcuts.
	Shortcuts input.Shortcuts

	Logger *logging.Logger
}

// Replay runs t through a fresh Router on a manual clock.
func Replay(t *Trace, opts Options) (*Report, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.NullLogger
	}

	settings, err := config.Decode(t.Settings)
	if err != nil {
		return nil, errors.Wrap(err, "trace settings")
	}
	if t.Layout != "" {
		settings.Layout.Name = t.Layout
	}
	routerConfig, err := settings.RouterConfig()
	if err != nil {
		return nil, err
	}

	store := opts.Tables
	if store == nil {
		store = layout.NewStore(opts.Logger)
		if err := store.Load(settings.LayoutSource()); err != nil {
			return nil, errors.Wrap(err, "trace layout")
		}
	}

	clk := timer.NewManual(Epoch)
	report := &Report{Name: t.Name}
	listener := input.ListenerFunc(func(n input.Notification) {
		report.Notes = append(report.Notes, Note{At: clk.Now().Sub(Epoch), Notification: n})
	})

	r := input.NewRouter(routerConfig, input.Options{
		Scheduler: clk,
		Tables:    store,
		Remapper:  settings.Remapper(),
		Listener:  listener,
		Shortcuts: opts.Shortcuts,
		Logger:    opts.Logger,
	})

	out := sink.NewMemoryWithText(t.Text)
	if t.Cursor != nil {
		out.SetCursor(*t.Cursor)
	}
	kind, _ := input.ParseFieldKind(t.fieldName())
	r.StartSession(input.Field{Kind: kind, Package: t.Package, IsLauncher: t.Launcher}, out)

	for _, step := range t.Events {
		clk.AdvanceTo(Epoch.Add(step.Offset()))
		events, _ := step.events(Epoch)
		for _, ev := range events {
			res := r.HandleKeyEvent(ev)
			report.Decisions = append(report.Decisions, Decision{
				At:     step.Offset(),
				Event:  ev,
				Result: res,
				Text:   out.Text(),
				Cursor: out.Cursor(),
			})
		}
	}
	clk.Advance(settle)

	report.Text = out.Text()
	report.Cursor = out.Cursor()
	report.Actions = out.Actions()
	report.Keys = out.Keys()
	report.Status = r.Status()
	r.EndSession()
	return report, nil
}

// MismatchError lists every expectation a report failed.
type MismatchError struct {
	Name     string
	Problems []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("trace %q: %s", e.Name, strings.Join(e.Problems, "; "))
}

// Check compares the report with want and returns a *MismatchError if
// they differ. A nil want always passes.
func (r *Report) Check(want *Expect) error {
	if want == nil {
		return nil
	}
	var problems []string
	if want.Text != nil && *want.Text != r.Text {
		problems = append(problems, fmt.Sprintf("text %q, want %q", r.Text, *want.Text))
	}
	if want.Cursor != nil && *want.Cursor != r.Cursor {
		problems = append(problems, fmt.Sprintf("cursor %d, want %d", r.Cursor, *want.Cursor))
	}
	if want.Decisions != nil {
		got := make([]string, len(r.Decisions))
		for i, d := range r.Decisions {
			got[i] = d.Result.Decision.String()
		}
		if !slices.Equal(got, want.Decisions) {
			problems = append(problems, fmt.Sprintf("decisions %v, want %v", got, want.Decisions))
		}
	}
	if want.Notes != nil {
		got := make([]string, len(r.Notes))
		for i, n := range r.Notes {
			got[i] = n.Notification.Note.String()
		}
		if !slices.Equal(got, want.Notes) {
			problems = append(problems, fmt.Sprintf("notes %v, want %v", got, want.Notes))
		}
	}
	if want.Actions != nil {
		got := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			got[i] = a.String()
		}
		if !slices.Equal(got, want.Actions) {
			problems = append(problems, fmt.Sprintf("actions %v, want %v", got, want.Actions))
		}
	}
	if want.Keys != nil {
		got := make([]string, len(r.Keys))
		for i, k := range r.Keys {
			got[i] = k.String()
		}
		if !slices.Equal(got, want.Keys) {
			problems = append(problems, fmt.Sprintf("keys %v, want %v", got, want.Keys))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &MismatchError{Name: r.Name, Problems: problems}
}
