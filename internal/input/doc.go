// Package input turns physical keyboard events into text edits.
//
// A Router receives normalized key events from a hardware keyboard and
// decides, for each one, whether it consumes the event or lets the host
// run its default handling. Along the way it commits text to a sink.TextSink
// and raises notifications for status displays.
//
// # Architecture
//
// The router owns one instance of every pipeline stage:
//
//   - Hardware normalization: device specific remapping (hw)
//   - Modifiers: Shift, Ctrl and Alt one-shots, latches and holds (modifier)
//   - Layout: key to character resolution with custom layouts (layout)
//   - Long press: replacing a held key's character with an alternative (longpress)
//   - Multi-tap: cycling through the characters of reduced keyboards (multitap)
//   - Sym pages: emoji and symbol pages toggled by the Sym key (sym)
//
// Keys typed while no editable field has focus only drive navigation mode
// and launcher shortcuts.
//
// # Time
//
// Long presses, multi-tap windows and delayed status refreshes run on a
// timer.Scheduler. Tests and trace replay use timer.Manual; real-time hosts
// use a System, which runs the router on a timer.Loop.
//
// # Usage
//
//	sys := input.NewSystem(input.DefaultSystemConfig(), input.Options{
//	    Listener: input.ListenerFunc(func(n input.Notification) {
//	        status.Refresh(n)
//	    }),
//	})
//	defer sys.Close()
//
//	sys.StartSession(input.Field{Kind: input.FieldText}, textSink)
//	for ev := range keyEvents {
//	    res, _ := sys.HandleKeyEvent(ev)
//	    if !res.Consumed() {
//	        host.Default(ev)
//	    }
//	}
package input
