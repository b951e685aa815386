package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/physkey/internal/logging"
	"github.com/dshills/physkey/internal/trace"
)

type replayOptions struct {
	quiet bool
}

func newReplayCmd(global *globalOptions) *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay <trace.yaml>...",
		Short: "Replay key traces on a virtual clock",
		Long: `Replay runs each trace through a fresh input pipeline on a virtual clock and
prints every routing decision, every notification and the final field text.
Traces with an expect block are checked; the command fails if any check
fails. Trace settings apply over the defaults, not over the settings file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := global.logLevel
			if level == "" {
				level = "warn"
			}
			cfg := logging.DefaultLoggerConfig()
			cfg.Level = logging.ParseLogLevel(level)
			cfg.Output = cmd.ErrOrStderr()
			logger := logging.NewLogger(cfg)

			failed := 0
			for _, path := range args {
				if !runReplay(cmd.OutOrStdout(), path, logger, opts.quiet) {
					failed++
				}
			}
			if failed > 0 {
				return errors.Errorf("%d of %d traces failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only print the check result")
	return cmd
}

// runReplay replays one trace file and reports whether it passed.
func runReplay(out io.Writer, path string, logger *logging.Logger, quiet bool) bool {
	t, err := trace.Load(path)
	if err != nil {
		failColor.Fprint(out, "ERROR ")
		fmt.Fprintln(out, err)
		return false
	}
	name := t.Name
	if name == "" {
		name = path
	}

	report, err := trace.Replay(t, trace.Options{Logger: logger})
	if err != nil {
		failColor.Fprint(out, "ERROR ")
		fmt.Fprintf(out, "%s: %v\n", name, err)
		return false
	}

	if !quiet {
		printReport(out, name, report)
	}

	if err := report.Check(t.Expect); err != nil {
		failColor.Fprint(out, "FAIL  ")
		fmt.Fprintln(out, name)
		var mismatch *trace.MismatchError
		if errors.As(err, &mismatch) {
			for _, p := range mismatch.Problems {
				fmt.Fprintf(out, "      %s\n", p)
			}
		}
		return false
	}
	passColor.Fprint(out, "PASS  ")
	fmt.Fprintln(out, name)
	return true
}

func printReport(out io.Writer, name string, r *trace.Report) {
	headerColor.Fprintln(out, name)

	notes := r.Notes
	for _, d := range r.Decisions {
		for len(notes) > 0 && notes[0].At <= d.At {
			printNote(out, notes[0])
			notes = notes[1:]
		}
		decisionColor(d.Result.Decision).Fprintln(out, "  "+d.String())
	}
	for _, n := range notes {
		printNote(out, n)
	}

	fmt.Fprintf(out, "  text %q cursor %d\n", r.Text, r.Cursor)
	if len(r.Actions) > 0 {
		fmt.Fprintf(out, "  actions %v\n", r.Actions)
	}
	if len(r.Keys) > 0 {
		keyColor.Fprintf(out, "  keys %v\n", r.Keys)
	}
}

func printNote(out io.Writer, n trace.Note) {
	noteColor.Fprintf(out, "  %6dms note %s\n", n.At.Milliseconds(), n.Notification)
}
