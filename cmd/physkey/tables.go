package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/physkey/internal/input/key"
	"github.com/dshills/physkey/internal/input/layout"
)

type tablesOptions struct {
	layout string
	table  string
}

var tableNames = []string{"letters", "alt", "sym1", "sym2", "ctrl"}

func newTablesCmd(global *globalOptions) *cobra.Command {
	opts := &tablesOptions{}

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the active layout and secondary tables",
		Long: `Tables prints the letter layout, the Alt table, both Sym pages and the Ctrl
table that the settings file selects. Use --layout to look at another
built-in layout or layout file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.table != "" && !slices.Contains(tableNames, opts.table) {
				return errors.Errorf("unknown table %q (must be one of %s)", opts.table, strings.Join(tableNames, ", "))
			}

			cfg, logger, err := global.loadConfig(cmd.Context(), false, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cfg.Close()

			src := cfg.Settings().LayoutSource()
			if opts.layout != "" {
				src.Layout = opts.layout
			}
			store := layout.NewStore(logger)
			if err := store.Load(src); err != nil {
				return err
			}

			printTables(cmd.OutOrStdout(), store, opts.table)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.layout, "layout", "l", "", "Layout name or file (built-in: "+strings.Join(layout.BuiltinNames(), ", ")+")")
	cmd.Flags().StringVarP(&opts.table, "table", "t", "", "Only print one table ("+strings.Join(tableNames, ", ")+")")
	return cmd
}

func printTables(out io.Writer, store *layout.Store, only string) {
	res := store.Resolver()
	tables := store.Tables()

	show := func(name string) bool { return only == "" || only == name }

	if show("letters") {
		headerColor.Fprintf(out, "Layout %s\n", res.Name())
		for _, code := range res.Codes() {
			m, ok := res.Lookup(code)
			if !ok {
				continue
			}
			text := m.Text(false)
			if m.HasTaps() {
				taps := make([]string, len(m.Taps))
				for i, t := range m.Taps {
					taps[i] = t.Text(false)
				}
				text += "  taps " + strings.Join(taps, " ")
			}
			printRow(out, code, text)
		}
		fmt.Fprintln(out)
	}
	if show("alt") {
		printStrings(out, "Alt", tables.Alt)
	}
	if show("sym1") {
		printStrings(out, "Sym page 1 (emoji)", tables.Sym1)
	}
	if show("sym2") {
		printStrings(out, "Sym page 2 (symbols)", tables.Sym2)
	}
	if show("ctrl") {
		headerColor.Fprintln(out, "Ctrl")
		for _, code := range sortedCodes(tables.Ctrl) {
			printRow(out, code, tables.Ctrl[code].String())
		}
		fmt.Fprintln(out)
	}
}

func printStrings(out io.Writer, title string, table map[key.Code]string) {
	headerColor.Fprintln(out, title)
	for _, code := range sortedCodes(table) {
		printRow(out, code, table[code])
	}
	fmt.Fprintln(out)
}

func printRow(out io.Writer, code key.Code, value string) {
	keyColor.Fprintf(out, "  %-12s", code)
	fmt.Fprintf(out, " %s\n", value)
}

func sortedCodes[V any](m map[key.Code]V) []key.Code {
	codes := make([]key.Code, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}
