package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/physkey/internal/config"
	"github.com/dshills/physkey/internal/logging"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "physkey",
		Short: "Physical keyboard input pipeline",
		Long: `physkey turns raw hardware key events from a physical phone keyboard into
text edits: long press alternatives, one-shot and locked modifiers, SureType
multi-tap and the Sym emoji pages.

The settings file is read from --config, $PHYSKEY_CONFIG or
$XDG_CONFIG_HOME/physkey/physkey.toml, in that order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.logLevel {
			case "", "debug", "info", "warn", "error":
			default:
				return errors.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
			}
			if opts.noColor {
				disableColor()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "Path to the settings file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the settings file")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newReplayCmd(opts))
	rootCmd.AddCommand(newTablesCmd(opts))
	rootCmd.AddCommand(newTryCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func defaultConfigPath() string {
	if p := os.Getenv("PHYSKEY_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// loadConfig reads the settings file and the environment and returns a
// logger writing to out at the configured level. watch keeps the file
// watcher running for long-lived commands.
func (o *globalOptions) loadConfig(ctx context.Context, watch bool, out io.Writer) (*config.Config, *logging.Logger, error) {
	logCfg := logging.DefaultLoggerConfig()
	logCfg.Output = out
	logger := logging.NewLogger(logCfg)

	cfg := config.New(
		config.WithPath(o.configPath),
		config.WithWatcher(watch),
		config.WithLogger(logger),
	)
	if err := cfg.Load(ctx); err != nil {
		_ = cfg.Close()
		return nil, nil, errors.Wrapf(err, "loading %s", o.configPath)
	}

	s := cfg.Settings().LoggerConfig()
	logger.SetJSON(s.JSON)
	logger.SetLevel(s.Level)
	if o.logLevel != "" {
		logger.SetLevel(logging.ParseLogLevel(o.logLevel))
	}
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "physkey %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
