package app

import (
	"context"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/dedupe/internal/cmd/alerts"
)

// Execute runs the dedupe CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	// --config has to be known before flags are bound to config values.
	if path := configFileFromArgs(args); path != "" && path != a.config.ConfigFile {
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
	}

	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dedupe [input.csv] [output.csv]",
		Short:   "Remove duplicate entries from password manager CSV exports",
		Version: a.version,
		Long: `Dedupe reads a password manager CSV export and writes one row per entry
name, in the order each name first appeared.

Rows that repeat a name are compared with the row already kept. Exact
duplicates are reported and dropped. Conflicting duplicates are resolved
by the active policy:

• interactive - choose to merge field by field, drop both rows, or split
  the copy under a new name
• automatic   - keep the first row unless url, username or password
  differ, in which case the conflict is reported
• auto        - interactive when stdin is a terminal, automatic otherwise

Output goes to stdout unless an output file is given. Diagnostics always
go to stderr.`,
		Example: `  dedupe export.csv clean.csv                 # Resolve and write clean.csv
  dedupe export.csv > clean.csv               # Write to stdout
  dedupe --policy automatic export.csv        # Never prompt
  dedupe --show-rows --summary table in.csv   # Show raw rows and a run summary
  dedupe scan export.csv                      # List duplicate names only`,
		Args:              cobra.MaximumNArgs(2),
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runDedupe(cmd.Context(), args[0], optionalArg(args, 1))
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "config file (default is $HOME/.dedupe.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	a.addInputFlags(rootCmd)
	a.addRunFlags(rootCmd)
	a.addDiagnosticsFlags(rootCmd)

	// Customize version output to match version subcommand
	rootCmd.SetVersionTemplate("dedupe {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, logLevel)
	if err := a.config.Validate(); err != nil {
		return err
	}

	if a.config.NoColor {
		color.NoColor = true
	}

	// Reinitialize logger with updated config
	if !a.customLogger {
		logger := NewLogger(a.config, a.stderr)
		a.logger = &logger
	}

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewRunCommand())
	rootCmd.AddCommand(a.NewScanCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_ = alerts.NewWriterTo(os.Stderr).WriteAlert(alerts.NewError(err.Error()))
		os.Exit(1)
	}
}

// configFileFromArgs finds --config in raw arguments.
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			return ""
		}
		if value, ok := strings.CutPrefix(arg, "--config="); ok {
			return value
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
