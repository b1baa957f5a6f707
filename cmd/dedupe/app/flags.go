package app

import (
	"github.com/spf13/cobra"
)

// addInputFlags adds the flags that control how the input is read. They are
// bound to config fields so the config file and environment provide the
// defaults.
func (a *App) addInputFlags(cmd *cobra.Command) {
	c := a.config
	cmd.Flags().StringVarP(&c.KeyColumn, "key-column", "k", c.KeyColumn, "column holding the entry name")
	cmd.Flags().StringVar(&c.Comma, "comma", c.Comma, `input field delimiter (use \t for tab)`)
	cmd.Flags().BoolVar(&c.LazyQuotes, "lazy-quotes", c.LazyQuotes, "tolerate bare quotes in unquoted fields")
}

// addRunFlags adds the flags that control resolution and diagnostics.
func (a *App) addRunFlags(cmd *cobra.Command) {
	c := a.config
	cmd.Flags().StringVarP(&c.Policy, "policy", "p", c.Policy, "conflict policy: interactive, automatic, auto")
	cmd.Flags().StringSliceVar(&c.SignificantFields, "significant", c.SignificantFields, "fields compared by the automatic policy")
	cmd.Flags().StringSliceVar(&c.RequiredColumns, "require", c.RequiredColumns, "columns the header must contain")
	cmd.Flags().StringVar(&c.Prefer, "prefer", c.Prefer, "record kept on an automatic conflict: existing, incoming")
	cmd.Flags().BoolVar(&c.ShowRows, "show-rows", c.ShowRows, "print both raw rows after each diagnostic")
	cmd.Flags().StringVar(&c.RowDelimiter, "row-delimiter", c.RowDelimiter, "delimiter for raw rows in diagnostics")
	cmd.Flags().StringVar(&c.Summary, "summary", c.Summary, "run summary on stderr: none, table, json, yaml")
}

// addDiagnosticsFlags adds the format of everything written to stderr
// besides logs: duplicate diagnostics and status notices.
func (a *App) addDiagnosticsFlags(cmd *cobra.Command) {
	c := a.config
	cmd.Flags().StringVar(&c.DiagnosticsFormat, "diagnostics-format", c.DiagnosticsFormat, "diagnostics format: text, json, yaml")
}
