package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dedupe/internal/cmd/alerts"
	"github.com/agentstation/dedupe/internal/cmd/output"
	"github.com/agentstation/dedupe/pkg/dedupe"
	"github.com/agentstation/dedupe/pkg/logging"
)

// NewScanCommand creates the scan command.
func (a *App) NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <input.csv>",
		Short: "List duplicate names without resolving them",
		Long: `Scan reads the export and lists every name that occurs more than once,
with the lines it occurs on. Nothing is resolved and nothing is written.
Only the key column is required.`,
		Example: `  dedupe scan export.csv
  dedupe scan -o json export.csv | jq '.[].key'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithLogger(cmd.Context(), a.logger)
			ctx = logging.WithFile(ctx, args[0])

			reader, closeInput, err := a.openReader(args[0], []string{a.config.KeyColumn})
			if err != nil {
				return err
			}
			defer closeInput()

			groups, err := dedupe.Scan(ctx, reader, a.config.KeyColumn)
			if err != nil {
				return err
			}
			logging.Ctx(ctx).Debug().Int("duplicates", len(groups)).Msg("Scan complete")

			var stdout *os.File
			if f, ok := a.stdout.(*os.File); ok {
				stdout = f
			}
			format := output.DetectFormat(a.config.Format, stdout)
			if format == output.FormatTable && len(groups) == 0 {
				diagnostics, err := a.diagnosticsWriter()
				if err != nil {
					return err
				}
				return diagnostics.WriteAlert(alerts.NewSuccess("no duplicate names found"))
			}
			return output.FormatGroups(a.stdout, format, groups)
		},
	}
	a.addInputFlags(cmd)
	a.addDiagnosticsFlags(cmd)
	cmd.Flags().StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml")
	return cmd
}
