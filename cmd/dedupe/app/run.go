package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/dedupe/internal/cmd/alerts"
	"github.com/agentstation/dedupe/internal/cmd/output"
	"github.com/agentstation/dedupe/internal/csvcodec"
	"github.com/agentstation/dedupe/pkg/dedupe"
	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/index"
	"github.com/agentstation/dedupe/pkg/logging"
	"github.com/agentstation/dedupe/pkg/prompt"
	"github.com/agentstation/dedupe/pkg/resolver"
)

const stdStream = "-"

// NewRunCommand creates the run command.
func (a *App) NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input.csv> [output.csv]",
		Short: "Deduplicate an export and resolve conflicts",
		Long: `Run reads the export, resolves every duplicate name with the active
policy, and writes the surviving rows in first-seen order.

Use "-" as the input to read from stdin (automatic policy only) and omit
the output, or use "-", to write to stdout. An output file is only
replaced once the whole run has succeeded.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDedupe(cmd.Context(), args[0], optionalArg(args, 1))
		},
	}
	a.addInputFlags(cmd)
	a.addRunFlags(cmd)
	a.addDiagnosticsFlags(cmd)
	return cmd
}

// runDedupe processes input and writes the result to outputPath.
func (a *App) runDedupe(ctx context.Context, input, outputPath string) error {
	cfg := a.config

	ctx = logging.WithLogger(ctx, a.logger)
	ctx = logging.WithRunID(ctx, "")
	ctx = logging.WithFile(ctx, input)

	policy, err := a.selectPolicy(input)
	if err != nil {
		return err
	}
	ctx = logging.WithPolicy(ctx, policy.String())
	log := logging.Ctx(ctx)
	log.Debug().Str("output", outputPath).Msg("Starting run")

	reader, closeInput, err := a.openReader(input, cfg.RequiredColumns)
	if err != nil {
		return err
	}
	defer closeInput()

	idx := index.New()

	var surface prompt.Surface
	if policy == resolver.PolicyInteractive {
		rl, err := prompt.NewReadline(prompt.Config{
			Stdin:   readCloser(a.stdin),
			Stdout:  a.stderr,
			NoColor: cfg.NoColor,
		})
		if err != nil {
			return errors.WrapPrompt("", err)
		}
		defer func() { _ = rl.Close() }()
		surface = rl
	}

	prefer, err := resolver.ParsePrefer(cfg.Prefer)
	if err != nil {
		return err
	}
	res, err := resolver.New(policy, reader.Schema(), surface, idx,
		resolver.WithKeyColumn(cfg.KeyColumn),
		resolver.WithSignificantFields(cfg.SignificantFields...),
		resolver.WithPrefer(prefer),
	)
	if err != nil {
		return withFile(err, input)
	}

	diagnostics, err := a.diagnosticsWriter()
	if err != nil {
		return err
	}

	engine, err := dedupe.New(reader.Schema(),
		dedupe.WithResolver(res),
		dedupe.WithIndex(idx),
		dedupe.WithReporter(diagnostics),
		dedupe.WithKeyColumn(cfg.KeyColumn),
	)
	if err != nil {
		return err
	}

	dst, err := a.openOutput(outputPath)
	if err != nil {
		return err
	}
	comma, _ := cfg.CommaRune()
	writer := csvcodec.NewWriter(dst, dst.name, comma)

	result, err := engine.Run(ctx, reader, writer)
	if err == nil {
		err = writer.Flush()
	}
	if err != nil {
		dst.abort()
		return err
	}
	if err := dst.commit(); err != nil {
		return err
	}

	log.Info().Str("output", dst.name).Int("written", result.Stats.Written).Msg("Wrote output")
	if dst.file {
		notice := alerts.NewSuccess(fmt.Sprintf("wrote %d records to %s", result.Stats.Written, dst.name))
		if err := diagnostics.WriteAlert(notice); err != nil {
			return err
		}
	}

	format, err := output.ParseFormat(cfg.Summary)
	if err != nil {
		return err
	}
	if format != output.FormatNone && format != "" {
		return output.FormatSummary(a.stderr, format, result.Summary())
	}
	return nil
}

// selectPolicy resolves the auto policy against the terminal state.
func (a *App) selectPolicy(input string) (resolver.Policy, error) {
	policy, err := resolver.ParsePolicy(a.config.Policy)
	if err != nil {
		return "", err
	}
	switch policy {
	case resolver.PolicyAuto:
		if input != stdStream && prompt.IsInteractive(a.stdinFile()) {
			return resolver.PolicyInteractive, nil
		}
		return resolver.PolicyAutomatic, nil
	case resolver.PolicyInteractive:
		if input == stdStream {
			return "", errors.NewConfigError("policy", "interactive policy cannot read the input from stdin", errors.ErrPromptUnavailable)
		}
	}
	return policy, nil
}

// openReader opens input and validates its header.
func (a *App) openReader(input string, required []string) (*csvcodec.Reader, func(), error) {
	var (
		src     io.Reader
		name    = input
		closeFn = func() {}
	)
	if input == stdStream {
		src, name = a.stdin, "<stdin>"
	} else {
		f, err := csvcodec.Open(input)
		if err != nil {
			return nil, nil, err
		}
		src = f
		closeFn = func() { _ = f.Close() }
	}

	comma, err := a.config.CommaRune()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	reader, err := csvcodec.NewReader(src, name,
		csvcodec.WithComma(comma),
		csvcodec.WithLazyQuotes(a.config.LazyQuotes),
		csvcodec.WithRequired(required...),
	)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return reader, closeFn, nil
}

func (a *App) diagnosticsWriter() (*alerts.FormatWriter, error) {
	format, err := alerts.ParseFormat(a.config.DiagnosticsFormat)
	if err != nil {
		return nil, err
	}
	w := alerts.NewFormatWriter(a.stderr, format)
	c := w.Config()
	c.ShowDetails = a.config.ShowRows
	c.RowDelimiter = a.config.RowDelimiter
	if a.config.NoColor {
		c.UseColor = false
	}
	return w.WithConfig(c), nil
}

// destination is where the canonical output goes: stdout, or a file that
// only appears once committed.
type destination struct {
	io.Writer
	name   string
	file   bool
	commit func() error
	abort  func()
}

func (a *App) openOutput(path string) (*destination, error) {
	if path == "" || path == stdStream {
		return &destination{
			Writer: a.stdout,
			name:   "<stdout>",
			commit: func() error { return nil },
			abort:  func() {},
		}, nil
	}
	f, err := csvcodec.Create(path)
	if err != nil {
		return nil, err
	}
	return &destination{Writer: f, name: path, file: true, commit: f.Commit, abort: f.Abort}, nil
}

// withFile adds the input name to schema errors raised outside the reader.
func withFile(err error, file string) error {
	var se *errors.SchemaError
	if errors.As(err, &se) && se.File == "" {
		return errors.NewSchemaError(file, se.Missing)
	}
	return err
}

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

// keepOpen keeps the file descriptor visible for terminal detection.
type keepOpen struct{ *os.File }

func (keepOpen) Close() error { return nil }

// readCloser leaves the process stdin open when the prompt closes.
func readCloser(r io.Reader) io.ReadCloser {
	if f, ok := r.(*os.File); ok {
		return keepOpen{f}
	}
	return nopCloser{r}
}
