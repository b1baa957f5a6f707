package prompt

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/agentstation/dedupe/pkg/errors"
)

// Config holds Readline configuration
type Config struct {
	// Stdin is the input stream; defaults to os.Stdin.
	Stdin io.ReadCloser

	// Stdout receives menus and prompts; defaults to os.Stderr so that the
	// deduplicated output on stdout stays clean.
	Stdout io.Writer

	// NoColor disables colored menus.
	NoColor bool
}

// Readline is a Surface backed by github.com/chzyer/readline.
type Readline struct {
	rl       *readline.Instance
	out      io.Writer
	terminal bool

	cyan   func(a ...any) string
	bold   func(a ...any) string
	yellow func(a ...any) string
}

// NewReadline creates a terminal prompt surface.
func NewReadline(cfg Config) (*Readline, error) {
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stderr
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		Stdin:                  cfg.Stdin,
		Stdout:                 cfg.Stdout,
		Stderr:                 cfg.Stdout,
		InterruptPrompt:        "^C",
		EOFPrompt:              "",
		DisableAutoSaveHistory: true,
		FuncIsTerminal:         func() bool { return isTerminal(cfg.Stdin) },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	p := &Readline{rl: rl, out: cfg.Stdout, terminal: isTerminal(cfg.Stdin)}
	p.cyan = sprint(cfg.NoColor, color.FgCyan)
	p.bold = sprint(cfg.NoColor, color.Bold)
	p.yellow = sprint(cfg.NoColor, color.FgYellow)
	return p, nil
}

// isTerminal reports whether r is backed by a terminal file descriptor.
func isTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func sprint(noColor bool, attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// Close releases the terminal.
func (p *Readline) Close() error {
	return p.rl.Close()
}

// Choose prints a numbered menu and reads until a valid answer is given.
// An answer is either the option number or an unambiguous prefix of the
// option text.
func (p *Readline) Choose(question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.NewValidationError("options", options, "at least one option is required")
	}

	fmt.Fprintf(p.out, "%s\n", p.bold(question))
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %s %s\n", p.cyan(fmt.Sprintf("[%d]", i+1)), opt)
	}

	p.rl.SetPrompt(p.cyan("choice> "))
	for {
		line, err := p.rl.Readline()
		if err != nil {
			return 0, errors.WrapPrompt(question, abortCause(err))
		}
		if i, ok := parseChoice(line, options); ok {
			return i, nil
		}
		fmt.Fprintf(p.out, "%s enter a number between 1 and %d\n", p.yellow("!"), len(options))
	}
}

// Text asks question. On a terminal initial is pre-filled for editing;
// otherwise it is shown in brackets. An empty answer keeps initial.
func (p *Readline) Text(question, initial string) (string, error) {
	var (
		line string
		err  error
	)
	if p.terminal {
		p.rl.SetPrompt(p.bold(question) + " ")
		line, err = p.rl.ReadlineWithDefault(initial)
	} else {
		// Without a terminal readline prints no prompt and would prepend
		// a default buffer to the answer.
		fmt.Fprintf(p.out, "%s [%s]\n", p.bold(question), initial)
		line, err = p.rl.Readline()
	}
	if err != nil {
		return "", errors.WrapPrompt(question, abortCause(err))
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return initial, nil
	}
	return line, nil
}

// abortCause maps readline termination errors onto ErrPromptAborted.
func abortCause(err error) error {
	if err == readline.ErrInterrupt || err == io.EOF {
		return fmt.Errorf("%w: %v", errors.ErrPromptAborted, err)
	}
	return err
}

// parseChoice accepts a 1-based number or a case-insensitive prefix that
// matches exactly one option.
func parseChoice(answer string, options []string) (int, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}

	lower := strings.ToLower(answer)
	match := -1
	for i, opt := range options {
		if strings.HasPrefix(strings.ToLower(opt), lower) {
			if match >= 0 {
				return 0, false
			}
			match = i
		}
	}
	return match, match >= 0
}
