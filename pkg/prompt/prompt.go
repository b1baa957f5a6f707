// Package prompt provides the interactive surface used to resolve
// conflicting records: a numbered menu of choices and a free-text question
// with a pre-filled default.
//
// The engine only depends on the Surface interface. Readline implements it
// on a terminal; Script replays canned answers in tests.
package prompt

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/dedupe/pkg/errors"
)

// Surface presents questions to a human.
type Surface interface {
	// Choose shows options and returns the index of the selected one.
	Choose(question string, options []string) (int, error)

	// Text asks for a free-text answer, offering initial as the default.
	Text(question, initial string) (string, error)
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Unavailable is a Surface for runs without a terminal. Every question fails
// with ErrPromptUnavailable.
type Unavailable struct{}

// Choose implements Surface.
func (Unavailable) Choose(question string, _ []string) (int, error) {
	return 0, errors.WrapPrompt(question, errors.ErrPromptUnavailable)
}

// Text implements Surface.
func (Unavailable) Text(question, _ string) (string, error) {
	return "", errors.WrapPrompt(question, errors.ErrPromptUnavailable)
}
