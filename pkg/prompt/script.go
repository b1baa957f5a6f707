package prompt

import (
	"fmt"

	"github.com/agentstation/dedupe/pkg/errors"
)

// Script is a deterministic Surface that replays canned answers in order.
// It records every question it was asked.
type Script struct {
	// Choices are returned by successive Choose calls.
	Choices []int

	// Texts are returned by successive Text calls. An empty string accepts
	// the offered default.
	Texts []string

	// Asked records the questions in the order they were asked.
	Asked []string

	// Offered records the options of every Choose call.
	Offered [][]string

	// Defaults records the initial value of every Text call.
	Defaults []string
}

// Choose implements Surface.
func (s *Script) Choose(question string, options []string) (int, error) {
	s.Asked = append(s.Asked, question)
	s.Offered = append(s.Offered, append([]string(nil), options...))
	if len(s.Choices) == 0 {
		return 0, errors.WrapPrompt(question, fmt.Errorf("%w: script exhausted", errors.ErrPromptAborted))
	}
	c := s.Choices[0]
	s.Choices = s.Choices[1:]
	if c < 0 || c >= len(options) {
		return 0, errors.NewValidationError("choice", c, fmt.Sprintf("out of range for %d options", len(options)))
	}
	return c, nil
}

// Text implements Surface.
func (s *Script) Text(question, initial string) (string, error) {
	s.Asked = append(s.Asked, question)
	s.Defaults = append(s.Defaults, initial)
	if len(s.Texts) == 0 {
		return "", errors.WrapPrompt(question, fmt.Errorf("%w: script exhausted", errors.ErrPromptAborted))
	}
	t := s.Texts[0]
	s.Texts = s.Texts[1:]
	if t == "" {
		return initial, nil
	}
	return t, nil
}
