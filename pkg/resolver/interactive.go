package resolver

import (
	"context"
	"fmt"

	"github.com/agentstation/dedupe/pkg/constants"
	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/logging"
	"github.com/agentstation/dedupe/pkg/prompt"
	"github.com/agentstation/dedupe/pkg/records"
)

// Menu entries shown on the first differing field. The order is part of
// the prompt contract.
const (
	ChoiceMerge = iota
	ChoiceDropBoth
	ChoiceSplit
)

var resolutionMenu = []string{"Merge", "Drop both", "Split"}

// Interactive resolves conflicts by asking a human. Every non-key field is
// compared; the first differing field opens the Merge / Drop both / Split
// menu and, after Merge, each differing field gets its own choice.
type Interactive struct {
	schema  *records.Schema
	key     int
	fields  []int
	surface prompt.Surface
	keys    KeySet
}

// NewInteractive creates the interactive policy for schema.
func NewInteractive(schema *records.Schema, surface prompt.Surface, keys KeySet, opts ...Option) (*Interactive, error) {
	if surface == nil {
		return nil, errors.NewConfigError("resolver", "interactive policy requires a prompt surface", errors.ErrPromptUnavailable)
	}
	if keys == nil {
		return nil, errors.NewConfigError("resolver", "interactive policy requires a key set", nil)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	key, err := keyPosition(schema, o)
	if err != nil {
		return nil, err
	}

	return &Interactive{
		schema:  schema,
		key:     key,
		fields:  nonKeyPositions(schema.Len(), key),
		surface: surface,
		keys:    keys,
	}, nil
}

// Policy implements Resolver.
func (r *Interactive) Policy() Policy {
	return PolicyInteractive
}

// Classify implements Resolver. Every non-key field is compared.
func (r *Interactive) Classify(incoming, existing records.Record) Comparison {
	return Compare(incoming, existing, r.fields)
}

// Resolve implements Resolver.
func (r *Interactive) Resolve(ctx context.Context, c Conflict) (Outcome, error) {
	if c.Comparison.Classification == Identical {
		return Keep(), nil
	}

	first := c.Comparison.First()
	question := fmt.Sprintf("'%s' at line %d differs from line %d in '%s': %s vs %s",
		c.Key, c.Incoming.Line(), c.Existing.Line(), r.schema.Column(first),
		display(c.Incoming.Value(first)), display(c.Existing.Value(first)))

	choice, err := r.surface.Choose(question, resolutionMenu)
	if err != nil {
		return Outcome{}, err
	}

	log := logging.Ctx(ctx)
	switch choice {
	case ChoiceDropBoth:
		log.Debug().Str("key", c.Key).Msg("Dropping both records")
		return Dropped(), nil

	case ChoiceSplit:
		newKey, err := r.splitKey(c.Key)
		if err != nil {
			return Outcome{}, err
		}
		log.Debug().Str("key", c.Key).Str("new_key", newKey).Msg("Splitting record")
		return SplitInto(newKey, c.Existing.With(r.key, newKey)), nil

	case ChoiceMerge:
		merged, err := r.merge(c)
		if err != nil {
			return Outcome{}, err
		}
		log.Debug().Str("key", c.Key).Int("fields", len(c.Comparison.Differing)).Msg("Merged record")
		return Merged(merged), nil

	default:
		return Outcome{}, errors.NewValidationError("choice", choice, "unknown resolution")
	}
}

// splitKey asks for the name of the copy until it differs from key.
func (r *Interactive) splitKey(key string) (string, error) {
	suggested := SuggestKey(key, r.keys)
	question := fmt.Sprintf("New name for the copy of '%s':", key)
	for {
		newKey, err := r.surface.Text(question, suggested)
		if err != nil {
			return "", err
		}
		if newKey == "" {
			newKey = suggested
		}
		if newKey != key {
			return newKey, nil
		}
		question = fmt.Sprintf("'%s' is the name being split; choose another name:", key)
	}
}

// merge asks for every differing field and builds the merged record from a
// copy of the existing one. Agreeing fields are copied unchanged.
func (r *Interactive) merge(c Conflict) (records.Record, error) {
	b := records.NewBuilder(c.Existing)
	for _, pos := range c.Comparison.Differing {
		ex, in := c.Existing.Value(pos), c.Incoming.Value(pos)
		question := fmt.Sprintf("Which '%s' should '%s' keep?", r.schema.Column(pos), c.Key)
		options := []string{
			fmt.Sprintf("%s (line %d)", display(ex), c.Existing.Line()),
			fmt.Sprintf("%s (line %d)", display(in), c.Incoming.Line()),
		}
		choice, err := r.surface.Choose(question, options)
		if err != nil {
			return records.Record{}, err
		}
		if choice == 1 {
			b.Set(pos, in)
		} else {
			b.Set(pos, ex)
		}
	}
	return b.Build(), nil
}

// SuggestKey derives "<key> (n)" with the smallest n, starting at 2, that
// is not a live key.
func SuggestKey(key string, keys KeySet) string {
	for n := constants.SplitSuffixStart; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", key, n)
		if keys == nil || !keys.Contains(candidate) {
			return candidate
		}
	}
}

func display(v string) string {
	if v == "" {
		return "<empty>"
	}
	return fmt.Sprintf("%q", v)
}
