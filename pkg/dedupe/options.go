package dedupe

import (
	"github.com/agentstation/dedupe/pkg/constants"
	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/index"
	"github.com/agentstation/dedupe/pkg/resolver"
)

// options configures an engine.
type options struct {
	keyColumn string
	resolver  resolver.Resolver
	index     *index.Index
	reporter  Reporter
}

func defaultOptions() *options {
	return &options{
		keyColumn: constants.DefaultKeyColumn,
		reporter:  Discard,
	}
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns engine options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithKeyColumn sets the column holding the logical key.
func WithKeyColumn(name string) Option {
	return func(o *options) error {
		if name == "" {
			return &errors.ValidationError{
				Field:   "key_column",
				Message: "cannot be empty",
			}
		}
		o.keyColumn = name
		return nil
	}
}

// WithResolver sets the conflict resolver. It is required.
func WithResolver(r resolver.Resolver) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{
				Field:   "resolver",
				Message: "cannot be nil",
			}
		}
		o.resolver = r
		return nil
	}
}

// WithIndex makes the engine use idx. The interactive resolver needs to see
// the same index to suggest split keys, so callers that build one pass it
// to both.
func WithIndex(idx *index.Index) Option {
	return func(o *options) error {
		if idx == nil {
			return &errors.ValidationError{
				Field:   "index",
				Message: "cannot be nil",
			}
		}
		o.index = idx
		return nil
	}
}

// WithReporter sets where duplicate diagnostics go.
func WithReporter(r Reporter) Option {
	return func(o *options) error {
		if r == nil {
			r = Discard
		}
		o.reporter = r
		return nil
	}
}
