package resolver

import (
	"context"

	"github.com/agentstation/dedupe/pkg/records"
)

// Automatic resolves duplicates without human input. Records whose
// significant fields (url, username and password by default) agree are
// treated as identical even when cosmetic fields differ. Any other
// difference is irreconcilable: the canonical record stays and the incoming
// one is reported and discarded, unless PreferIncoming is set.
type Automatic struct {
	key         int
	significant []int
	prefer      Prefer
}

// NewAutomatic creates the automatic policy for schema.
func NewAutomatic(schema *records.Schema, opts ...Option) (*Automatic, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	key, err := keyPosition(schema, o)
	if err != nil {
		return nil, err
	}
	if err := schema.Require("", o.significant...); err != nil {
		return nil, err
	}

	significant := make([]int, 0, len(o.significant))
	for _, pos := range schema.Positions(o.significant...) {
		if pos != key {
			significant = append(significant, pos)
		}
	}

	return &Automatic{
		key:         key,
		significant: significant,
		prefer:      o.prefer,
	}, nil
}

// Policy implements Resolver.
func (a *Automatic) Policy() Policy {
	return PolicyAutomatic
}

// Classify implements Resolver. Only significant fields are compared.
func (a *Automatic) Classify(incoming, existing records.Record) Comparison {
	return Compare(incoming, existing, a.significant)
}

// Resolve implements Resolver.
func (a *Automatic) Resolve(_ context.Context, c Conflict) (Outcome, error) {
	if c.Comparison.Classification == Identical {
		return Keep(), nil
	}
	if a.prefer == PreferIncoming {
		return Replaced(c.Incoming), nil
	}
	return Keep(), nil
}
