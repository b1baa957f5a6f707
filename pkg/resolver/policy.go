// Package resolver classifies duplicate records and decides how a conflict
// between an incoming record and the canonical record for the same key is
// resolved.
//
// Two policies exist. Automatic compares only the security-relevant fields
// and never asks anything. Interactive compares every non-key field and
// drives a prompt.Surface to merge, drop, or split conflicting records.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/dedupe/pkg/constants"
	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/prompt"
	"github.com/agentstation/dedupe/pkg/records"
)

// Policy names a resolution policy.
type Policy string

// String returns the string representation of a policy.
func (p Policy) String() string {
	return string(p)
}

const (
	// PolicyInteractive asks a human to resolve every conflict.
	PolicyInteractive Policy = "interactive"
	// PolicyAutomatic resolves conflicts by the significant-field rule.
	PolicyAutomatic Policy = "automatic"
	// PolicyAuto picks interactive on a terminal and automatic otherwise.
	PolicyAuto Policy = "auto"
)

// ParsePolicy validates a policy name. The empty string means PolicyAuto.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAuto, nil
	case PolicyInteractive, PolicyAutomatic, PolicyAuto:
		return p, nil
	case "auto-detect":
		return PolicyAuto, nil
	default:
		return "", errors.NewValidationError("policy", s,
			fmt.Sprintf("unknown policy %q: must be one of: interactive, automatic, auto", s))
	}
}

// Prefer selects which record the automatic policy keeps on an
// irreconcilable conflict.
type Prefer string

const (
	// PreferExisting keeps the canonical record (the default).
	PreferExisting Prefer = "existing"
	// PreferIncoming replaces the canonical record with the incoming one.
	PreferIncoming Prefer = "incoming"
)

// ParsePrefer validates a prefer value. The empty string means PreferExisting.
func ParsePrefer(s string) (Prefer, error) {
	switch p := Prefer(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PreferExisting, nil
	case PreferExisting, PreferIncoming:
		return p, nil
	default:
		return "", errors.NewValidationError("prefer", s,
			fmt.Sprintf("unknown value %q: must be existing or incoming", s))
	}
}

// Resolver classifies and resolves duplicates for one schema.
type Resolver interface {
	// Policy returns the policy implemented.
	Policy() Policy

	// Classify compares incoming with existing over the policy's fields.
	Classify(incoming, existing records.Record) Comparison

	// Resolve decides the outcome of a classified conflict.
	Resolve(ctx context.Context, c Conflict) (Outcome, error)
}

// KeySet reports which keys are live. The index implements it.
type KeySet interface {
	Contains(key string) bool
}

// Option configures a resolver.
type Option func(*options)

type options struct {
	keyColumn   string
	significant []string
	prefer      Prefer
}

func defaultOptions() *options {
	return &options{
		keyColumn:   constants.DefaultKeyColumn,
		significant: constants.DefaultSignificantFields(),
		prefer:      PreferExisting,
	}
}

// WithKeyColumn sets the column used as the logical key.
func WithKeyColumn(name string) Option {
	return func(o *options) {
		if name != "" {
			o.keyColumn = name
		}
	}
}

// WithSignificantFields sets the columns compared by the automatic policy.
func WithSignificantFields(names ...string) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.significant = append([]string(nil), names...)
		}
	}
}

// WithPrefer sets which record the automatic policy keeps on conflict.
func WithPrefer(p Prefer) Option {
	return func(o *options) {
		if p != "" {
			o.prefer = p
		}
	}
}

// New creates the resolver for policy. PolicyAuto must be resolved by the
// caller before calling New. surface and keys are only used by the
// interactive policy.
func New(policy Policy, schema *records.Schema, surface prompt.Surface, keys KeySet, opts ...Option) (Resolver, error) {
	switch policy {
	case PolicyAutomatic:
		return NewAutomatic(schema, opts...)
	case PolicyInteractive:
		return NewInteractive(schema, surface, keys, opts...)
	default:
		return nil, errors.NewConfigError("resolver", fmt.Sprintf("policy %q cannot be instantiated", policy), nil)
	}
}

// keyPosition resolves the key column against schema.
func keyPosition(schema *records.Schema, o *options) (int, error) {
	if schema == nil {
		return 0, errors.NewConfigError("resolver", "schema is required", nil)
	}
	pos, ok := schema.ColumnIndex(o.keyColumn)
	if !ok {
		return 0, errors.NewSchemaError("", []string{o.keyColumn})
	}
	return pos, nil
}
