// Package dedupe is the streaming deduplication engine. It reads records
// one at a time, keeps the canonical record for every logical key in an
// index, hands each duplicate to a resolver, and applies the outcome
// before reading the next record.
//
// Output is produced in batch: the surviving records are emitted in
// first-insertion order once the whole input has been consumed.
package dedupe

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/index"
	"github.com/agentstation/dedupe/pkg/logging"
	"github.com/agentstation/dedupe/pkg/records"
	"github.com/agentstation/dedupe/pkg/resolver"
)

// Source yields records in input order. Next returns io.EOF after the last
// record.
type Source interface {
	Schema() *records.Schema
	Next() (records.Record, error)
}

// Sink receives the surviving records.
type Sink interface {
	Write(r records.Record) error
}

// HeaderSink is a Sink that also takes the column header. Run writes the
// header before the first record, and only once processing has succeeded.
type HeaderSink interface {
	Sink
	WriteHeader(schema *records.Schema) error
}

// Engine applies one resolver to one input stream. An Engine is single-use
// and not safe for concurrent use.
type Engine struct {
	schema   *records.Schema
	key      int
	resolver resolver.Resolver
	index    *index.Index
	reporter Reporter
	stats    Stats
}

// New creates an engine for schema.
func New(schema *records.Schema, opts ...Option) (*Engine, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.resolver == nil {
		return nil, &errors.ValidationError{
			Field:   "resolver",
			Message: "is required",
		}
	}
	if schema == nil {
		return nil, &errors.ValidationError{
			Field:   "schema",
			Message: "is required",
		}
	}

	key, ok := schema.ColumnIndex(options.keyColumn)
	if !ok {
		return nil, errors.NewSchemaError("", []string{options.keyColumn})
	}

	idx := options.index
	if idx == nil {
		idx = index.New()
	}

	return &Engine{
		schema:   schema,
		key:      key,
		resolver: options.resolver,
		index:    idx,
		reporter: options.reporter,
	}, nil
}

// Run processes src to the end and writes the surviving records to dst.
// Nothing is written to dst when processing fails.
func (e *Engine) Run(ctx context.Context, src Source, dst Sink) (*Result, error) {
	start := time.Now()
	if err := e.Process(ctx, src); err != nil {
		return nil, err
	}

	if hs, ok := dst.(HeaderSink); ok {
		if err := hs.WriteHeader(e.schema); err != nil {
			return nil, err
		}
	}

	out := e.index.Emit()
	for _, r := range out {
		if err := dst.Write(r); err != nil {
			return nil, err
		}
		e.stats.Written++
	}

	end := time.Now()
	result := &Result{
		Records:   out,
		Stats:     e.Stats(),
		Policy:    e.resolver.Policy(),
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}

	logging.Ctx(ctx).Info().
		Int("read", result.Stats.Read).
		Int("written", result.Stats.Written).
		Int("conflicts", result.Stats.Conflicts).
		Dur("duration", result.Duration).
		Msg("Deduplication complete")

	return result, nil
}

// Process consumes src record by record. The next record is not read until
// the previous one has been fully applied to the index.
func (e *Engine) Process(ctx context.Context, src Source) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}

		r, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		e.stats.Read++

		key := r.Value(e.key)
		if key == "" {
			e.index.Append(r)
			e.stats.PassThrough++
			continue
		}

		if err := e.Add(ctx, key, r); err != nil {
			return err
		}
	}
}

// Add offers r to the index under key. A miss establishes key; a hit is
// classified, reported, and resolved.
func (e *Engine) Add(ctx context.Context, key string, r records.Record) error {
	existing, ok := e.index.Lookup(key)
	if !ok {
		e.index.Insert(key, r)
		e.stats.FirstSeen++
		return nil
	}

	c := resolver.Conflict{
		Key:        key,
		Incoming:   r,
		Existing:   existing,
		Comparison: e.resolver.Classify(r, existing),
	}
	if err := e.report(c); err != nil {
		return err
	}

	out, err := e.resolver.Resolve(ctx, c)
	if err != nil {
		return err
	}
	return e.apply(ctx, c, out)
}

func (e *Engine) report(c resolver.Conflict) error {
	ev := Event{
		Kind:     EventMatch,
		Key:      c.Key,
		Incoming: c.Incoming,
		Existing: c.Existing,
	}
	if c.Comparison.Classification == resolver.Conflicting {
		ev.Kind = EventConflict
		ev.Fields = make([]string, 0, len(c.Comparison.Differing))
		for _, pos := range c.Comparison.Differing {
			ev.Fields = append(ev.Fields, e.schema.Column(pos))
		}
		e.stats.Conflicts++
	} else {
		e.stats.Identical++
	}
	return e.reporter.Report(ev)
}

// apply is the only place that mutates the index for a duplicate.
func (e *Engine) apply(ctx context.Context, c resolver.Conflict, out resolver.Outcome) error {
	log := logging.Ctx(ctx).With().Str("key", c.Key).Str("outcome", out.Kind.String()).Logger()
	log.Debug().Int("line", c.Incoming.Line()).Int("existing_line", c.Existing.Line()).Msg("Applying outcome")

	switch out.Kind {
	case resolver.KeepExisting:
		if c.Comparison.Classification == resolver.Conflicting {
			e.stats.Kept++
		}
	case resolver.Replace:
		e.index.Insert(c.Key, out.Record)
		e.stats.Replaced++
	case resolver.Merge:
		e.index.Insert(c.Key, out.Record)
		e.stats.Merged++
	case resolver.DropBoth:
		e.index.Remove(c.Key)
		e.stats.Dropped++
	case resolver.Split:
		if out.NewKey == "" {
			return &errors.ValidationError{Field: "split", Message: "new key is empty"}
		}
		if out.NewKey == c.Key {
			return &errors.ValidationError{Field: "split", Value: out.NewKey, Message: "new key must differ from the key being split"}
		}
		e.stats.Split++
		// A colliding split key is a fresh duplicate of whatever that key
		// holds now.
		if e.index.Contains(out.NewKey) {
			return e.Add(ctx, out.NewKey, out.Record)
		}
		e.index.Insert(out.NewKey, out.Record)
	default:
		return &errors.ValidationError{Field: "outcome", Value: out.Kind, Message: "unknown outcome"}
	}
	return nil
}

// Records returns the surviving records in first-insertion order.
func (e *Engine) Records() []records.Record {
	return e.index.Emit()
}

// Stats returns the counters collected so far.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.DistinctKeys = e.index.Keys()
	return s
}
