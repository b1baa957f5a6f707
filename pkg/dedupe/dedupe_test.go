package dedupe_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dedupe/pkg/dedupe"
	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/index"
	"github.com/agentstation/dedupe/pkg/prompt"
	"github.com/agentstation/dedupe/pkg/records"
	"github.com/agentstation/dedupe/pkg/resolver"
)

var header = []string{"name", "url", "username", "password", "extra"}

// sliceSource yields rows as records numbered from line 2.
type sliceSource struct {
	schema *records.Schema
	rows   [][]string
	pos    int
	err    error
}

func newSource(rows ...[]string) *sliceSource {
	return &sliceSource{schema: records.NewSchema(header), rows: rows}
}

func (s *sliceSource) Schema() *records.Schema { return s.schema }

func (s *sliceSource) Next() (records.Record, error) {
	if s.pos >= len(s.rows) {
		if s.err != nil {
			return records.Record{}, s.err
		}
		return records.Record{}, io.EOF
	}
	r := records.New(s.rows[s.pos], s.pos+2)
	s.pos++
	return r, nil
}

type sliceSink struct {
	rows [][]string
}

func (s *sliceSink) Write(r records.Record) error {
	s.rows = append(s.rows, r.Fields())
	return nil
}

func names(rows [][]string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out
}

type harness struct {
	engine   *dedupe.Engine
	recorder *dedupe.Recorder
	sink     *sliceSink
}

func newAutomatic(t *testing.T, opts ...resolver.Option) *harness {
	t.Helper()
	schema := records.NewSchema(header)
	res, err := resolver.NewAutomatic(schema, opts...)
	require.NoError(t, err)
	return newHarness(t, schema, res, nil)
}

func newInteractive(t *testing.T, script *prompt.Script) *harness {
	t.Helper()
	schema := records.NewSchema(header)
	idx := index.New()
	res, err := resolver.NewInteractive(schema, script, idx)
	require.NoError(t, err)
	return newHarness(t, schema, res, idx)
}

func newHarness(t *testing.T, schema *records.Schema, res resolver.Resolver, idx *index.Index) *harness {
	t.Helper()
	rec := &dedupe.Recorder{}
	opts := []dedupe.Option{dedupe.WithResolver(res), dedupe.WithReporter(rec)}
	if idx != nil {
		opts = append(opts, dedupe.WithIndex(idx))
	}
	engine, err := dedupe.New(schema, opts...)
	require.NoError(t, err)
	return &harness{engine: engine, recorder: rec, sink: &sliceSink{}}
}

func (h *harness) run(t *testing.T, rows ...[]string) *dedupe.Result {
	t.Helper()
	result, err := h.engine.Run(context.Background(), newSource(rows...), h.sink)
	require.NoError(t, err)
	return result
}

func TestIdenticalDuplicateKept(t *testing.T) {
	h := newAutomatic(t)
	result := h.run(t,
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x1", ""},
	)

	assert.Equal(t, [][]string{{"Site", "a.com", "bob", "x1", ""}}, h.sink.rows)
	assert.Equal(t, []string{"'Site' at line 3 matches line 2"}, h.recorder.Messages())
	assert.Equal(t, 1, result.Stats.Identical)
	assert.Equal(t, 2, result.Stats.Read)
	assert.Equal(t, 1, result.Stats.Written)
	assert.Equal(t, resolver.PolicyAutomatic, result.Policy)
}

func TestSignificantConflictKeepsExisting(t *testing.T) {
	h := newAutomatic(t)
	result := h.run(t,
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x2", ""},
	)

	assert.Equal(t, [][]string{{"Site", "a.com", "bob", "x1", ""}}, h.sink.rows)
	assert.Equal(t, []string{"'Site' at line 3 is different from record at line 2"}, h.recorder.Messages())
	require.Len(t, h.recorder.Events, 1)
	assert.Equal(t, []string{"password"}, h.recorder.Events[0].Fields)
	assert.Equal(t, 1, result.Stats.Conflicts)
	assert.Equal(t, 1, result.Stats.Kept)
}

func TestCosmeticDifferenceIsIdentical(t *testing.T) {
	h := newAutomatic(t)
	h.run(t,
		[]string{"Site", "a.com", "bob", "x1", "old note"},
		[]string{"Site", "a.com", "bob", "x1", "new note"},
	)

	assert.Equal(t, [][]string{{"Site", "a.com", "bob", "x1", "old note"}}, h.sink.rows)
	assert.Equal(t, []string{"'Site' at line 3 matches line 2"}, h.recorder.Messages())
}

func TestSplitKeepsBothRecords(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceSplit}, Texts: []string{""}}
	h := newInteractive(t, script)
	result := h.run(t,
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "alice", "x2", ""},
	)

	assert.Equal(t, [][]string{
		{"Site", "a.com", "bob", "x1", ""},
		{"Site (2)", "a.com", "bob", "x1", ""},
	}, h.sink.rows)
	assert.Equal(t, 1, result.Stats.Split)
	assert.Equal(t, 2, result.Stats.DistinctKeys)
}

func TestDropBothRestartsKey(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceDropBoth}}
	h := newInteractive(t, script)
	result := h.run(t,
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x2", ""},
		[]string{"Site", "b.com", "eve", "x3", ""},
	)

	assert.Equal(t, [][]string{{"Site", "b.com", "eve", "x3", ""}}, h.sink.rows)
	assert.Len(t, h.recorder.Events, 1, "third row is a first sighting")
	assert.Equal(t, 1, result.Stats.Dropped)
	assert.Equal(t, 2, result.Stats.FirstSeen)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 4, result.Records[0].Line())
}

func TestInteractiveMerge(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceMerge, 1, 0}}
	h := newInteractive(t, script)
	result := h.run(t,
		[]string{"Site", "a.com", "bob", "x1", "n1"},
		[]string{"Site", "a.com", "bob", "x2", "n2"},
	)

	assert.Equal(t, [][]string{{"Site", "a.com", "bob", "x2", "n1"}}, h.sink.rows)
	assert.Equal(t, 2, result.Records[0].Line())
	assert.Equal(t, 1, result.Stats.Merged)
	assert.Equal(t, []string{"password", "extra"}, h.recorder.Events[0].Fields)
}

func TestIdenticalNeverPrompts(t *testing.T) {
	script := &prompt.Script{}
	h := newInteractive(t, script)
	h.run(t,
		[]string{"Site", "a.com", "bob", "x1", "n"},
		[]string{"Site", "a.com", "bob", "x1", "n"},
	)
	assert.Empty(t, script.Asked)
	assert.Len(t, h.sink.rows, 1)
}

func TestOrderPreservation(t *testing.T) {
	h := newAutomatic(t, resolver.WithPrefer(resolver.PreferIncoming))
	h.run(t,
		[]string{"A", "a.com", "u", "1", ""},
		[]string{"B", "b.com", "u", "1", ""},
		[]string{"A", "a.com", "u", "2", ""},
		[]string{"C", "c.com", "u", "1", ""},
		[]string{"A", "a.com", "u", "3", ""},
	)

	assert.Equal(t, []string{"A", "B", "C"}, names(h.sink.rows))
	assert.Equal(t, "3", h.sink.rows[0][3], "latest replacement wins, position stays")
}

func TestIndexUniqueness(t *testing.T) {
	h := newAutomatic(t, resolver.WithPrefer(resolver.PreferIncoming))
	var rows [][]string
	for i := 0; i < 50; i++ {
		rows = append(rows, []string{string(rune('a' + i%7)), "u", "n", string(rune('0' + i%3)), ""})
	}
	h.run(t, rows...)

	seen := map[string]bool{}
	for _, name := range names(h.sink.rows) {
		assert.False(t, seen[name], "duplicate key %q in output", name)
		seen[name] = true
	}
	assert.Len(t, seen, 7)
}

func TestEmptyKeyPassesThrough(t *testing.T) {
	h := newAutomatic(t)
	result := h.run(t,
		[]string{"A", "a.com", "u", "1", ""},
		[]string{"", "x.com", "u", "1", ""},
		[]string{"", "x.com", "u", "1", ""},
		[]string{"B", "b.com", "u", "1", ""},
	)

	assert.Equal(t, []string{"A", "", "", "B"}, names(h.sink.rows))
	assert.Empty(t, h.recorder.Events)
	assert.Equal(t, 2, result.Stats.PassThrough)
}

func TestSplitCollisionRecurses(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceSplit}, Texts: []string{"Site (2)"}}
	h := newInteractive(t, script)
	h.run(t,
		[]string{"Site (2)", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x2", ""},
	)

	assert.Equal(t, []string{
		"'Site' at line 4 is different from record at line 3",
		"'Site (2)' at line 3 matches line 2",
	}, h.recorder.Messages())
	assert.Equal(t, []string{"Site (2)", "Site"}, names(h.sink.rows))
	assert.Equal(t, "x1", h.sink.rows[1][3])
}

func TestSplitCollisionWithConflictingRecord(t *testing.T) {
	script := &prompt.Script{
		Choices: []int{resolver.ChoiceSplit, resolver.ChoiceDropBoth},
		Texts:   []string{"Site (2)"},
	}
	h := newInteractive(t, script)
	result := h.run(t,
		[]string{"Site (2)", "a.com", "bob", "x9", ""},
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x2", ""},
	)

	assert.Equal(t, []string{
		"'Site' at line 4 is different from record at line 3",
		"'Site (2)' at line 3 is different from record at line 2",
	}, h.recorder.Messages())
	require.Len(t, script.Asked, 3, "the sibling key gets its own menu")
	assert.Contains(t, script.Asked[2], "'Site (2)' at line 3 differs from line 2")

	assert.Equal(t, [][]string{{"Site", "a.com", "bob", "x1", ""}}, h.sink.rows)
	assert.Equal(t, 1, result.Stats.Split)
	assert.Equal(t, 1, result.Stats.Dropped)
	assert.Equal(t, 2, result.Stats.Conflicts)
}

// splitOnto splits every conflict onto a fixed key.
type splitOnto string

func (splitOnto) Policy() resolver.Policy { return resolver.PolicyInteractive }

func (splitOnto) Classify(incoming, existing records.Record) resolver.Comparison {
	return resolver.Compare(incoming, existing, []int{1, 2, 3, 4})
}

func (k splitOnto) Resolve(_ context.Context, c resolver.Conflict) (resolver.Outcome, error) {
	return resolver.SplitInto(string(k), c.Existing.With(0, string(k))), nil
}

func TestSplitOntoSameKeyRejected(t *testing.T) {
	h := newHarness(t, records.NewSchema(header), splitOnto("Site"), nil)
	_, err := h.engine.Run(context.Background(), newSource(
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x2", ""},
	), h.sink)

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Len(t, h.recorder.Events, 1, "no self-comparison is reported")
	assert.Empty(t, h.sink.rows)
}

func TestPromptAbortFailsRun(t *testing.T) {
	h := newInteractive(t, &prompt.Script{})
	_, err := h.engine.Run(context.Background(), newSource(
		[]string{"Site", "a.com", "bob", "x1", ""},
		[]string{"Site", "a.com", "bob", "x2", ""},
	), h.sink)

	require.Error(t, err)
	assert.True(t, errors.IsPromptAborted(err))
	assert.Empty(t, h.sink.rows, "nothing is written on failure")
}

func TestSourceErrorFailsRun(t *testing.T) {
	h := newAutomatic(t)
	src := newSource([]string{"Site", "a.com", "bob", "x1", ""})
	src.err = errors.WrapParse("csv", "in.csv", 3, errors.New("wrong number of fields"))

	_, err := h.engine.Run(context.Background(), src, h.sink)
	require.Error(t, err)
	assert.True(t, errors.IsMalformed(err))
	assert.Empty(t, h.sink.rows)
}

func TestCanceledContext(t *testing.T) {
	h := newAutomatic(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.engine.Run(ctx, newSource([]string{"Site", "a.com", "bob", "x1", ""}), h.sink)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestNewValidation(t *testing.T) {
	schema := records.NewSchema(header)

	_, err := dedupe.New(schema)
	assert.True(t, errors.IsValidationError(err), "resolver is required")

	res, err := resolver.NewAutomatic(schema)
	require.NoError(t, err)

	_, err = dedupe.New(schema, dedupe.WithResolver(res), dedupe.WithKeyColumn("title"))
	var se *errors.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"title"}, se.Missing)

	_, err = dedupe.New(schema, dedupe.WithResolver(res), dedupe.WithKeyColumn(""))
	assert.Error(t, err)
}

func TestResultSummary(t *testing.T) {
	h := newAutomatic(t)
	result := h.run(t, []string{"Site", "a.com", "bob", "x1", ""})

	s := result.Summary()
	assert.Equal(t, "automatic", s.Policy)
	assert.Equal(t, 1, s.Read)
	assert.Equal(t, 1, s.Written)
}

func TestScan(t *testing.T) {
	groups, err := dedupe.Scan(context.Background(), newSource(
		[]string{"A", "", "", "", ""},
		[]string{"B", "", "", "", ""},
		[]string{"A", "", "", "", ""},
		[]string{"", "", "", "", ""},
		[]string{"", "", "", "", ""},
		[]string{"B", "", "", "", ""},
		[]string{"C", "", "", "", ""},
		[]string{"A", "", "", "", ""},
	), "name")
	require.NoError(t, err)

	assert.Equal(t, []dedupe.Group{
		{Key: "A", Lines: []int{2, 4, 9}},
		{Key: "B", Lines: []int{3, 7}},
	}, groups)
	assert.Equal(t, 3, groups[0].Count())

	_, err = dedupe.Scan(context.Background(), newSource(), "title")
	assert.True(t, errors.IsValidationError(err))
}

type headerSink struct {
	sliceSink
	header []string
}

func (s *headerSink) WriteHeader(schema *records.Schema) error {
	s.header = schema.Columns()
	return nil
}

func TestRunWritesHeaderFirst(t *testing.T) {
	schema := records.NewSchema(header)
	res, err := resolver.NewAutomatic(schema)
	require.NoError(t, err)
	engine, err := dedupe.New(schema, dedupe.WithResolver(res))
	require.NoError(t, err)

	sink := &headerSink{}
	_, err = engine.Run(context.Background(), newSource(), sink)
	require.NoError(t, err)
	assert.Equal(t, header, sink.header, "header is written for empty input")
	assert.Empty(t, sink.rows)
}
