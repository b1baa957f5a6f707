package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/index"
	"github.com/agentstation/dedupe/pkg/prompt"
	"github.com/agentstation/dedupe/pkg/records"
	"github.com/agentstation/dedupe/pkg/resolver"
)

var schema = records.NewSchema([]string{"url", "username", "password", "extra", "name", "grouping"})

func row(line int, name, url, user, pass, extra string) records.Record {
	return records.New([]string{url, user, pass, extra, name, ""}, line)
}

func conflict(r resolver.Resolver, incoming, existing records.Record) resolver.Conflict {
	return resolver.Conflict{
		Key:        existing.Value(4),
		Incoming:   incoming,
		Existing:   existing,
		Comparison: r.Classify(incoming, existing),
	}
}

func TestCompare(t *testing.T) {
	a := records.New([]string{"1", "2", "3"}, 2)
	b := records.New([]string{"1", "x", "y"}, 3)

	cmp := resolver.Compare(a, b, []int{0, 1, 2})
	assert.Equal(t, resolver.Conflicting, cmp.Classification)
	assert.Equal(t, []int{1, 2}, cmp.Differing)
	assert.Equal(t, 1, cmp.First())

	cmp = resolver.Compare(a, b, []int{0})
	assert.Equal(t, resolver.Identical, cmp.Classification)
	assert.Equal(t, -1, cmp.First())
	assert.Equal(t, "identical", cmp.Classification.String())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    resolver.Policy
		wantErr bool
	}{
		{"", resolver.PolicyAuto, false},
		{"Interactive", resolver.PolicyInteractive, false},
		{"automatic", resolver.PolicyAutomatic, false},
		{"auto", resolver.PolicyAuto, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := resolver.ParsePolicy(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrefer(t *testing.T) {
	p, err := resolver.ParsePrefer("")
	require.NoError(t, err)
	assert.Equal(t, resolver.PreferExisting, p)

	p, err = resolver.ParsePrefer("INCOMING")
	require.NoError(t, err)
	assert.Equal(t, resolver.PreferIncoming, p)

	_, err = resolver.ParsePrefer("newest")
	assert.Error(t, err)
}

func TestAutomatic(t *testing.T) {
	auto, err := resolver.NewAutomatic(schema)
	require.NoError(t, err)
	assert.Equal(t, resolver.PolicyAutomatic, auto.Policy())

	existing := row(2, "Site", "a.com", "bob", "x1", "note")

	t.Run("identical", func(t *testing.T) {
		c := conflict(auto, row(3, "Site", "a.com", "bob", "x1", "note"), existing)
		assert.Equal(t, resolver.Identical, c.Comparison.Classification)
		out, err := auto.Resolve(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, resolver.KeepExisting, out.Kind)
	})

	t.Run("password differs is significant", func(t *testing.T) {
		c := conflict(auto, row(3, "Site", "a.com", "bob", "x2", "note"), existing)
		assert.Equal(t, resolver.Conflicting, c.Comparison.Classification)
		out, err := auto.Resolve(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, resolver.KeepExisting, out.Kind, "existing stays canonical")
	})

	t.Run("cosmetic difference is identical", func(t *testing.T) {
		c := conflict(auto, row(3, "Site", "a.com", "bob", "x1", "other note"), existing)
		assert.Equal(t, resolver.Identical, c.Comparison.Classification)
	})
}

func TestAutomaticPreferIncoming(t *testing.T) {
	auto, err := resolver.NewAutomatic(schema, resolver.WithPrefer(resolver.PreferIncoming))
	require.NoError(t, err)

	incoming := row(3, "Site", "a.com", "bob", "x2", "")
	out, err := auto.Resolve(context.Background(), conflict(auto, incoming, row(2, "Site", "a.com", "bob", "x1", "")))
	require.NoError(t, err)
	assert.Equal(t, resolver.Replace, out.Kind)
	assert.Equal(t, incoming.Fields(), out.Record.Fields())
	assert.Equal(t, 3, out.Record.Line())
}

func TestAutomaticMissingSignificantColumn(t *testing.T) {
	_, err := resolver.NewAutomatic(records.NewSchema([]string{"name", "url"}))
	require.Error(t, err)
	var se *errors.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"username", "password"}, se.Missing)
}

func TestCustomKeyAndFields(t *testing.T) {
	s := records.NewSchema([]string{"title", "login", "secret"})
	auto, err := resolver.NewAutomatic(s,
		resolver.WithKeyColumn("title"),
		resolver.WithSignificantFields("login"))
	require.NoError(t, err)

	cmp := auto.Classify(records.New([]string{"A", "u", "p1"}, 2), records.New([]string{"A", "u", "p2"}, 3))
	assert.Equal(t, resolver.Identical, cmp.Classification)

	_, err = resolver.NewAutomatic(s)
	assert.Error(t, err, "default key column is absent")
}

func newInteractive(t *testing.T, surface prompt.Surface, keys resolver.KeySet) *resolver.Interactive {
	t.Helper()
	r, err := resolver.NewInteractive(schema, surface, keys)
	require.NoError(t, err)
	return r
}

func TestInteractiveIdenticalNeverPrompts(t *testing.T) {
	script := &prompt.Script{}
	r := newInteractive(t, script, index.New())

	rec := row(2, "Site", "a.com", "bob", "x1", "n")
	c := conflict(r, row(3, "Site", "a.com", "bob", "x1", "n"), rec)
	out, err := r.Resolve(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, resolver.KeepExisting, out.Kind)
	assert.Empty(t, script.Asked)
}

func TestInteractiveComparesAllFields(t *testing.T) {
	r := newInteractive(t, &prompt.Script{}, index.New())
	cmp := r.Classify(row(3, "Site", "a.com", "bob", "x1", "new note"), row(2, "Site", "a.com", "bob", "x1", "note"))
	assert.Equal(t, resolver.Conflicting, cmp.Classification)
	assert.Equal(t, []int{3}, cmp.Differing)
}

func TestInteractiveDropBoth(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceDropBoth}}
	r := newInteractive(t, script, index.New())

	c := conflict(r, row(3, "Site", "a.com", "bob", "x2", ""), row(2, "Site", "a.com", "bob", "x1", ""))
	out, err := r.Resolve(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, resolver.DropBoth, out.Kind)
	require.Len(t, script.Asked, 1, "no field prompts after drop")
	assert.Equal(t, []string{"Merge", "Drop both", "Split"}, script.Offered[0])
	assert.Contains(t, script.Asked[0], "'Site' at line 3 differs from line 2 in 'password'")
}

func TestInteractiveSplit(t *testing.T) {
	keys := index.New()
	keys.Insert("Site", row(2, "Site", "a.com", "bob", "x1", ""))
	keys.Insert("Site (2)", row(5, "Site (2)", "b.com", "bob", "x1", ""))

	script := &prompt.Script{Choices: []int{resolver.ChoiceSplit}, Texts: []string{""}}
	r := newInteractive(t, script, keys)

	existing := row(2, "Site", "a.com", "bob", "x1", "")
	out, err := r.Resolve(context.Background(), conflict(r, row(7, "Site", "a.com", "alice", "x9", ""), existing))
	require.NoError(t, err)

	assert.Equal(t, resolver.Split, out.Kind)
	assert.Equal(t, "Site (3)", out.NewKey, "suggestion skips live keys")
	assert.Equal(t, []string{"Site (3)"}, script.Defaults)
	assert.Equal(t, "Site (3)", out.Record.Value(4))
	assert.Equal(t, existing.With(4, "Site (3)").Fields(), out.Record.Fields(), "split copies existing except the key")
	assert.Equal(t, "Site", existing.Value(4))
}

func TestInteractiveSplitCustomName(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceSplit}, Texts: []string{"Site (work)"}}
	r := newInteractive(t, script, index.New())

	out, err := r.Resolve(context.Background(), conflict(r, row(3, "Site", "a.com", "eve", "x1", ""), row(2, "Site", "a.com", "bob", "x1", "")))
	require.NoError(t, err)
	assert.Equal(t, "Site (work)", out.NewKey)
}

func TestInteractiveSplitAsksAgainForOriginalKey(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceSplit}, Texts: []string{"Site", "Mine"}}
	r := newInteractive(t, script, index.New())

	out, err := r.Resolve(context.Background(), conflict(r, row(3, "Site", "a.com", "eve", "x1", ""), row(2, "Site", "a.com", "bob", "x1", "")))
	require.NoError(t, err)
	assert.Equal(t, "Mine", out.NewKey)
	require.Len(t, script.Asked, 3)
	assert.Contains(t, script.Asked[2], "choose another name")
	assert.Equal(t, []string{"Site (2)", "Site (2)"}, script.Defaults)
}

func TestInteractiveSplitOriginalKeyUntilAbort(t *testing.T) {
	script := &prompt.Script{Choices: []int{resolver.ChoiceSplit}, Texts: []string{"Site"}}
	r := newInteractive(t, script, index.New())

	_, err := r.Resolve(context.Background(), conflict(r, row(3, "Site", "a.com", "eve", "x1", ""), row(2, "Site", "a.com", "bob", "x1", "")))
	assert.True(t, errors.IsPromptAborted(err))
}

func TestInteractiveMerge(t *testing.T) {
	// Merge, then: username -> incoming, password -> existing.
	script := &prompt.Script{Choices: []int{resolver.ChoiceMerge, 1, 0}}
	r := newInteractive(t, script, index.New())

	existing := row(2, "Site", "a.com", "bob", "x1", "same")
	incoming := row(3, "Site", "a.com", "alice", "x2", "same")
	out, err := r.Resolve(context.Background(), conflict(r, incoming, existing))
	require.NoError(t, err)

	assert.Equal(t, resolver.Merge, out.Kind)
	assert.Equal(t, []string{"a.com", "alice", "x1", "same", "Site", ""}, out.Record.Fields())
	assert.Equal(t, 2, out.Record.Line())

	require.Len(t, script.Asked, 3, "menu plus one prompt per differing field")
	assert.Contains(t, script.Asked[1], "'username'")
	assert.Contains(t, script.Asked[2], "'password'")
	assert.Equal(t, []string{`"bob" (line 2)`, `"alice" (line 3)`}, script.Offered[1])

	assert.Equal(t, []string{"a.com", "bob", "x1", "same", "Site", ""}, existing.Fields(), "existing is not mutated")
}

func TestInteractiveMergeProvenance(t *testing.T) {
	existing := row(2, "Site", "a.com", "bob", "x1", "")
	incoming := row(3, "Site", "b.com", "bob", "x2", "")

	for _, pick := range [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		script := &prompt.Script{Choices: append([]int{resolver.ChoiceMerge}, pick...)}
		r := newInteractive(t, script, index.New())
		c := conflict(r, incoming, existing)
		out, err := r.Resolve(context.Background(), c)
		require.NoError(t, err)

		for i, pos := range c.Comparison.Differing {
			want := existing.Value(pos)
			if pick[i] == 1 {
				want = incoming.Value(pos)
			}
			assert.Equal(t, want, out.Record.Value(pos))
		}
		assert.Equal(t, "bob", out.Record.Value(1), "agreeing fields are copied")
	}
}

func TestInteractivePromptFailure(t *testing.T) {
	r := newInteractive(t, prompt.Unavailable{}, index.New())
	_, err := r.Resolve(context.Background(), conflict(r, row(3, "Site", "a.com", "bob", "x2", ""), row(2, "Site", "a.com", "bob", "x1", "")))
	require.Error(t, err)
	assert.True(t, errors.IsPromptAborted(err))

	script := &prompt.Script{Choices: []int{resolver.ChoiceMerge}}
	r = newInteractive(t, script, index.New())
	_, err = r.Resolve(context.Background(), conflict(r, row(3, "Site", "a.com", "bob", "x2", ""), row(2, "Site", "a.com", "bob", "x1", "")))
	assert.True(t, errors.IsPromptAborted(err), "merge field prompt exhausted")
}

func TestNewRejectsUnresolvedPolicy(t *testing.T) {
	_, err := resolver.New(resolver.PolicyAuto, schema, nil, nil)
	assert.Error(t, err)

	_, err = resolver.NewInteractive(schema, nil, index.New())
	assert.ErrorIs(t, err, errors.ErrPromptUnavailable)

	r, err := resolver.New(resolver.PolicyInteractive, schema, &prompt.Script{}, index.New())
	require.NoError(t, err)
	assert.Equal(t, resolver.PolicyInteractive, r.Policy())
}

func TestSuggestKey(t *testing.T) {
	keys := index.New()
	assert.Equal(t, "Site (2)", resolver.SuggestKey("Site", keys))
	keys.Insert("Site (2)", records.New([]string{"Site (2)"}, 2))
	assert.Equal(t, "Site (3)", resolver.SuggestKey("Site", keys))
	assert.Equal(t, "Site (2)", resolver.SuggestKey("Site", nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "drop-both", resolver.DropBoth.String())
	assert.Equal(t, "split", resolver.Split.String())
	assert.Equal(t, "keep-existing", resolver.KeepExisting.String())
}
