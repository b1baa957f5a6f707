package dedupe

import (
	"context"
	"fmt"
	"io"

	"github.com/agentstation/dedupe/pkg/errors"
)

// Group lists every source line that carries one logical key.
type Group struct {
	Key   string `json:"key" yaml:"key"`
	Lines []int  `json:"lines" yaml:"lines"`
}

// Count returns how many rows share the key.
func (g Group) Count() int {
	return len(g.Lines)
}

// Scan reads src without resolving anything and returns the keys that
// occur more than once, in order of first appearance. Rows with an empty
// key are ignored.
func Scan(ctx context.Context, src Source, keyColumn string) ([]Group, error) {
	schema := src.Schema()
	if schema == nil {
		return nil, &errors.ValidationError{Field: "schema", Message: "is required"}
	}
	key, ok := schema.ColumnIndex(keyColumn)
	if !ok {
		return nil, errors.NewSchemaError("", []string{keyColumn})
	}

	var order []string
	lines := make(map[string][]int)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}
		r, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		k := r.Value(key)
		if k == "" {
			continue
		}
		if _, seen := lines[k]; !seen {
			order = append(order, k)
		}
		lines[k] = append(lines[k], r.Line())
	}

	groups := make([]Group, 0)
	for _, k := range order {
		if len(lines[k]) > 1 {
			groups = append(groups, Group{Key: k, Lines: lines[k]})
		}
	}
	return groups, nil
}
