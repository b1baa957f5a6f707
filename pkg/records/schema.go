// Package records defines the field schema and the immutable record values
// that flow from the tabular codec through the deduplication engine.
package records

import (
	"github.com/agentstation/dedupe/pkg/errors"
)

// Schema is the ordered sequence of column names taken from the input
// header. Column order defines the position of every field in a Record.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a schema from header cells. When a column name repeats,
// lookups resolve to its first occurrence.
func NewSchema(columns []string) *Schema {
	s := &Schema{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range s.columns {
		if _, dup := s.index[c]; !dup {
			s.index[c] = i
		}
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Columns returns a copy of the column names in order.
func (s *Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Column returns the name of the column at position i.
func (s *Schema) Column(i int) string {
	if i < 0 || i >= len(s.columns) {
		return ""
	}
	return s.columns[i]
}

// ColumnIndex returns the position of the named column.
func (s *Schema) ColumnIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Missing returns the required names that are not columns of the schema,
// in the order they were given.
func (s *Schema) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := s.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Require fails with a SchemaError naming every absent required column.
func (s *Schema) Require(file string, required ...string) error {
	if missing := s.Missing(required...); len(missing) > 0 {
		return errors.NewSchemaError(file, missing)
	}
	return nil
}

// Positions resolves column names to positions, skipping unknown names.
func (s *Schema) Positions(names ...string) []int {
	positions := make([]int, 0, len(names))
	for _, name := range names {
		if i, ok := s.index[name]; ok {
			positions = append(positions, i)
		}
	}
	return positions
}
