package records

import "strings"

// Record is an ordered sequence of field values aligned with a Schema plus
// the 1-based input line it came from. Records are values: every change
// produces a new Record and the backing slice is never shared.
type Record struct {
	fields []string
	line   int
}

// New copies fields into a new Record read at line.
func New(fields []string, line int) Record {
	return Record{
		fields: append([]string(nil), fields...),
		line:   line,
	}
}

// Line returns the source line number (provenance).
func (r Record) Line() int {
	return r.line
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Field returns the value at position i; ok is false when i is out of range.
func (r Record) Field(i int) (value string, ok bool) {
	if i < 0 || i >= len(r.fields) {
		return "", false
	}
	return r.fields[i], true
}

// Value returns the value at position i, or "" when absent.
func (r Record) Value(i int) string {
	v, _ := r.Field(i)
	return v
}

// Fields returns a copy of the field values.
func (r Record) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Join renders the raw field sequence with sep, as shown in diagnostics.
func (r Record) Join(sep string) string {
	return strings.Join(r.fields, sep)
}

// With returns a copy of r whose field i is replaced by value.
func (r Record) With(i int, value string) Record {
	return NewBuilder(r).Set(i, value).Build()
}

// Builder assembles a new Record starting from an existing one. The source
// record is never modified.
type Builder struct {
	fields []string
	line   int
}

// NewBuilder starts a builder from a copy of base.
func NewBuilder(base Record) *Builder {
	return &Builder{
		fields: base.Fields(),
		line:   base.line,
	}
}

// Set replaces the value at position i. Out of range positions are ignored.
func (b *Builder) Set(i int, value string) *Builder {
	if i >= 0 && i < len(b.fields) {
		b.fields[i] = value
	}
	return b
}

// Line overrides the provenance line of the record being built.
func (b *Builder) Line(line int) *Builder {
	b.line = line
	return b
}

// Build returns the assembled Record. The builder may keep being used; later
// calls to Set do not affect records already built.
func (b *Builder) Build() Record {
	return New(b.fields, b.line)
}
