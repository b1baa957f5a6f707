// Package csvcodec reads and writes password-manager CSV exports.
//
// The reader normalises the header, validates required columns before any
// row is read, and reports every row with the 1-based physical line on
// which it starts (the header is line 1). Rows whose field count differs
// from the header are fatal.
package csvcodec

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/records"
)

const format = "csv"

const bom = "\uFEFF"

// Reader yields records from a CSV stream with a header row.
type Reader struct {
	csv    *csv.Reader
	name   string
	schema *records.Schema
}

type readerOptions struct {
	comma      rune
	lazyQuotes bool
	required   []string
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

// WithComma sets the field delimiter.
func WithComma(r rune) ReaderOption {
	return func(o *readerOptions) {
		if r != 0 {
			o.comma = r
		}
	}
}

// WithLazyQuotes tolerates bare quotes inside unquoted fields.
func WithLazyQuotes(lazy bool) ReaderOption {
	return func(o *readerOptions) {
		o.lazyQuotes = lazy
	}
}

// WithRequired sets the columns the header must contain.
func WithRequired(columns ...string) ReaderOption {
	return func(o *readerOptions) {
		o.required = append([]string(nil), columns...)
	}
}

// NewReader reads and validates the header of r. name identifies the
// stream in error messages.
func NewReader(r io.Reader, name string, opts ...ReaderOption) (*Reader, error) {
	o := &readerOptions{comma: ','}
	for _, opt := range opts {
		opt(o)
	}

	cr := csv.NewReader(r)
	cr.Comma = o.comma
	cr.LazyQuotes = o.lazyQuotes
	// Zero pins the field count to the header's.
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.WrapParse(format, name, 1, errors.New("missing header row"))
	}
	if err != nil {
		return nil, wrapCSV(name, err)
	}

	schema := records.NewSchema(normalizeHeader(header))
	if err := schema.Require(name, o.required...); err != nil {
		return nil, err
	}

	return &Reader{csv: cr, name: name, schema: schema}, nil
}

// Schema returns the normalised header.
func (r *Reader) Schema() *records.Schema {
	return r.schema
}

// Next returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Next() (records.Record, error) {
	fields, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return records.Record{}, io.EOF
	}
	if err != nil {
		return records.Record{}, wrapCSV(r.name, err)
	}
	line, _ := r.csv.FieldPos(0)
	return records.New(fields, line), nil
}

// normalizeHeader strips a UTF-8 byte order mark and surrounding spaces.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func wrapCSV(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return errors.WrapParse(format, name, pe.StartLine, pe.Err)
	}
	return errors.WrapIO("read", name, err)
}
