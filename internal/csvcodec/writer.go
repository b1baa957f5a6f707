package csvcodec

import (
	"encoding/csv"
	"io"

	"github.com/agentstation/dedupe/pkg/errors"
	"github.com/agentstation/dedupe/pkg/records"
)

// Writer serialises records as CSV rows.
type Writer struct {
	csv  *csv.Writer
	name string
}

// NewWriter creates a Writer on w. name identifies the stream in errors.
func NewWriter(w io.Writer, name string, comma rune) *Writer {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	return &Writer{csv: cw, name: name}
}

// WriteHeader writes the schema's column names.
func (w *Writer) WriteHeader(schema *records.Schema) error {
	return w.write(schema.Columns())
}

// Write writes one record.
func (w *Writer) Write(r records.Record) error {
	return w.write(r.Fields())
}

func (w *Writer) write(fields []string) error {
	if err := w.csv.Write(fields); err != nil {
		return errors.WrapIO("write", w.name, err)
	}
	return nil
}

// Flush writes any buffered rows and reports the first write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return errors.WrapIO("write", w.name, w.csv.Error())
}
