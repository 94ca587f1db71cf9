// =============================================================================
// gomarc - Writer Family
// =============================================================================
//
// This file defines the format writers that serialize records to an output
// stream: record-in-CSV, MARC-in-JSON, prettified text, and binary
// transmission format. The MARCXML and XLSX writers live in xml.go and
// xlsx.go.
//
// Every writer is constructed over an io.Writer it does not own, and
// accepts the same option set. With WithHTMLEntities(true), the writer runs
// the entity transcoder over each record before serializing it; the record
// is rewritten in place, which the caller can observe.
//
// Writers whose format needs a trailer (JSON, XML, XLSX) produce valid
// output only after Close. Close never closes the underlying stream.
//
// =============================================================================

package marc

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrWriteNeedsRecord is returned when a nil record is passed to a writer.
var ErrWriteNeedsRecord = errors.New("write needs a record")

// writerOptions holds the configuration shared by all format writers.
type writerOptions struct {
	htmlEntities   bool
	insertionOrder bool
}

// WriterOption configures a format writer.
type WriterOption func(*writerOptions)

// WithHTMLEntities controls whether the writer runs the HTML entity
// transcoder over each record before serializing it. Default false.
//
// The transcoder rewrites the passed record's subfield values and control
// data in place. Writing the same record to two writers that both enable
// this option escapes the text twice; clone the record between writes when
// that matters.
func WithHTMLEntities(enabled bool) WriterOption {
	return func(o *writerOptions) {
		o.htmlEntities = enabled
	}
}

// WithInsertionOrder makes the CSV and XLSX writers emit header columns in
// first-seen order instead of sorted order. Default is sorted.
func WithInsertionOrder() WriterOption {
	return func(o *writerOptions) {
		o.insertionOrder = true
	}
}

func newWriterOptions(opts []WriterOption) writerOptions {
	var o writerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Writer is the common surface of all format writers.
type Writer interface {
	// Write serializes one record.
	Write(rec *Record) error
	// Close finishes the output document. It does not close the
	// underlying stream.
	Close() error
}

// prepare applies the shared pre-serialization steps to a record.
func (o writerOptions) prepare(rec *Record) error {
	if rec == nil {
		return ErrWriteNeedsRecord
	}
	if o.htmlEntities {
		ApplyHTMLEntities(rec)
	}
	return nil
}

// =============================================================================
// CSV WRITER
// =============================================================================

// CSVWriter serializes records as record-in-CSV rows sharing one growing
// column schema.
//
// The header row is emitted on the first Write and is immutable afterwards:
// a tag first seen on a later record is dropped from that row's output with
// a logged warning. WriteAll avoids the loss by pre-scanning the batch for
// the complete schema, and AddTags can pre-declare columns before streaming
// with Write.
type CSVWriter struct {
	cw      *csv.Writer
	opts    writerOptions
	schema  *ColumnSchema
	header  []string
	skipped int
	err     error
}

// NewCSVWriter creates a CSV writer over w.
func NewCSVWriter(w io.Writer, opts ...WriterOption) *CSVWriter {
	return &CSVWriter{
		cw:     csv.NewWriter(w),
		opts:   newWriterOptions(opts),
		schema: NewColumnSchema(),
	}
}

// AddTags pre-declares column names so that streaming writes of records
// carrying those tags are not lossy. Only useful before the first Write.
func (w *CSVWriter) AddTags(tags ...string) {
	for _, tag := range tags {
		w.schema.Add(tag)
	}
}

// Schema exposes the writer's column schema.
func (w *CSVWriter) Schema() *ColumnSchema {
	return w.schema
}

// SkippedTags returns the number of field cells dropped because their
// column was first seen after the header had been emitted.
func (w *CSVWriter) SkippedTags() int {
	return w.skipped
}

// Write serializes one record as a CSV row, emitting the header first if
// this is the first row.
func (w *CSVWriter) Write(rec *Record) error {
	if w.err != nil {
		return w.err
	}
	if err := w.opts.prepare(rec); err != nil {
		return err
	}

	row, dropped := EncodeRecord(rec, w.schema)
	for _, key := range dropped {
		slog.Warn("tag not in finalized csv schema, dropping cell",
			"column", key)
	}
	w.skipped += len(dropped)

	if w.header == nil {
		if w.schema.Len() <= 1 {
			slog.Warn("csv schema has no field columns; call AddTags or WriteAll before Write")
		}
		w.schema.Finalize()
		w.header = append(w.schema.Columns(!w.opts.insertionOrder), FieldOrderColumn)
		if err := w.cw.Write(w.header); err != nil {
			w.err = err
			return err
		}
	}

	cells := make([]string, len(w.header))
	for i, col := range w.header {
		if v, ok := row.Get(col); ok {
			cells[i] = v
		}
	}
	if err := w.cw.Write(cells); err != nil {
		w.err = err
	}
	return w.err
}

// WriteAll serializes a batch of records, inferring the complete column
// schema from the whole batch before the header is emitted.
func (w *CSVWriter) WriteAll(recs []*Record) error {
	if w.header == nil {
		for _, rec := range recs {
			if rec == nil {
				return ErrWriteNeedsRecord
			}
			w.schema.AddRecord(rec)
		}
	}
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows. The underlying stream stays open.
func (w *CSVWriter) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return err
	}
	return w.err
}

// AddRecord registers the column keys a record would occupy, without
// encoding it. Used by batch writes to complete the schema before the
// header is finalized.
func (s *ColumnSchema) AddRecord(rec *Record) {
	occurrences := make(map[string]int)
	for _, field := range rec.Fields() {
		occurrences[field.Tag]++
		key := field.Tag
		if n := occurrences[field.Tag]; n > 1 {
			key = fmt.Sprintf("%s_%d", field.Tag, n)
		}
		s.Add(key)
	}
}

// =============================================================================
// JSON WRITER
// =============================================================================

// JSONWriter serializes records as a JSON array of MARC-in-JSON objects.
// The array is only valid after Close.
type JSONWriter struct {
	w     io.Writer
	opts  writerOptions
	count int
	err   error
}

// NewJSONWriter creates a JSON writer over w and emits the array opener.
func NewJSONWriter(w io.Writer, opts ...WriterOption) *JSONWriter {
	jw := &JSONWriter{w: w, opts: newWriterOptions(opts)}
	_, jw.err = io.WriteString(w, "[")
	return jw
}

// Write serializes one record as a MARC-in-JSON object.
func (w *JSONWriter) Write(rec *Record) error {
	if w.err != nil {
		return w.err
	}
	if err := w.opts.prepare(rec); err != nil {
		return err
	}
	if w.count > 0 {
		if _, err := io.WriteString(w.w, ","); err != nil {
			w.err = err
			return err
		}
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		w.err = err
		return err
	}
	if _, err := w.w.Write(encoded); err != nil {
		w.err = err
		return err
	}
	w.count++
	return nil
}

// Close emits the array closer.
func (w *JSONWriter) Close() error {
	if w.err != nil {
		return w.err
	}
	_, err := io.WriteString(w.w, "]")
	return err
}

// =============================================================================
// TEXT WRITER
// =============================================================================

// TextWriter serializes records as prettified MARCMaker-style text, with a
// blank line between records.
type TextWriter struct {
	w     io.Writer
	opts  writerOptions
	count int
}

// NewTextWriter creates a text writer over w.
func NewTextWriter(w io.Writer, opts ...WriterOption) *TextWriter {
	return &TextWriter{w: w, opts: newWriterOptions(opts)}
}

// Write serializes one record as text.
func (w *TextWriter) Write(rec *Record) error {
	if err := w.opts.prepare(rec); err != nil {
		return err
	}
	if w.count > 0 {
		if _, err := io.WriteString(w.w, "\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w.w, rec.String()); err != nil {
		return err
	}
	w.count++
	return nil
}

// Close is a no-op; text output needs no trailer.
func (w *TextWriter) Close() error {
	return nil
}

// =============================================================================
// TRANSMISSION FORMAT WRITER
// =============================================================================

// MARCWriter serializes records in MARC21 binary transmission format.
type MARCWriter struct {
	w    io.Writer
	opts writerOptions
}

// NewMARCWriter creates a transmission format writer over w.
func NewMARCWriter(w io.Writer, opts ...WriterOption) *MARCWriter {
	return &MARCWriter{w: w, opts: newWriterOptions(opts)}
}

// Write serializes one record, recomputing the leader's record length and
// base address fields.
func (w *MARCWriter) Write(rec *Record) error {
	if err := w.opts.prepare(rec); err != nil {
		return err
	}
	encoded, err := EncodeTransmission(rec)
	if err != nil {
		return err
	}
	_, err = w.w.Write(encoded)
	return err
}

// Close is a no-op; transmission output needs no trailer.
func (w *MARCWriter) Close() error {
	return nil
}
