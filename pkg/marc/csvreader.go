// =============================================================================
// gomarc - CSV Reader
// =============================================================================
//
// This file provides a streaming reader that turns record-in-CSV input back
// into records, one row at a time. The first row is the column header; each
// subsequent row is decoded through the CSV codec.
//
// USAGE:
//
//	reader, err := marc.NewCSVReader(file)
//	if err != nil {
//	    return err
//	}
//	for reader.Next() {
//	    rec := reader.Record()
//	    // process the record...
//	}
//	if err := reader.Err(); err != nil {
//	    return err
//	}
//
// =============================================================================

package marc

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

// CSVReader streams records out of record-in-CSV input.
type CSVReader struct {
	cr        *csv.Reader
	header    []string
	current   *Record
	rowNumber int
	err       error
}

// NewCSVReader creates a reader over r and consumes the header row.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	// Rows routinely have fewer cells than the header when trailing
	// columns are empty; missing cells decode as absent columns.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	headerCopy := make([]string, len(header))
	copy(headerCopy, header)

	return &CSVReader{cr: cr, header: headerCopy, rowNumber: 1}, nil
}

// Header returns the column names from the header row.
func (r *CSVReader) Header() []string {
	return r.header
}

// Next advances to the next record. It returns false at end of input or on
// error; check Err afterwards.
func (r *CSVReader) Next() bool {
	for {
		cells, err := r.cr.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			r.err = fmt.Errorf("error reading csv row %d: %w", r.rowNumber+1, err)
			return false
		}
		r.rowNumber++

		if isEmptyRow(cells) {
			continue
		}

		row := NewRow()
		for i, col := range r.header {
			if i < len(cells) {
				row.Set(col, cells[i])
			}
		}

		rec, err := DecodeRow(row)
		if err != nil {
			r.err = fmt.Errorf("csv row %d: %w", r.rowNumber, err)
			return false
		}
		r.current = rec
		return true
	}
}

// Record returns the record decoded by the last successful Next.
func (r *CSVReader) Record() *Record {
	return r.current
}

// Err returns the first error encountered while streaming.
func (r *CSVReader) Err() error {
	return r.err
}

// ReadAll decodes all remaining rows.
func (r *CSVReader) ReadAll() ([]*Record, error) {
	var recs []*Record
	for r.Next() {
		recs = append(recs, r.Record())
	}
	if r.err != nil {
		return nil, r.err
	}
	return recs, nil
}

// isEmptyRow reports whether every cell of a row is empty.
func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}
