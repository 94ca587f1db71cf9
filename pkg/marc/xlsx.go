// =============================================================================
// gomarc - XLSX Writer
// =============================================================================
//
// This file serializes records to a spreadsheet, one row per record, using
// the same cell packing and column scheme as the record-in-CSV codec.
//
// Unlike the CSV writer, the XLSX writer buffers all rows and only builds
// the workbook on Close, so the column schema is never finalized early and
// no tag can be dropped: the header always covers every record written.
//
// =============================================================================

package marc

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// xlsxSheetName is the sheet records are written to.
const xlsxSheetName = "Records"

// XLSXWriter serializes records as rows of a single-sheet workbook. Output
// is produced on Close.
type XLSXWriter struct {
	w      io.Writer
	opts   writerOptions
	schema *ColumnSchema
	rows   []*Row
}

// NewXLSXWriter creates an XLSX writer over w.
func NewXLSXWriter(w io.Writer, opts ...WriterOption) *XLSXWriter {
	return &XLSXWriter{
		w:      w,
		opts:   newWriterOptions(opts),
		schema: NewColumnSchema(),
	}
}

// Write buffers one record as a spreadsheet row.
func (w *XLSXWriter) Write(rec *Record) error {
	if err := w.opts.prepare(rec); err != nil {
		return err
	}
	// The schema is never finalized before Close, so nothing is dropped.
	row, _ := EncodeRecord(rec, w.schema)
	w.rows = append(w.rows, row)
	return nil
}

// WriteAll buffers a batch of records.
func (w *XLSXWriter) WriteAll(recs []*Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close builds the workbook and writes it to the underlying stream.
func (w *XLSXWriter) Close() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := append(w.schema.Columns(!w.opts.insertionOrder), FieldOrderColumn)
	headerCells := make([]interface{}, len(header))
	for i, col := range header {
		headerCells[i] = col
	}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &headerCells); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range w.rows {
		cells := make([]interface{}, len(header))
		for j, col := range header {
			if v, ok := row.Get(col); ok {
				cells[j] = v
			} else {
				cells[j] = ""
			}
		}
		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(xlsxSheetName, anchor, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w.w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
