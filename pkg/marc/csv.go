// =============================================================================
// gomarc - Record-in-CSV Codec
// =============================================================================
//
// This file implements the bidirectional mapping between a Record and a flat
// CSV row. The encoding packs each field into a single cell:
//
//   - the leader goes into the "LDR" column, verbatim
//   - a data field cell is ind1+ind2 followed by "$<code><value>" per
//     subfield, with blank indicators written as the sentinel "\"
//   - a control field cell is the raw data, with no indicator prefix
//   - the n-th occurrence (n >= 2) of a repeated tag within one record gets
//     the column "<tag>_<n>"
//   - the "field_order" column holds the space-joined column keys in field
//     encounter order, which is what lets decoding rebuild the exact field
//     sequence even when the header is sorted
//
// Column names accumulate in a ColumnSchema owned by one writer session. The
// schema grows monotonically and is finalized when the header row is
// emitted; tags first seen after that point cannot be added and their cells
// are dropped from the row.
//
// =============================================================================

package marc

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// LeaderColumn is the CSV column holding the record leader.
const LeaderColumn = "LDR"

// FieldOrderColumn is the CSV column holding the field encounter order.
const FieldOrderColumn = "field_order"

// indicatorSentinel replaces a blank or absent indicator in a CSV cell.
const indicatorSentinel = `\`

// unitSeparator is accepted in inbound cells as a synonym for "$".
const unitSeparator = "\x1f"

// tagSuffixPattern matches the "_<n>" disambiguation suffix appended to
// repeated tags.
var tagSuffixPattern = regexp.MustCompile(`_\d+$`)

// MalformedRowError reports a CSV row that cannot be decoded into a record:
// a missing leader column, or a cell whose indicator/subfield structure is
// unparsable. No partial record is returned alongside it.
type MalformedRowError struct {
	// Column is the column whose cell could not be parsed, if any.
	Column string
	// Reason describes the failure.
	Reason string
}

// Error returns a formatted message naming the offending column.
func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("malformed csv row: %s", e.Reason)
	}
	return fmt.Sprintf("malformed csv row: column %q: %s", e.Column, e.Reason)
}

// Row is an ordered association of column name to cell value. Presence is
// explicit: an empty cell is distinct from a column the row does not have.
type Row struct {
	keys  []string
	cells map[string]string
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{cells: make(map[string]string)}
}

// Set stores a cell value, recording the key on first assignment.
func (r *Row) Set(key, value string) {
	if _, ok := r.cells[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.cells[key] = value
}

// Get returns a cell value and whether the column is present in the row.
func (r *Row) Get(key string) (string, bool) {
	v, ok := r.cells[key]
	return v, ok
}

// Keys returns the row's column names in first-set order.
func (r *Row) Keys() []string {
	return r.keys
}

// Len returns the number of cells in the row.
func (r *Row) Len() int {
	return len(r.cells)
}

// ColumnSchema is the accumulated, ordered list of column names across all
// records encoded in one writer session. It grows monotonically, never
// shrinks, and stops growing once finalized (when the header row has been
// emitted). A schema is owned by exactly one writer value; concurrent use
// requires external synchronization.
type ColumnSchema struct {
	columns   []string
	seen      map[string]bool
	finalized bool
}

// NewColumnSchema creates a schema pre-seeded with the leader column.
func NewColumnSchema() *ColumnSchema {
	s := &ColumnSchema{seen: make(map[string]bool)}
	s.columns = append(s.columns, LeaderColumn)
	s.seen[LeaderColumn] = true
	return s
}

// Add registers a column name. It reports whether the column is usable:
// true if the name was already present or was appended, false if the schema
// is finalized and the name is absent.
func (s *ColumnSchema) Add(name string) bool {
	if s.seen[name] {
		return true
	}
	if s.finalized {
		return false
	}
	s.columns = append(s.columns, name)
	s.seen[name] = true
	return true
}

// Contains reports whether a column name is registered.
func (s *ColumnSchema) Contains(name string) bool {
	return s.seen[name]
}

// Len returns the number of registered columns.
func (s *ColumnSchema) Len() int {
	return len(s.columns)
}

// Finalize freezes the schema. Subsequent Add calls for unseen names fail.
func (s *ColumnSchema) Finalize() {
	s.finalized = true
}

// Finalized reports whether the schema is frozen.
func (s *ColumnSchema) Finalized() bool {
	return s.finalized
}

// Columns returns a copy of the registered column names, sorted
// lexicographically or in insertion order. The field_order column is not
// part of the schema; header construction appends it last.
func (s *ColumnSchema) Columns(sorted bool) []string {
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	if sorted {
		sort.Strings(cols)
	}
	return cols
}

// EncodeRecord converts a record to a CSV row, registering any new column
// names in the schema. The second return value lists column keys that were
// dropped because the schema was already finalized without them; dropped
// keys are also omitted from the row's field_order cell.
func EncodeRecord(rec *Record, schema *ColumnSchema) (*Row, []string) {
	row := NewRow()
	row.Set(LeaderColumn, string(rec.Leader))
	schema.Add(LeaderColumn)

	var order []string
	var skipped []string
	occurrences := make(map[string]int)

	for _, field := range rec.Fields() {
		occurrences[field.Tag]++
		key := field.Tag
		if n := occurrences[field.Tag]; n > 1 {
			key = fmt.Sprintf("%s_%d", field.Tag, n)
		}
		if !schema.Add(key) {
			skipped = append(skipped, key)
			continue
		}
		row.Set(key, encodeFieldCell(field))
		order = append(order, key)
	}

	row.Set(FieldOrderColumn, strings.Join(order, " "))
	return row, skipped
}

// encodeFieldCell packs a single field into its cell representation.
func encodeFieldCell(field *Field) string {
	if field.IsControlField() {
		return field.Data
	}
	var b strings.Builder
	b.WriteString(encodeIndicator(field.Indicators[0]))
	b.WriteString(encodeIndicator(field.Indicators[1]))
	for _, sf := range field.Subfields {
		b.WriteString("$")
		b.WriteString(sf.Code)
		b.WriteString(sf.Value)
	}
	return b.String()
}

// encodeIndicator writes one indicator character, substituting the sentinel
// for a blank or absent indicator.
func encodeIndicator(ind string) string {
	if ind == "" || ind == BlankIndicator {
		return indicatorSentinel
	}
	return ind
}

// DecodeRow converts a CSV row back into a record.
//
// The leader is taken from the "LDR" column, or from any column whose name
// is "leader" case-insensitively; a row with neither fails with
// MalformedRowError. Cells are parsed per the packing scheme above, with a
// literal unit-separator byte accepted as a "$" synonym. If the row carries
// a field_order cell, it dictates field emission order; columns it does not
// mention are appended afterwards in row order. Without field_order, fields
// are emitted in row order.
func DecodeRow(row *Row) (*Record, error) {
	leaderKey := ""
	for _, key := range row.Keys() {
		if strings.ToUpper(key) == LeaderColumn || strings.ToLower(key) == "leader" {
			leaderKey = key
			break
		}
	}
	if leaderKey == "" {
		return nil, &MalformedRowError{Reason: "no leader column (LDR or leader)"}
	}

	leader, _ := row.Get(leaderKey)
	rec := &Record{Leader: Leader(leader)}

	emitted := make(map[string]bool)
	emitted[leaderKey] = true
	emitted[FieldOrderColumn] = true

	if orderCell, ok := row.Get(FieldOrderColumn); ok && orderCell != "" {
		for _, key := range strings.Fields(orderCell) {
			if emitted[key] {
				continue
			}
			emitted[key] = true
			if err := decodeCellInto(rec, row, key); err != nil {
				return nil, err
			}
		}
	}

	for _, key := range row.Keys() {
		if emitted[key] {
			continue
		}
		emitted[key] = true
		if err := decodeCellInto(rec, row, key); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// decodeCellInto parses one cell and appends the resulting field to the
// record. Absent and empty cells are skipped: a record that lacks a column
// present in the session schema simply has no such field.
func decodeCellInto(rec *Record, row *Row, key string) error {
	cell, ok := row.Get(key)
	if !ok || cell == "" {
		return nil
	}

	field, err := decodeFieldCell(key, cell)
	if err != nil {
		return err
	}
	rec.AddField(field)
	return nil
}

// decodeFieldCell parses a single packed cell into a field. The field's tag
// is the column key with any "_<n>" disambiguation suffix stripped.
func decodeFieldCell(key, cell string) (*Field, error) {
	tag := tagSuffixPattern.ReplaceAllString(key, "")
	cell = strings.ReplaceAll(cell, unitSeparator, "$")

	head := cell
	if len(head) > 3 {
		head = head[:3]
	}
	delim := strings.Index(head, "$")
	if delim < 0 {
		return NewControlField(tag, cell), nil
	}

	indicators, err := decodeIndicators(key, cell[:delim])
	if err != nil {
		return nil, err
	}

	field := &Field{Tag: tag, Indicators: indicators}
	rest := cell[delim+1:]
	if rest == "" {
		return field, nil
	}
	for _, piece := range strings.Split(rest, "$") {
		if piece == "" {
			return nil, &MalformedRowError{Column: key, Reason: "subfield with no code"}
		}
		field.Subfields = append(field.Subfields, Subfield{Code: piece[:1], Value: piece[1:]})
	}
	return field, nil
}

// decodeIndicators maps a cell's indicator prefix back to an indicator
// pair. Sentinels become blanks, at most two characters are kept, and a
// short prefix is padded with blanks.
func decodeIndicators(key, prefix string) (Indicators, error) {
	indicators := Indicators{BlankIndicator, BlankIndicator}
	for i, c := range prefix {
		if i > 1 {
			break
		}
		switch c {
		case '\\':
			indicators[i] = BlankIndicator
		default:
			if c < ' ' {
				return indicators, &MalformedRowError{Column: key, Reason: "control character in indicator prefix"}
			}
			indicators[i] = string(c)
		}
	}
	return indicators, nil
}
