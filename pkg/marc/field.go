// =============================================================================
// gomarc - Field Types
// =============================================================================
//
// This file defines the value types that make up a catalog record below the
// record level: subfields, indicator pairs, and fields. A field is either a
// control field carrying raw data, or a data field carrying an indicator
// pair and an ordered list of subfields - never both.
//
// =============================================================================

package marc

import "strings"

// BlankIndicator is the value of an indicator position that carries no flag.
const BlankIndicator = " "

// Subfield is a single code/value pair inside a data field.
// Subfield order within a field is significant.
type Subfield struct {
	// Code is the one-character subfield code, e.g. "a".
	Code string
	// Value is the subfield text.
	Value string
}

// Indicators is the pair of one-character flags on a data field.
// A blank position is represented as " ".
type Indicators [2]string

// NewIndicators builds an indicator pair, normalizing empty strings to
// blanks and truncating multi-character values to their first character.
func NewIndicators(first, second string) Indicators {
	return Indicators{normalizeIndicator(first), normalizeIndicator(second)}
}

func normalizeIndicator(ind string) string {
	if ind == "" {
		return BlankIndicator
	}
	return ind[:1]
}

// Field is a single entry in a record: a 3-character tag plus either
// control data or an indicator pair with subfields.
type Field struct {
	// Tag is the 3-character field tag, e.g. "245".
	Tag string

	// Data holds the raw value of a control field. Empty for data fields.
	Data string

	// Indicators is the indicator pair of a data field.
	Indicators Indicators

	// Subfields is the ordered subfield list of a data field.
	Subfields []Subfield
}

// NewControlField builds a control field holding raw data.
func NewControlField(tag, data string) *Field {
	return &Field{Tag: tag, Data: data}
}

// NewDataField builds a data field with an indicator pair and subfields.
func NewDataField(tag string, indicators Indicators, subfields ...Subfield) *Field {
	return &Field{Tag: tag, Indicators: indicators, Subfields: subfields}
}

// IsControlField reports whether the field carries raw control data
// rather than subfields.
func (f *Field) IsControlField() bool {
	return len(f.Subfields) == 0
}

// SubfieldValue returns the value of the first subfield with the given code.
// The second return value reports whether such a subfield exists.
func (f *Field) SubfieldValue(code string) (string, bool) {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	dup := &Field{Tag: f.Tag, Data: f.Data, Indicators: f.Indicators}
	if f.Subfields != nil {
		dup.Subfields = make([]Subfield, len(f.Subfields))
		copy(dup.Subfields, f.Subfields)
	}
	return dup
}

// String renders the field in MARCMaker-style text, with blank indicators
// shown as backslashes.
func (f *Field) String() string {
	var b strings.Builder
	b.WriteString("=")
	b.WriteString(f.Tag)
	b.WriteString("  ")
	if f.IsControlField() {
		b.WriteString(f.Data)
		return b.String()
	}
	b.WriteString(displayIndicator(f.Indicators[0]))
	b.WriteString(displayIndicator(f.Indicators[1]))
	for _, sf := range f.Subfields {
		b.WriteString("$")
		b.WriteString(sf.Code)
		b.WriteString(sf.Value)
	}
	return b.String()
}

func displayIndicator(ind string) string {
	if ind == "" || ind == BlankIndicator {
		return `\`
	}
	return ind
}
