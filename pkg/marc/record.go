// =============================================================================
// gomarc - Record Model
// =============================================================================
//
// This file defines the Record type: an ordered sequence of fields plus a
// fixed-length leader string. Field order is significant and is preserved by
// every codec in this package.
//
// The JSON representation produced by MarshalJSON follows the MARC-in-JSON
// convention: a "leader" key plus a "fields" array of one-key objects, so
// that field order survives serialization.
//
// =============================================================================

package marc

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DefaultLeader is the leader assigned to newly created records. Record
// length and base address are left blank until binary serialization fills
// them in.
const DefaultLeader = Leader("          22        4500")

// LeaderLength is the fixed length of a record leader.
const LeaderLength = 24

// Leader is the fixed-length metadata string prefixed to a record.
type Leader string

// String returns the leader text.
func (l Leader) String() string { return string(l) }

// Record is an ordered sequence of fields plus a leader.
type Record struct {
	// Leader is the record's fixed-length metadata string.
	Leader Leader

	fields []*Field
}

// NewRecord creates an empty record with the default leader.
func NewRecord() *Record {
	return &Record{Leader: DefaultLeader}
}

// AddField appends fields to the record, preserving insertion order.
func (r *Record) AddField(fields ...*Field) {
	r.fields = append(r.fields, fields...)
}

// Fields returns the record's fields in order. The returned slice is the
// record's own backing storage; callers must not reorder it.
func (r *Record) Fields() []*Field {
	return r.fields
}

// GetFields returns all fields whose tag matches one of the given tags, in
// record order. With no arguments it returns all fields.
func (r *Record) GetFields(tags ...string) []*Field {
	if len(tags) == 0 {
		return r.fields
	}
	var matched []*Field
	for _, f := range r.fields {
		for _, tag := range tags {
			if f.Tag == tag {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched
}

// GetField returns the first field with the given tag, or nil.
func (r *Record) GetField(tag string) *Field {
	for _, f := range r.fields {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// Clone returns a deep copy of the record. Callers that need a record
// preserved across an in-place transcoding pass should clone it first.
func (r *Record) Clone() *Record {
	dup := &Record{Leader: r.Leader}
	if r.fields != nil {
		dup.fields = make([]*Field, len(r.fields))
		for i, f := range r.fields {
			dup.fields[i] = f.Clone()
		}
	}
	return dup
}

// String renders the record as prettified MARCMaker-style text: a leader
// line followed by one line per field.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("=LDR  ")
	b.WriteString(string(r.Leader))
	b.WriteString("\n")
	for _, f := range r.fields {
		b.WriteString(f.String())
		b.WriteString("\n")
	}
	return b.String()
}

// MarshalJSON renders the record as a MARC-in-JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"leader":`)
	if err := writeJSONString(&buf, string(r.Leader)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"fields":[`)
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(`{`)
		if err := writeJSONString(&buf, f.Tag); err != nil {
			return nil, err
		}
		buf.WriteString(`:`)
		if f.IsControlField() {
			if err := writeJSONString(&buf, f.Data); err != nil {
				return nil, err
			}
		} else {
			buf.WriteString(`{"ind1":`)
			if err := writeJSONString(&buf, f.Indicators[0]); err != nil {
				return nil, err
			}
			buf.WriteString(`,"ind2":`)
			if err := writeJSONString(&buf, f.Indicators[1]); err != nil {
				return nil, err
			}
			buf.WriteString(`,"subfields":[`)
			for j, sf := range f.Subfields {
				if j > 0 {
					buf.WriteString(",")
				}
				buf.WriteString(`{`)
				if err := writeJSONString(&buf, sf.Code); err != nil {
					return nil, err
				}
				buf.WriteString(`:`)
				if err := writeJSONString(&buf, sf.Value); err != nil {
					return nil, err
				}
				buf.WriteString(`}`)
			}
			buf.WriteString(`]}`)
		}
		buf.WriteString(`}`)
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

// writeJSONString appends a JSON-encoded string to buf.
func writeJSONString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}
