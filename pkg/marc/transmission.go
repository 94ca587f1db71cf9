// =============================================================================
// gomarc - Binary Transmission Codec
// =============================================================================
//
// This file encodes and decodes records in MARC21 transmission format: a
// 24-byte leader, a directory of 12-byte entries (3-byte tag, 4-digit field
// length, 5-digit start offset), and the field data, with 0x1E terminating
// the directory and each field, 0x1F delimiting subfields, and 0x1D
// terminating the record. Lengths and offsets are byte counts.
//
// =============================================================================

package marc

import (
	"bytes"
	"fmt"
	"strconv"
)

const (
	// recordTerminator ends a transmission record.
	recordTerminator = 0x1d
	// fieldTerminator ends the directory and each field payload.
	fieldTerminator = 0x1e
	// subfieldIndicator precedes each subfield code in a data field.
	subfieldIndicator = 0x1f

	// directoryEntryLength is the fixed size of one directory entry.
	directoryEntryLength = 12
)

// EncodeTransmission serializes a record in transmission format. The
// leader's record length (positions 0-4) and base address (positions 12-16)
// are recomputed; the rest of the leader is carried through, padded or
// truncated to 24 bytes.
func EncodeTransmission(rec *Record) ([]byte, error) {
	var directory bytes.Buffer
	var fieldData bytes.Buffer

	for _, field := range rec.Fields() {
		if len(field.Tag) != 3 {
			return nil, fmt.Errorf("field tag %q is not 3 characters", field.Tag)
		}
		start := fieldData.Len()
		if field.IsControlField() {
			fieldData.WriteString(field.Data)
		} else {
			fieldData.WriteString(encodeIndicatorByte(field.Indicators[0]))
			fieldData.WriteString(encodeIndicatorByte(field.Indicators[1]))
			for _, sf := range field.Subfields {
				fieldData.WriteByte(subfieldIndicator)
				fieldData.WriteString(sf.Code)
				fieldData.WriteString(sf.Value)
			}
		}
		fieldData.WriteByte(fieldTerminator)

		length := fieldData.Len() - start
		if length > 9999 || start > 99999 {
			return nil, fmt.Errorf("field %s exceeds transmission format size limits", field.Tag)
		}
		fmt.Fprintf(&directory, "%s%04d%05d", field.Tag, length, start)
	}
	directory.WriteByte(fieldTerminator)

	baseAddress := LeaderLength + directory.Len()
	total := baseAddress + fieldData.Len() + 1
	if total > 99999 {
		return nil, fmt.Errorf("record length %d exceeds transmission format limit", total)
	}

	leader := []byte(padLeader(string(rec.Leader)))
	copy(leader[0:5], fmt.Sprintf("%05d", total))
	copy(leader[12:17], fmt.Sprintf("%05d", baseAddress))

	out := make([]byte, 0, total)
	out = append(out, leader...)
	out = append(out, directory.Bytes()...)
	out = append(out, fieldData.Bytes()...)
	out = append(out, recordTerminator)
	return out, nil
}

// encodeIndicatorByte renders one indicator position, mapping an absent
// indicator to a blank.
func encodeIndicatorByte(ind string) string {
	if ind == "" {
		return BlankIndicator
	}
	return ind[:1]
}

// padLeader pads or truncates a leader string to exactly 24 bytes.
func padLeader(leader string) string {
	if len(leader) >= LeaderLength {
		return leader[:LeaderLength]
	}
	return leader + string(bytes.Repeat([]byte(" "), LeaderLength-len(leader)))
}

// DecodeTransmission parses one transmission format record. The input must
// contain exactly one record, with or without its trailing record
// terminator.
func DecodeTransmission(data []byte) (*Record, error) {
	if len(data) < LeaderLength {
		return nil, fmt.Errorf("transmission record shorter than leader: %d bytes", len(data))
	}
	leader := string(data[:LeaderLength])
	baseAddress, err := strconv.Atoi(leader[12:17])
	if err != nil || baseAddress < LeaderLength+1 || baseAddress > len(data) {
		return nil, fmt.Errorf("invalid base address %q in leader", leader[12:17])
	}

	rec := &Record{Leader: Leader(leader)}

	// Directory entries run from the end of the leader to the field
	// terminator preceding the base address.
	directory := data[LeaderLength : baseAddress-1]
	if len(directory)%directoryEntryLength != 0 {
		return nil, fmt.Errorf("directory length %d is not a multiple of %d", len(directory), directoryEntryLength)
	}

	payload := data[baseAddress:]
	for offset := 0; offset < len(directory); offset += directoryEntryLength {
		entry := directory[offset : offset+directoryEntryLength]
		tag := string(entry[0:3])
		length, err := strconv.Atoi(string(entry[3:7]))
		if err != nil {
			return nil, fmt.Errorf("invalid field length in directory entry for tag %s", tag)
		}
		start, err := strconv.Atoi(string(entry[7:12]))
		if err != nil {
			return nil, fmt.Errorf("invalid field offset in directory entry for tag %s", tag)
		}
		if start+length > len(payload) {
			return nil, fmt.Errorf("directory entry for tag %s points past end of record", tag)
		}

		fieldBytes := payload[start : start+length]
		fieldBytes = bytes.TrimSuffix(fieldBytes, []byte{fieldTerminator})
		rec.AddField(decodeTransmissionField(tag, fieldBytes))
	}

	return rec, nil
}

// decodeTransmissionField parses one field payload. A payload containing a
// subfield indicator is a data field with a 2-byte indicator prefix;
// anything else is a control field.
func decodeTransmissionField(tag string, payload []byte) *Field {
	if !bytes.Contains(payload, []byte{subfieldIndicator}) {
		return NewControlField(tag, string(payload))
	}

	field := &Field{Tag: tag, Indicators: Indicators{BlankIndicator, BlankIndicator}}
	pieces := bytes.Split(payload, []byte{subfieldIndicator})
	for i, c := range string(pieces[0]) {
		if i > 1 {
			break
		}
		field.Indicators[i] = string(c)
	}
	for _, piece := range pieces[1:] {
		if len(piece) == 0 {
			continue
		}
		field.Subfields = append(field.Subfields, Subfield{
			Code:  string(piece[:1]),
			Value: string(piece[1:]),
		})
	}
	return field
}
