// =============================================================================
// gomarc - Transmission Format Reader
// =============================================================================
//
// This file provides a streaming reader for MARC21 binary transmission
// input. Each record starts with a 5-digit length in its leader, which is
// used to frame the stream; the framed bytes are handed to the transmission
// codec.
//
// =============================================================================

package marc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// recordLengthDigits is the size of the record length prefix in the leader.
const recordLengthDigits = 5

// MARCReader streams records out of binary transmission input. It follows
// the same Next/Record/Err shape as CSVReader.
type MARCReader struct {
	br      *bufio.Reader
	current *Record
	count   int
	err     error
}

// NewMARCReader creates a reader over r.
func NewMARCReader(r io.Reader) *MARCReader {
	return &MARCReader{br: bufio.NewReader(r)}
}

// Next advances to the next record. It returns false at end of input or on
// error; check Err afterwards.
func (r *MARCReader) Next() bool {
	if r.err != nil {
		return false
	}

	prefix := make([]byte, recordLengthDigits)
	if _, err := io.ReadFull(r.br, prefix); err != nil {
		if err != io.EOF {
			r.err = fmt.Errorf("error reading record %d length: %w", r.count+1, err)
		}
		return false
	}

	length, err := strconv.Atoi(string(prefix))
	if err != nil || length < LeaderLength {
		r.err = fmt.Errorf("record %d has invalid length prefix %q", r.count+1, prefix)
		return false
	}

	data := make([]byte, length)
	copy(data, prefix)
	if _, err := io.ReadFull(r.br, data[recordLengthDigits:]); err != nil {
		r.err = fmt.Errorf("record %d truncated: %w", r.count+1, err)
		return false
	}

	rec, err := DecodeTransmission(data)
	if err != nil {
		r.err = fmt.Errorf("record %d: %w", r.count+1, err)
		return false
	}
	r.current = rec
	r.count++
	return true
}

// Record returns the record decoded by the last successful Next.
func (r *MARCReader) Record() *Record {
	return r.current
}

// Err returns the first error encountered while streaming.
func (r *MARCReader) Err() error {
	return r.err
}

// ReadAll decodes all remaining records.
func (r *MARCReader) ReadAll() ([]*Record, error) {
	var recs []*Record
	for r.Next() {
		recs = append(recs, r.Record())
	}
	if r.err != nil {
		return nil, r.err
	}
	return recs, nil
}
