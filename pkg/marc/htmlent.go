// =============================================================================
// gomarc - HTML Entity Transcoder
// =============================================================================
//
// This file converts non-ASCII text to ASCII using HTML entity escapes, so
// records can pass through systems that only handle 7-bit text. ASCII input
// passes through unchanged. Each non-ASCII character is handled one of two
// ways:
//
//   1. Characters in the composed-diacritic ranges (Greek, Latin Extended-A,
//      Cyrillic letters with diacritics, combining marks) are NFD-decomposed
//      into base letter plus combining marks, and each resulting code point
//      is written as a named entity when one exists, else a decimal numeric
//      reference. One input letter can expand to several entities.
//   2. Everything else is written as the named entity for its own code
//      point, falling back to a decimal numeric reference with a non-fatal
//      diagnostic.
//
// Writers invoke the transcoder through ApplyHTMLEntities, which rewrites
// the record's subfield values and control data in place. Callers that need
// the original text preserved should use TranscodeRecord or clone first.
//
// =============================================================================

package marc

import (
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// runeRange is an inclusive code point interval.
type runeRange struct {
	lo, hi rune
}

// composedDiacriticRanges lists the code point intervals whose characters
// are decomposed before escaping. These cover the standard Latin, Greek,
// and Cyrillic letter-plus-diacritic compositions and the combining mark
// blocks.
var composedDiacriticRanges = []runeRange{
	{256, 382}, // Latin Extended-A diacritics
	{461, 496},
	{500, 501},
	{504, 539},
	{542, 543},
	{550, 563},
	{768, 901}, // combining diacritical marks
	{938, 944},
	{970, 974},
	{979, 980},
	{1024, 1025}, // Cyrillic compositions
	{1027, 1027},
	{1031, 1031},
	{1036, 1038},
	{1081, 1081},
	{1104, 1105},
	{1107, 1107},
	{1111, 1111},
	{1116, 1118},
	{1142, 1143},
	{1148, 1151},
	{1154, 1161}, // Cyrillic combining marks
	{1217, 1218},
	{1232, 1235},
	{1238, 1239},
	{1242, 1247},
	{1250, 1255},
	{1258, 1273},
	{7936, 8190}, // Greek Extended compositions
}

// isComposedDiacritic reports whether a code point falls inside the
// decomposition allow-list.
func isComposedDiacritic(r rune) bool {
	for _, rng := range composedDiacriticRanges {
		if r >= rng.lo && r <= rng.hi {
			return true
		}
	}
	return false
}

// EscapeText replaces every non-ASCII character in text with its HTML
// entity representation. Named entities are preferred to numeric
// references; characters in the composed-diacritic ranges are decomposed
// first. All-ASCII input is returned unchanged.
func EscapeText(text string) string {
	if isASCII(text) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case isComposedDiacritic(r):
			b.WriteString(decomposeToEntities(r))
		default:
			b.WriteString(escapeCodePoint(r))
		}
	}
	return b.String()
}

// isASCII reports whether every byte of s is 7-bit.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// decomposeToEntities applies canonical (NFD) decomposition to a single
// character and writes each resulting code point as an entity.
func decomposeToEntities(r rune) string {
	var b strings.Builder
	for _, part := range norm.NFD.String(string(r)) {
		if name, ok := entityName(part); ok {
			b.WriteString("&")
			b.WriteString(name)
			b.WriteString(";")
			continue
		}
		b.WriteString("&#")
		b.WriteString(strconv.Itoa(int(part)))
		b.WriteString(";")
	}
	return b.String()
}

// escapeCodePoint writes the entity for a character's own code point,
// falling back to a decimal numeric reference with a diagnostic.
func escapeCodePoint(r rune) string {
	if name, ok := entityName(r); ok {
		return "&" + name + ";"
	}
	numeric := "&#" + strconv.Itoa(int(r)) + ";"
	slog.Info("no named entity for character, using numeric reference",
		"char", string(r), "reference", numeric)
	return numeric
}

// ApplyHTMLEntities rewrites the record's text in place, replacing
// non-ASCII characters in every subfield value and control field data with
// entity escapes. The leader is left untouched.
//
// The mutation is observable by the caller. Writing the same record through
// two writers that both enable the entity option compounds the transform;
// clone the record, or use TranscodeRecord, when the original matters.
func ApplyHTMLEntities(rec *Record) {
	for _, field := range rec.Fields() {
		if field.IsControlField() {
			field.Data = EscapeText(field.Data)
			continue
		}
		for i := range field.Subfields {
			field.Subfields[i].Value = EscapeText(field.Subfields[i].Value)
		}
	}
}

// TranscodeRecord returns an entity-escaped deep copy of the record,
// leaving the original unchanged.
func TranscodeRecord(rec *Record) *Record {
	dup := rec.Clone()
	ApplyHTMLEntities(dup)
	return dup
}
