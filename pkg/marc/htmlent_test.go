package marc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeText_ASCIIPassesThrough(t *testing.T) {
	inputs := []string{
		"",
		"plain ascii",
		"punctuation!@#$%^&*()_+ and digits 0123456789",
	}
	for _, in := range inputs {
		assert.Equal(t, in, EscapeText(in))
	}
}

func TestEscapeText_NamedEntities(t *testing.T) {
	assert.Equal(t, "caf&eacute;", EscapeText("café"))
	assert.Equal(t, "na&iuml;ve", EscapeText("naïve"))
	assert.Equal(t, "M&uuml;nich", EscapeText("Münich"))
	assert.Equal(t, "Jos&eacute; Mar&iacute;a", EscapeText("José María"))
}

func TestEscapeText_DecomposesLatinExtendedA(t *testing.T) {
	// U+0101 (a with macron) is in the decomposition ranges; NFD yields
	// "a" plus U+0304 combining macron. Neither code point has a named
	// entity, so both are written as numeric references.
	assert.Equal(t, "&#97;&#772;", EscapeText("ā"))
}

func TestEscapeText_DecomposesGreek(t *testing.T) {
	// U+03AC (alpha with tonos) decomposes to alpha plus U+0301 combining
	// acute; alpha has a named entity, the combining mark does not.
	assert.Equal(t, "&alpha;&#769;", EscapeText("ά"))
}

func TestEscapeText_CombiningMarkAlone(t *testing.T) {
	// A bare combining mark is inside the allow-list ranges; NFD leaves it
	// as-is and it escapes numerically.
	assert.Equal(t, "e&#769;", EscapeText("é"))
}

func TestEscapeText_NumericFallback(t *testing.T) {
	// U+0283 (esh) has no named entity and is outside the decomposition
	// ranges; it falls back to a decimal reference without error.
	assert.Equal(t, "&#643;", EscapeText("ʃ"))
}

func TestEscapeText_MixedText(t *testing.T) {
	assert.Equal(t, "Caf&eacute;: a story of h&eacute;llo",
		EscapeText("Café: a story of héllo"))
}

func entityTestRecord() *Record {
	rec := NewRecord()
	rec.AddField(NewDataField("245", NewIndicators("0", "0"),
		Subfield{Code: "a", Value: "Café: a story of héllo"},
		Subfield{Code: "b", Value: "with naïve characters"},
	))
	rec.AddField(NewControlField("001", "café123"))
	return rec
}

func TestApplyHTMLEntities_MutatesInPlace(t *testing.T) {
	rec := entityTestRecord()
	ApplyHTMLEntities(rec)

	value, ok := rec.GetField("245").SubfieldValue("a")
	require.True(t, ok)
	assert.Equal(t, "Caf&eacute;: a story of h&eacute;llo", value)
	assert.Equal(t, "caf&eacute;123", rec.GetField("001").Data)
}

func TestApplyHTMLEntities_DoubleApplicationCompounds(t *testing.T) {
	rec := entityTestRecord()
	ApplyHTMLEntities(rec)
	ApplyHTMLEntities(rec)

	// The second pass re-escapes text the first pass already escaped;
	// ampersands are ASCII so the result is unchanged. The hazard shows
	// when writers escape a record that was already escaped elsewhere.
	value, _ := rec.GetField("245").SubfieldValue("a")
	assert.Equal(t, "Caf&eacute;: a story of h&eacute;llo", value)
}

func TestTranscodeRecord_LeavesOriginalUntouched(t *testing.T) {
	rec := entityTestRecord()
	escaped := TranscodeRecord(rec)

	original, _ := rec.GetField("245").SubfieldValue("a")
	assert.Equal(t, "Café: a story of héllo", original)

	value, _ := escaped.GetField("245").SubfieldValue("a")
	assert.Equal(t, "Caf&eacute;: a story of h&eacute;llo", value)
}

func TestTranscodeRecord_PreservesLeaderAndStructure(t *testing.T) {
	rec := entityTestRecord()
	escaped := TranscodeRecord(rec)

	assert.Equal(t, rec.Leader, escaped.Leader)
	assert.Len(t, escaped.Fields(), len(rec.Fields()))
	assert.Equal(t, rec.GetField("245").Indicators, escaped.GetField("245").Indicators)
}
