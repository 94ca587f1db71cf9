package marc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_DefaultLeader(t *testing.T) {
	rec := NewRecord()
	assert.Equal(t, DefaultLeader, rec.Leader)
	assert.Len(t, string(rec.Leader), LeaderLength)
}

func TestRecord_FieldOrderPreserved(t *testing.T) {
	rec := NewRecord()
	rec.AddField(
		NewDataField("650", NewIndicators(" ", "0"), Subfield{Code: "a", Value: "Snakes"}),
		NewControlField("001", "ocm12345"),
		NewDataField("245", NewIndicators("1", "0"), Subfield{Code: "a", Value: "Python"}),
	)

	tags := make([]string, 0, 3)
	for _, f := range rec.Fields() {
		tags = append(tags, f.Tag)
	}
	assert.Equal(t, []string{"650", "001", "245"}, tags)
}

func TestRecord_GetFields(t *testing.T) {
	rec := publishedRecord()

	assert.Len(t, rec.GetFields(), 3)
	assert.Len(t, rec.GetFields("245"), 1)
	assert.Len(t, rec.GetFields("245", "260"), 2)
	assert.Empty(t, rec.GetFields("999"))
	assert.Nil(t, rec.GetField("999"))
}

func TestRecord_CloneIsDeep(t *testing.T) {
	rec := publishedRecord()
	dup := rec.Clone()
	require.Equal(t, rec, dup)

	dup.GetField("245").Subfields[0].Value = "changed"
	dup.GetField("001").Data = "changed"

	original, _ := rec.GetField("245").SubfieldValue("a")
	assert.Equal(t, "Python", original)
	assert.Equal(t, "ocm12345", rec.GetField("001").Data)
}

func TestField_IsControlField(t *testing.T) {
	assert.True(t, NewControlField("001", "data").IsControlField())
	assert.False(t, NewDataField("245", NewIndicators("1", "0"),
		Subfield{Code: "a", Value: "x"}).IsControlField())
}

func TestNewIndicators_Normalization(t *testing.T) {
	assert.Equal(t, Indicators{" ", " "}, NewIndicators("", ""))
	assert.Equal(t, Indicators{"1", "0"}, NewIndicators("1", "0"))
	assert.Equal(t, Indicators{"1", "0"}, NewIndicators("12", "09"))
}

func TestRecord_String(t *testing.T) {
	expected := "=LDR  " + testLeader + "\n" +
		"=001  ocm12345\n" +
		"=245  10$aPython$cGuido\n" +
		`=260  \\$aMunich` + "\n"
	assert.Equal(t, expected, publishedRecord().String())
}

func TestRecord_MarshalJSONShape(t *testing.T) {
	rec := NewRecord()
	rec.AddField(NewDataField("245", NewIndicators("1", "0"),
		Subfield{Code: "a", Value: "Python"},
		Subfield{Code: "c", Value: "Guido"},
	))

	out, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"leader":"          22        4500","fields":[{"245":{"ind1":"1","ind2":"0","subfields":[{"a":"Python"},{"c":"Guido"}]}}]}`,
		string(out))
}
