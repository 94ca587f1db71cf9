package marc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReader_StreamsRecords(t *testing.T) {
	input := "245,LDR,field_order\n" +
		"10$aPython$cGuido," + testLeader + ",245\n" +
		"10$aGo$cRob," + testLeader + ",245\n"

	reader, err := NewCSVReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"245", "LDR", "field_order"}, reader.Header())

	require.True(t, reader.Next())
	first, _ := reader.Record().GetField("245").SubfieldValue("a")
	assert.Equal(t, "Python", first)

	require.True(t, reader.Next())
	second, _ := reader.Record().GetField("245").SubfieldValue("a")
	assert.Equal(t, "Go", second)

	assert.False(t, reader.Next())
	assert.NoError(t, reader.Err())
}

func TestCSVReader_EmptyInput(t *testing.T) {
	_, err := NewCSVReader(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCSVReader_SkipsBlankRows(t *testing.T) {
	input := "245,LDR,field_order\n" +
		",,\n" +
		"10$aPython," + testLeader + ",245\n"

	reader, err := NewCSVReader(strings.NewReader(input))
	require.NoError(t, err)

	recs, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestCSVReader_MissingLeaderColumn(t *testing.T) {
	input := "245,260\n10$aPython,\\\\$aMunich\n"

	reader, err := NewCSVReader(strings.NewReader(input))
	require.NoError(t, err)

	assert.False(t, reader.Next())
	require.Error(t, reader.Err())

	var malformed *MalformedRowError
	assert.True(t, errors.As(reader.Err(), &malformed))
}

func TestCSVReader_ShortRowsDecodeAsAbsentColumns(t *testing.T) {
	input := "245,260,LDR,field_order\n" +
		"10$aPython,\\\\$aMunich," + testLeader + ",245 260\n" +
		"10$aGo,," + testLeader + ",245\n"

	reader, err := NewCSVReader(strings.NewReader(input))
	require.NoError(t, err)

	recs, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Len(t, recs[0].Fields(), 2)
	assert.Len(t, recs[1].Fields(), 1)
}

func TestCSVReader_QuotedCellsWithCommas(t *testing.T) {
	input := "245,LDR,field_order\n" +
		`"10$aPython, the ""book""",` + testLeader + ",245\n"

	reader, err := NewCSVReader(strings.NewReader(input))
	require.NoError(t, err)

	recs, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)

	value, _ := recs[0].GetField("245").SubfieldValue("a")
	assert.Equal(t, `Python, the "book"`, value)
}
