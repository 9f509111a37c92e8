package tabular

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/dataset"
	"datalens/domain/table"
	"datalens/internal/errors"
)

func TestParseCSV_TypesCells(t *testing.T) {
	input := "name,amount,signup\nalice,10.5,2024-01-15\nbob,3,2024-02-01\n"

	tbl, err := Parse(strings.NewReader(input), dataset.FormatCSV)
	require.NoError(t, err)

	require.Equal(t, []string{"name", "amount", "signup"}, tbl.ColumnNames())
	assert.Equal(t, 2, tbl.RowCount())

	name, _ := tbl.Column("name")
	assert.Equal(t, table.KindString, name.Values[0].Kind)
	assert.Equal(t, "alice", name.Values[0].Text)

	amount, _ := tbl.Column("amount")
	assert.Equal(t, table.KindNumber, amount.Values[0].Kind)
	assert.Equal(t, 10.5, amount.Values[0].Number)

	signup, _ := tbl.Column("signup")
	assert.Equal(t, table.KindTime, signup.Values[0].Kind)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), signup.Values[0].Time)
}

func TestParseCSV_MissingMarkers(t *testing.T) {
	// The quoted empty string keeps encoding/csv from skipping the row.
	input := "x\n1\nNA\nn/a\nnull\nNaN\n\"\"\n5\n"

	tbl, err := Parse(strings.NewReader(input), dataset.FormatCSV)
	require.NoError(t, err)

	x, _ := tbl.Column("x")
	assert.Equal(t, 2, x.NonMissingCount())
	assert.Equal(t, 5, x.MissingCount())
}

func TestParseCSV_ShortRowsPadded(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5\n"

	tbl, err := Parse(strings.NewReader(input), dataset.FormatCSV)
	require.NoError(t, err)

	c, _ := tbl.Column("c")
	require.Len(t, c.Values, 2)
	assert.True(t, c.Values[1].Missing())
}

func TestParseCSV_DuplicateHeadersRenamed(t *testing.T) {
	input := "x,x,x\n1,2,3\n"

	tbl, err := Parse(strings.NewReader(input), dataset.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x.1", "x.2"}, tbl.ColumnNames())
}

func TestParseCSV_DuplicateHeaderCollidesWithSuffixedName(t *testing.T) {
	input := "x,x.1,x\n1,2,3\n"

	tbl, err := Parse(strings.NewReader(input), dataset.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x.1", "x.2"}, tbl.ColumnNames())
}

func TestParseCSV_HeaderOnlyIsEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b\n"), dataset.FormatCSV)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeEmptyInput))
}

func TestParseCSV_BareYearStaysNumeric(t *testing.T) {
	input := "year\n2024\n2025\n"

	tbl, err := Parse(strings.NewReader(input), dataset.FormatCSV)
	require.NoError(t, err)

	year, _ := tbl.Column("year")
	assert.Equal(t, table.KindNumber, year.Values[0].Kind)
	assert.Equal(t, 2024.0, year.Values[0].Number)
}

func TestParseJSON_RecordsArray(t *testing.T) {
	input := `[
		{"city": "berlin", "pop": 3.6},
		{"city": "paris", "pop": 2.1, "country": "fr"}
	]`

	tbl, err := Parse(strings.NewReader(input), dataset.FormatJSON)
	require.NoError(t, err)

	// Columns follow first-seen key order across records.
	assert.Equal(t, []string{"city", "pop", "country"}, tbl.ColumnNames())

	country, _ := tbl.Column("country")
	assert.True(t, country.Values[0].Missing())
	assert.Equal(t, "fr", country.Values[1].Text)
}

func TestParseJSON_ColumnsObject(t *testing.T) {
	input := `{"x": [1, 2, 3], "label": ["a", null, "c"]}`

	tbl, err := Parse(strings.NewReader(input), dataset.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "label"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.RowCount())

	label, _ := tbl.Column("label")
	assert.True(t, label.Values[1].Missing())
}

func TestParseJSON_UnevenColumnsPadded(t *testing.T) {
	input := `{"x": [1, 2, 3], "y": [9]}`

	tbl, err := Parse(strings.NewReader(input), dataset.FormatJSON)
	require.NoError(t, err)

	y, _ := tbl.Column("y")
	require.Len(t, y.Values, 3)
	assert.True(t, y.Values[2].Missing())
}

func TestParseJSON_EmptyArray(t *testing.T) {
	_, err := Parse(strings.NewReader("[]"), dataset.FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeEmptyInput))
}

func TestParseJSON_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"x": [1, 2`), dataset.FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInputFormat))
}

func TestParseJSON_ScalarRootRejected(t *testing.T) {
	_, err := Parse(strings.NewReader(`42`), dataset.FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInputFormat))
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), dataset.Format("parquet"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedMethod))
}

func TestParseExcel_GarbageInput(t *testing.T) {
	_, err := Parse(strings.NewReader("not a spreadsheet"), dataset.FormatXLSX)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInputFormat))
}

func TestParseLegacyExcel_GarbageInput(t *testing.T) {
	_, err := Parse(strings.NewReader("not a workbook"), dataset.FormatXLS)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInputFormat))
}

func TestParseTime_AcceptedLayouts(t *testing.T) {
	for _, s := range []string{
		"2024-01-15",
		"2024-01-15 10:30:00",
		"2024-01-15T10:30:00Z",
		"2024/01/15",
		"01/15/2024",
		"15-Jan-2024",
	} {
		_, ok := ParseTime(s)
		assert.True(t, ok, "expected %q to parse", s)
	}

	_, ok := ParseTime("tomorrow")
	assert.False(t, ok)
}
