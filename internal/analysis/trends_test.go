package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/table"
	"datalens/internal/errors"
)

func dateColumn(name string, start time.Time, days int) table.Column {
	col := table.Column{Name: name}
	for i := 0; i < days; i++ {
		col.Values = append(col.Values, table.Tim(start.AddDate(0, 0, i)))
	}
	return col
}

func TestAnalyzeTrends_IncreasingSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := &table.Table{Columns: []table.Column{
		dateColumn("date", start, 5),
		numericColumn("value", 10, 20, 30, 40, 50),
	}}

	report, err := AnalyzeTrends(tbl, "", "")
	require.NoError(t, err)

	assert.Equal(t, "date", report.DateColumn)
	assert.Equal(t, "value", report.ValueColumn)
	assert.Equal(t, 5, report.DataPoints)
	assert.Equal(t, "increasing", report.Direction)
	assert.InDelta(t, 10.0, report.Slope, 1e-9)
	assert.InDelta(t, 400.0, report.GrowthRate, 1e-9)
	assert.InDelta(t, 1.0, report.RSquared, 1e-9)
	assert.InDelta(t, 0.0, report.PValue, 1e-9)
	assert.Equal(t, 10.0, report.StartValue)
	assert.Equal(t, 50.0, report.EndValue)
	assert.Equal(t, 10.0, report.MinValue)
	assert.Equal(t, 50.0, report.MaxValue)
	assert.InDelta(t, 30.0, report.MeanValue, 1e-9)
}

func TestAnalyzeTrends_SortsByDate(t *testing.T) {
	// Rows arrive shuffled; the fit must see the chronological order.
	d := func(day int) table.Value {
		return table.Tim(time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC))
	}
	tbl := &table.Table{Columns: []table.Column{
		{Name: "when", Values: []table.Value{d(3), d(1), d(2)}},
		numericColumn("metric", 30, 10, 20),
	}}

	report, err := AnalyzeTrends(tbl, "", "")
	require.NoError(t, err)

	assert.Equal(t, 10.0, report.StartValue)
	assert.Equal(t, 30.0, report.EndValue)
	assert.Equal(t, "increasing", report.Direction)
}

func TestAnalyzeTrends_RollingMeans(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := &table.Table{Columns: []table.Column{
		dateColumn("date", start, 10),
		numericColumn("value", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
	}}

	report, err := AnalyzeTrends(tbl, "date", "value")
	require.NoError(t, err)

	require.Len(t, report.RollingMean7, 10)
	for i := 0; i < 6; i++ {
		assert.Nil(t, report.RollingMean7[i])
	}
	require.NotNil(t, report.RollingMean7[6])
	assert.InDelta(t, 4.0, *report.RollingMean7[6], 1e-9)

	// Window 30 shrinks to the series length, so only the last entry
	// is defined.
	require.Len(t, report.RollingMean30, 10)
	for i := 0; i < 9; i++ {
		assert.Nil(t, report.RollingMean30[i])
	}
	require.NotNil(t, report.RollingMean30[9])
	assert.InDelta(t, 5.5, *report.RollingMean30[9], 1e-9)
}

func TestAnalyzeTrends_StableAndDecreasing(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	flat := &table.Table{Columns: []table.Column{
		dateColumn("date", start, 4),
		numericColumn("value", 5, 5, 5, 5),
	}}
	report, err := AnalyzeTrends(flat, "", "")
	require.NoError(t, err)
	assert.Equal(t, "stable", report.Direction)
	assert.InDelta(t, 0.0, report.GrowthRate, 1e-9)

	falling := &table.Table{Columns: []table.Column{
		dateColumn("date", start, 4),
		numericColumn("value", 40, 30, 20, 10),
	}}
	report, err = AnalyzeTrends(falling, "", "")
	require.NoError(t, err)
	assert.Equal(t, "decreasing", report.Direction)
}

func TestAnalyzeTrends_GrowthFromZeroBase(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := &table.Table{Columns: []table.Column{
		dateColumn("date", start, 3),
		numericColumn("value", 0, 5, 10),
	}}

	report, err := AnalyzeTrends(tbl, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.GrowthRate)
}

func TestAnalyzeTrends_MissingPairsDropped(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := dateColumn("date", start, 4)
	values := table.Column{Name: "value", Values: []table.Value{
		table.Num(10), table.MissingValue, table.Num(30), table.Num(40),
	}}
	tbl := &table.Table{Columns: []table.Column{dates, values}}

	report, err := AnalyzeTrends(tbl, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, report.DataPoints)
}

func TestAnalyzeTrends_TooFewPoints(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := &table.Table{Columns: []table.Column{
		dateColumn("date", start, 1),
		numericColumn("value", 10),
	}}

	_, err := AnalyzeTrends(tbl, "", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInsufficientData))
}

func TestAnalyzeTrends_NoDateColumn(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		stringColumn("city", "berlin", "paris"),
	}}

	_, err := AnalyzeTrends(tbl, "", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNoApplicableColumns))
}

func TestAnalyzeTrends_ExplicitColumnMissing(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := &table.Table{Columns: []table.Column{
		dateColumn("date", start, 3),
		numericColumn("value", 1, 2, 3),
	}}

	_, err := AnalyzeTrends(tbl, "timestamp", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeColumnNotFound))
}
