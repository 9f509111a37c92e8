package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/table"
	"datalens/internal/errors"
)

func TestDetectOutliers_IQRKnownScenario(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 1, 2, 3, 4, 5, 100),
	}}

	result, err := DetectOutliers(tbl, MethodIQR, 1.5)
	require.NoError(t, err)

	x, ok := result["x"]
	require.True(t, ok)
	assert.Equal(t, 1, x.Count)
	assert.Equal(t, []float64{100}, x.Values)
	require.NotNil(t, x.LowerBound)
	require.NotNil(t, x.UpperBound)
	assert.InDelta(t, -1.5, *x.LowerBound, 1e-9)
	assert.InDelta(t, 8.5, *x.UpperBound, 1e-9)
	require.NotNil(t, x.MinOutlier)
	assert.Equal(t, 100.0, *x.MinOutlier)
	assert.InDelta(t, 100.0/6.0, x.Percentage, 1e-9)
}

func TestDetectOutliers_Idempotent(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 3, 1, 4, 1, 5, 9, 2, 6, 5, 300),
	}}

	first, err := DetectOutliers(tbl, MethodIQR, 1.5)
	require.NoError(t, err)
	second, err := DetectOutliers(tbl, MethodIQR, 1.5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDetectOutliers_ZScoreConstantColumn(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("flat", 5, 5, 5, 5),
	}}

	result, err := DetectOutliers(tbl, MethodZScore, 3)
	require.NoError(t, err)

	flat := result["flat"]
	assert.Equal(t, 0, flat.Count)
	assert.Empty(t, flat.Values)
	assert.Nil(t, flat.MinOutlier)
}

func TestDetectOutliers_ZScoreFlagsExtremes(t *testing.T) {
	values := make([]float64, 0, 101)
	for i := 0; i < 100; i++ {
		values = append(values, float64(i%10))
	}
	values = append(values, 1000)
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", values...),
	}}

	result, err := DetectOutliers(tbl, MethodZScore, 3)
	require.NoError(t, err)

	x := result["x"]
	assert.Equal(t, 1, x.Count)
	assert.Equal(t, []float64{1000}, x.Values)
	assert.Equal(t, MethodZScore, x.Method)
	assert.Nil(t, x.LowerBound)
}

func TestDetectOutliers_UnknownMethodRejected(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 1, 2, 3),
	}}

	_, err := DetectOutliers(tbl, "mad", 1.5)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedMethod))
}

func TestDetectOutliers_NoNumericColumns(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		stringColumn("label", "a", "b"),
	}}

	_, err := DetectOutliers(tbl, MethodIQR, 1.5)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNoApplicableColumns))
}

func TestDetectOutliers_InvalidThreshold(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 1, 2, 3),
	}}

	_, err := DetectOutliers(tbl, MethodIQR, 0)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidationError))
}

func TestDetectOutliers_ValueListCapped(t *testing.T) {
	values := make([]float64, 0, 400)
	for i := 0; i < 200; i++ {
		values = append(values, 5)
	}
	for i := 0; i < 150; i++ {
		values = append(values, 10000+float64(i))
	}
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", values...),
	}}

	result, err := DetectOutliers(tbl, MethodZScore, 1)
	require.NoError(t, err)

	x := result["x"]
	assert.Equal(t, 150, x.Count)
	assert.Len(t, x.Values, 100)
	assert.InDelta(t, 150.0/350.0*100, x.Percentage, 1e-9)
}
