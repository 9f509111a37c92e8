package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/table"
	"datalens/internal/errors"
)

func TestCorrelationMatrix_PerfectPositive(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 1, 2, 3, 4),
		numericColumn("y", 2, 4, 6, 8),
	}}

	result, err := CorrelationMatrix(tbl, MethodPearson)
	require.NoError(t, err)

	matrix := result["matrix"].(map[string]map[string]*float64)
	require.NotNil(t, matrix["x"]["y"])
	assert.InDelta(t, 1.0, *matrix["x"]["y"], 1e-9)

	strong := result["strong_correlations"].([]StrongCorrelation)
	require.Len(t, strong, 1)
	assert.Equal(t, "x", strong[0].Column1)
	assert.Equal(t, "y", strong[0].Column2)
	assert.Equal(t, "strong positive", strong[0].Strength)
}

func TestCorrelationMatrix_SymmetryAndDiagonal(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("a", 3, 1, 4, 1, 5),
		numericColumn("b", 2, 7, 1, 8, 2),
		numericColumn("c", 9, 2, 6, 5, 3),
	}}

	result, err := CorrelationMatrix(tbl, MethodPearson)
	require.NoError(t, err)

	matrix := result["matrix"].(map[string]map[string]*float64)
	columns := result["columns"].([]string)
	assert.Equal(t, []string{"a", "b", "c"}, columns)

	for _, a := range columns {
		require.NotNil(t, matrix[a][a])
		assert.Equal(t, 1.0, *matrix[a][a])
		for _, b := range columns {
			assert.Equal(t, matrix[a][b], matrix[b][a])
		}
	}
}

func TestCorrelationMatrix_StrongNegative(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("up", 1, 2, 3, 4, 5),
		numericColumn("down", 10, 8, 6, 4, 2),
	}}

	result, err := CorrelationMatrix(tbl, MethodSpearman)
	require.NoError(t, err)

	strong := result["strong_correlations"].([]StrongCorrelation)
	require.Len(t, strong, 1)
	assert.Equal(t, "strong negative", strong[0].Strength)
}

func TestCorrelationMatrix_ConstantColumnIsNull(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 1, 2, 3),
		numericColumn("flat", 5, 5, 5),
	}}

	result, err := CorrelationMatrix(tbl, MethodPearson)
	require.NoError(t, err)

	matrix := result["matrix"].(map[string]map[string]*float64)
	assert.Nil(t, matrix["x"]["flat"])
	assert.Empty(t, result["strong_correlations"].([]StrongCorrelation))
}

func TestCorrelationMatrix_TooFewColumns(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 1, 2, 3),
		stringColumn("label", "a", "b", "c"),
	}}

	_, err := CorrelationMatrix(tbl, MethodPearson)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInsufficientData))
}

func TestCorrelationMatrix_UnknownMethod(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("x", 1, 2),
		numericColumn("y", 3, 4),
	}}

	_, err := CorrelationMatrix(tbl, "cosine")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedMethod))
}

func TestRankValues_AverageTies(t *testing.T) {
	ranks := rankValues([]float64{10, 20, 20, 30})
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks)
}
