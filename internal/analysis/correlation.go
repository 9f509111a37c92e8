package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"datalens/domain/table"
	"datalens/internal/errors"
)

// Correlation methods accepted by CorrelationMatrix
const (
	MethodPearson  = "pearson"
	MethodSpearman = "spearman"
	MethodKendall  = "kendall"
)

// strongCorrelationThreshold is the absolute coefficient above which a
// pair is reported as strongly correlated
const strongCorrelationThreshold = 0.7

// StrongCorrelation is one strongly-correlated column pair
type StrongCorrelation struct {
	Column1     string  `json:"column1"`
	Column2     string  `json:"column2"`
	Correlation float64 `json:"correlation"`
	Strength    string  `json:"strength"`
}

// CorrelationMatrix computes the pairwise correlation matrix over the
// numeric columns under the given method. Each pair is correlated over
// the rows where both columns hold a value; an undefined entry
// (constant column, fewer than two shared rows) is null in the output.
func CorrelationMatrix(t *table.Table, method string) (map[string]interface{}, error) {
	switch method {
	case MethodPearson, MethodSpearman, MethodKendall:
	default:
		return nil, errors.UnsupportedMethod("correlation", method)
	}

	numericCols := NumericColumns(t)
	if len(numericCols) < 2 {
		return nil, errors.InsufficientData("correlation analysis: need at least 2 numeric columns")
	}

	names := make([]string, len(numericCols))
	for i, c := range numericCols {
		names[i] = c.Name
	}

	matrix := make(map[string]map[string]*float64, len(names))
	for _, name := range names {
		matrix[name] = make(map[string]*float64, len(names))
	}

	var strong []StrongCorrelation
	one := 1.0
	for i := range numericCols {
		matrix[names[i]][names[i]] = &one
		for j := i + 1; j < len(numericCols); j++ {
			r := pairCorrelation(numericCols[i], numericCols[j], method)
			var entry *float64
			if !math.IsNaN(r) {
				v := r
				entry = &v
			}
			matrix[names[i]][names[j]] = entry
			matrix[names[j]][names[i]] = entry

			if entry != nil && math.Abs(r) > strongCorrelationThreshold {
				strength := "strong positive"
				if r < 0 {
					strength = "strong negative"
				}
				strong = append(strong, StrongCorrelation{
					Column1:     names[i],
					Column2:     names[j],
					Correlation: r,
					Strength:    strength,
				})
			}
		}
	}
	if strong == nil {
		strong = []StrongCorrelation{}
	}

	return map[string]interface{}{
		"matrix":              matrix,
		"columns":             names,
		"method":              method,
		"strong_correlations": strong,
	}, nil
}

// CorrelationGrid returns the pairwise correlation matrix as a dense
// 2D grid alongside the column names, in table order. Undefined
// entries are nil exactly as in CorrelationMatrix.
func CorrelationGrid(t *table.Table, method string) ([]string, [][]*float64, error) {
	switch method {
	case MethodPearson, MethodSpearman, MethodKendall:
	default:
		return nil, nil, errors.UnsupportedMethod("correlation", method)
	}

	numericCols := NumericColumns(t)
	if len(numericCols) < 2 {
		return nil, nil, errors.InsufficientData("correlation analysis: need at least 2 numeric columns")
	}

	names := make([]string, len(numericCols))
	for i, c := range numericCols {
		names[i] = c.Name
	}

	grid := make([][]*float64, len(numericCols))
	one := 1.0
	for i := range numericCols {
		grid[i] = make([]*float64, len(numericCols))
		grid[i][i] = &one
	}
	for i := range numericCols {
		for j := i + 1; j < len(numericCols); j++ {
			r := pairCorrelation(numericCols[i], numericCols[j], method)
			if !math.IsNaN(r) {
				v := r
				grid[i][j] = &v
				grid[j][i] = &v
			}
		}
	}
	return names, grid, nil
}

// pairCorrelation correlates two columns over their shared rows
func pairCorrelation(a, b *table.Column, method string) float64 {
	x, y := pairedNumbers(a, b)
	if len(x) < 2 {
		return math.NaN()
	}
	switch method {
	case MethodSpearman:
		return stat.Correlation(rankValues(x), rankValues(y), nil)
	case MethodKendall:
		return stat.Kendall(x, y, nil)
	default:
		return stat.Correlation(x, y, nil)
	}
}

// pairedNumbers extracts the aligned numeric values of rows where both
// columns hold a value
func pairedNumbers(a, b *table.Column) (x, y []float64) {
	n := len(a.Values)
	if len(b.Values) < n {
		n = len(b.Values)
	}
	for i := 0; i < n; i++ {
		if a.Values[i].Kind == table.KindNumber && b.Values[i].Kind == table.KindNumber {
			x = append(x, a.Values[i].Number)
			y = append(y, b.Values[i].Number)
		}
	}
	return x, y
}

// rankValues converts values to ranks, averaging ties
func rankValues(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return data[idx[i]] < data[idx[j]] })

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && data[idx[j]] == data[idx[i]] {
			j++
		}
		avgRank := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avgRank
		}
		i = j
	}
	return ranks
}
