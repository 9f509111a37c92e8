package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"datalens/domain/table"
	"datalens/internal/errors"
)

// ColumnStatistics is the per-numeric-column summary record.
// Pointer fields are null in the JSON output when the quantity is
// undefined for the sample size (e.g. std of a single value) instead
// of failing the whole call.
type ColumnStatistics struct {
	Count             int      `json:"count"`
	Mean              float64  `json:"mean"`
	Median            float64  `json:"median"`
	Mode              float64  `json:"mode"`
	Std               *float64 `json:"std"`
	Variance          *float64 `json:"variance"`
	Min               float64  `json:"min"`
	Max               float64  `json:"max"`
	Range             float64  `json:"range"`
	Q25               float64  `json:"q25"`
	Q50               float64  `json:"q50"`
	Q75               float64  `json:"q75"`
	IQR               float64  `json:"iqr"`
	Skewness          *float64 `json:"skewness"`
	Kurtosis          *float64 `json:"kurtosis"`
	MissingCount      int      `json:"missing_count"`
	MissingPercentage float64  `json:"missing_percentage"`
}

// Distribution is the histogram block attached to a column's statistics
type Distribution struct {
	Labels   []string  `json:"labels"`
	Values   []int     `json:"values"`
	Bins     int       `json:"bins"`
	BinEdges []float64 `json:"bin_edges"`
}

// DescriptiveStatistics computes the summary record for every numeric
// column. Columns whose values are all missing are skipped; a table
// with no numeric columns at all is an explicit error so callers can
// tell "no numeric data" apart from "all-zero statistics".
func DescriptiveStatistics(t *table.Table, includeDistributions bool) (map[string]interface{}, error) {
	numericCols := NumericColumns(t)
	if len(numericCols) == 0 {
		return nil, errors.NoApplicableColumns("no numeric columns found in dataset")
	}

	rowCount := t.RowCount()
	statistics := make(map[string]ColumnStatistics)
	distributions := make(map[string]Distribution)

	for _, col := range numericCols {
		data := col.Numbers()
		if len(data) == 0 {
			continue
		}

		statistics[col.Name] = columnStatistics(data, rowCount)

		if includeDistributions {
			bins := sturgesBins(len(data))
			counts, edges := Histogram(data, bins)
			labels := make([]string, len(counts))
			for i := range counts {
				labels[i] = fmt.Sprintf("%.2f", (edges[i]+edges[i+1])/2)
			}
			distributions[col.Name] = Distribution{
				Labels:   labels,
				Values:   counts,
				Bins:     bins,
				BinEdges: edges,
			}
		}
	}

	result := map[string]interface{}{"statistics": statistics}
	if includeDistributions {
		result["distributions"] = distributions
	}
	return result, nil
}

func columnStatistics(data []float64, rowCount int) ColumnStatistics {
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	q25 := quantile(data, 0.25)
	q50 := quantile(data, 0.50)
	q75 := quantile(data, 0.75)

	var stdP, varP *float64
	if len(data) >= 2 {
		std, _ := stats.StandardDeviationSample(data)
		variance, _ := stats.SampleVariance(data)
		stdP, varP = &std, &variance
	}

	missing := rowCount - len(data)
	missingPct := 0.0
	if rowCount > 0 {
		missingPct = float64(missing) / float64(rowCount) * 100
	}

	return ColumnStatistics{
		Count:             len(data),
		Mean:              mean,
		Median:            median,
		Mode:              firstMode(data),
		Std:               stdP,
		Variance:          varP,
		Min:               min,
		Max:               max,
		Range:             max - min,
		Q25:               q25,
		Q50:               q50,
		Q75:               q75,
		IQR:               q75 - q25,
		Skewness:          sampleSkewness(data),
		Kurtosis:          sampleExcessKurtosis(data),
		MissingCount:      missing,
		MissingPercentage: missingPct,
	}
}

// sturgesBins applies Sturges' rule capped at 20 bins
func sturgesBins(n int) int {
	bins := int(math.Ceil(math.Log2(float64(n)) + 1))
	if bins < 1 {
		bins = 1
	}
	if bins > 20 {
		bins = 20
	}
	return bins
}

// Histogram bins data into equal-width bins over [min, max]. The
// maximum value falls into the last bin; a constant series gets a unit
// range centered on the value so the single bin is well-defined.
func Histogram(data []float64, bins int) (counts []int, edges []float64) {
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	if min == max {
		min -= 0.5
		max += 0.5
	}

	width := (max - min) / float64(bins)
	edges = make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		edges[i] = min + width*float64(i)
	}
	edges[bins] = max

	counts = make([]int, bins)
	for _, v := range data {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	return counts, edges
}

// quantile computes the p-quantile by linear interpolation between
// closest ranks. The statistics library's percentile uses a different
// convention, so quartiles are computed here to keep q25/q75 and the
// IQR outlier bounds consistent with the documented contract.
func quantile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// firstMode returns the first value achieving maximum frequency under
// ascending value order
func firstMode(data []float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	best := sorted[0]
	bestCount := 0
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			bestCount = j - i
			best = sorted[i]
		}
		i = j
	}
	return best
}

// sampleSkewness computes the adjusted Fisher-Pearson coefficient;
// undefined below three observations or for a constant series
func sampleSkewness(data []float64) *float64 {
	n := float64(len(data))
	if n < 3 {
		return nil
	}
	mean, _ := stats.Mean(data)
	m2, m3 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return nil
	}
	g1 := m3 / math.Pow(m2, 1.5)
	skew := g1 * math.Sqrt(n*(n-1)) / (n - 2)
	return &skew
}

// sampleExcessKurtosis computes the adjusted Fisher-Pearson excess
// kurtosis; undefined below four observations or for a constant series
func sampleExcessKurtosis(data []float64) *float64 {
	n := float64(len(data))
	if n < 4 {
		return nil
	}
	mean, _ := stats.Mean(data)
	m2, m4 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return nil
	}
	g2 := m4/(m2*m2) - 3
	kurt := ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
	return &kurt
}
