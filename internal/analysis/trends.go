package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"datalens/adapters/tabular"
	"datalens/domain/table"
	"datalens/internal/errors"
)

// Slope band inside which a trend counts as stable
const stableSlopeBand = 0.01

// TrendReport describes the time behavior of a value column
type TrendReport struct {
	DateColumn    string     `json:"date_column"`
	ValueColumn   string     `json:"value_column"`
	DataPoints    int        `json:"data_points"`
	Direction     string     `json:"direction"`
	Slope         float64    `json:"slope"`
	RSquared      float64    `json:"r_squared"`
	PValue        float64    `json:"p_value"`
	GrowthRate    float64    `json:"growth_rate_percentage"`
	RollingMean7  []*float64 `json:"rolling_mean_7"`
	RollingMean30 []*float64 `json:"rolling_mean_30"`
	StartValue    float64    `json:"start_value"`
	EndValue      float64    `json:"end_value"`
	MinValue      float64    `json:"min_value"`
	MaxValue      float64    `json:"max_value"`
	MeanValue     float64    `json:"mean_value"`
}

// AnalyzeTrends fits an OLS line through a value column ordered by a
// date column. Either column may be named explicitly; otherwise the
// first suitable column wins.
func AnalyzeTrends(t *table.Table, dateColumn, valueColumn string) (*TrendReport, error) {
	dateCol, err := resolveDateColumn(t, dateColumn)
	if err != nil {
		return nil, err
	}
	valueCol, err := resolveValueColumn(t, valueColumn, dateCol.Name)
	if err != nil {
		return nil, err
	}

	type point struct {
		at    time.Time
		value float64
	}
	var points []point
	for i := range dateCol.Values {
		at, ok := dateAt(dateCol, i)
		if !ok || i >= len(valueCol.Values) {
			continue
		}
		v := valueCol.Values[i]
		if v.Kind != table.KindNumber {
			continue
		}
		points = append(points, point{at: at, value: v.Number})
	}
	sort.SliceStable(points, func(a, b int) bool { return points[a].at.Before(points[b].at) })

	if len(points) < 2 {
		return nil, errors.InsufficientData("trend analysis")
	}

	n := len(points)
	values := make([]float64, n)
	index := make([]float64, n)
	for i, p := range points {
		values[i] = p.value
		index[i] = float64(i)
	}

	_, slope := stat.LinearRegression(index, values, nil, false)
	r := stat.Correlation(index, values, nil)
	r2 := r * r
	if math.IsNaN(r2) {
		r2 = 0
	}

	direction := "stable"
	switch {
	case slope > stableSlopeBand:
		direction = "increasing"
	case slope < -stableSlopeBand:
		direction = "decreasing"
	}

	growth := 0.0
	if values[0] != 0 {
		growth = (values[n-1] - values[0]) / values[0] * 100
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)

	return &TrendReport{
		DateColumn:    dateCol.Name,
		ValueColumn:   valueCol.Name,
		DataPoints:    n,
		Direction:     direction,
		Slope:         slope,
		RSquared:      r2,
		PValue:        slopePValue(r2, n),
		GrowthRate:    growth,
		RollingMean7:  rollingMean(values, minInt(7, n)),
		RollingMean30: rollingMean(values, minInt(30, n)),
		StartValue:    values[0],
		EndValue:      values[n-1],
		MinValue:      min,
		MaxValue:      max,
		MeanValue:     mean,
	}, nil
}

// resolveDateColumn prefers an explicit name, then the first temporal
// column, then the first column whose values all read as dates.
func resolveDateColumn(t *table.Table, name string) (*table.Column, error) {
	if name != "" {
		col, ok := t.Column(name)
		if !ok {
			return nil, errors.ColumnNotFound(name)
		}
		return col, nil
	}
	for i := range t.Columns {
		col := &t.Columns[i]
		if ClassifyColumn(col) == ClassTemporal {
			return col, nil
		}
	}
	for i := range t.Columns {
		col := &t.Columns[i]
		if columnFullyDates(col) {
			return col, nil
		}
	}
	return nil, errors.NoApplicableColumns("no date column found in dataset")
}

func resolveValueColumn(t *table.Table, name, dateColumn string) (*table.Column, error) {
	if name != "" {
		col, ok := t.Column(name)
		if !ok {
			return nil, errors.ColumnNotFound(name)
		}
		return col, nil
	}
	for i := range t.Columns {
		col := &t.Columns[i]
		if col.Name == dateColumn {
			continue
		}
		if ClassifyColumn(col) == ClassNumeric && col.NonMissingCount() > 0 {
			return col, nil
		}
	}
	return nil, errors.NoApplicableColumns("no numeric column found in dataset")
}

func columnFullyDates(col *table.Column) bool {
	seen := false
	for i := range col.Values {
		v := col.Values[i]
		if v.Missing() {
			continue
		}
		if _, ok := dateAt(col, i); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func dateAt(col *table.Column, i int) (time.Time, bool) {
	v := col.Values[i]
	switch v.Kind {
	case table.KindTime:
		return v.Time, true
	case table.KindString:
		return tabular.ParseTime(v.Text)
	default:
		return time.Time{}, false
	}
}

// rollingMean returns one entry per input value; entries before the
// window is full stay nil so the output length matches the input.
func rollingMean(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			m := sum / float64(window)
			out[i] = &m
		}
	}
	return out
}

// slopePValue is the two-sided t-test on the regression slope
func slopePValue(r2 float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if r2 >= 1 {
		return 0
	}
	df := float64(n - 2)
	tStat := math.Sqrt(r2 * df / (1 - r2))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(tStat))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
