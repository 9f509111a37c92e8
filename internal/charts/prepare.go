// Package charts turns tables into chart-ready payloads for the
// frontend. Every preparer validates its column names up front and
// returns plain maps the API layer serializes as-is.
package charts

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"datalens/domain/table"
	"datalens/internal/analysis"
	"datalens/internal/errors"
)

// Aggregations accepted by the bar chart preparer
const (
	AggSum   = "sum"
	AggMean  = "mean"
	AggCount = "count"
	AggMax   = "max"
	AggMin   = "min"
)

// Default caps applied by the API layer when the caller omits them
const (
	DefaultBarLimit      = 20
	DefaultPieTopN       = 10
	DefaultScatterSample = 1000
	DefaultHistogramBins = 20
)

// scatterSampleSeed keeps repeat downsampling deterministic
const scatterSampleSeed = 42

// Bar groups rows by a category column and aggregates a value column,
// sorted descending by the aggregate and truncated to limit bars.
func Bar(t *table.Table, xColumn, yColumn, aggregation string, limit int) (map[string]interface{}, error) {
	switch aggregation {
	case AggSum, AggMean, AggCount, AggMax, AggMin:
	default:
		return nil, errors.UnsupportedMethod("bar chart aggregation", aggregation)
	}
	xCol, ok := t.Column(xColumn)
	if !ok {
		return nil, errors.ColumnNotFound(xColumn)
	}
	yCol, ok := t.Column(yColumn)
	if !ok {
		return nil, errors.ColumnNotFound(yColumn)
	}

	groups, order := groupNumbers(xCol, yCol)

	labels := make([]string, 0, len(order))
	values := make([]float64, 0, len(order))
	for _, key := range order {
		agg, ok := aggregate(groups[key], aggregation)
		if !ok {
			continue
		}
		labels = append(labels, key)
		values = append(values, agg)
	}
	sortPairsDesc(labels, values)
	if limit > 0 && len(labels) > limit {
		labels = labels[:limit]
		values = values[:limit]
	}

	return map[string]interface{}{
		"type":        "bar",
		"labels":      labels,
		"values":      values,
		"aggregation": aggregation,
		"x_column":    xColumn,
		"y_column":    yColumn,
	}, nil
}

// Line emits one aligned series per y column over a shared x sequence.
// Rows missing any selected column are dropped.
func Line(t *table.Table, xColumn string, yColumns []string, sortByX bool) (map[string]interface{}, error) {
	xCol, ok := t.Column(xColumn)
	if !ok {
		return nil, errors.ColumnNotFound(xColumn)
	}
	yCols := make([]*table.Column, len(yColumns))
	for i, name := range yColumns {
		col, ok := t.Column(name)
		if !ok {
			return nil, errors.ColumnNotFound(name)
		}
		yCols[i] = col
	}

	var rows []int
	for r := range xCol.Values {
		if xCol.Values[r].Missing() {
			continue
		}
		complete := true
		for _, col := range yCols {
			if r >= len(col.Values) || col.Values[r].Missing() {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, r)
		}
	}
	if sortByX {
		sort.SliceStable(rows, func(a, b int) bool {
			return lessValue(xCol.Values[rows[a]], xCol.Values[rows[b]])
		})
	}

	xValues := make([]interface{}, len(rows))
	for i, r := range rows {
		xValues[i] = xCol.Values[r].Raw()
	}
	series := make([]map[string]interface{}, len(yCols))
	for i, col := range yCols {
		values := make([]interface{}, len(rows))
		for j, r := range rows {
			values[j] = col.Values[r].Raw()
		}
		series[i] = map[string]interface{}{
			"name":   col.Name,
			"values": values,
		}
	}

	return map[string]interface{}{
		"type":     "line",
		"x_values": xValues,
		"series":   series,
	}, nil
}

// Pie groups by a category column, keeps the topN largest slices and
// collapses the remainder into an "Other" bucket. Without a value
// column the slice size is the occurrence count.
func Pie(t *table.Table, categoryColumn, valueColumn string, topN int) (map[string]interface{}, error) {
	catCol, ok := t.Column(categoryColumn)
	if !ok {
		return nil, errors.ColumnNotFound(categoryColumn)
	}
	if topN < 1 {
		return nil, errors.ValidationError("top_n must be at least 1")
	}

	var labels []string
	var values []float64
	valueField := "count"

	if valueColumn == "" {
		counts := make(map[string]float64)
		var order []string
		for _, v := range catCol.Values {
			if v.Missing() {
				continue
			}
			key := valueLabel(v)
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
		for _, key := range order {
			labels = append(labels, key)
			values = append(values, counts[key])
		}
	} else {
		valCol, ok := t.Column(valueColumn)
		if !ok {
			return nil, errors.ColumnNotFound(valueColumn)
		}
		valueField = valueColumn
		groups, order := groupNumbers(catCol, valCol)
		for _, key := range order {
			sum, ok := aggregate(groups[key], AggSum)
			if !ok {
				continue
			}
			labels = append(labels, key)
			values = append(values, sum)
		}
	}
	sortPairsDesc(labels, values)

	if len(labels) > topN {
		other := 0.0
		for _, v := range values[topN:] {
			other += v
		}
		labels = append(labels[:topN], "Other")
		values = append(values[:topN], other)
	}

	return map[string]interface{}{
		"type":            "pie",
		"labels":          labels,
		"values":          values,
		"category_column": categoryColumn,
		"value_column":    valueField,
	}, nil
}

// Scatter selects x/y and optional color/size columns, drops rows
// missing any of them and downsamples deterministically past the cap.
func Scatter(t *table.Table, xColumn, yColumn, colorColumn, sizeColumn string, sampleSize int) (map[string]interface{}, error) {
	xCol, ok := t.Column(xColumn)
	if !ok {
		return nil, errors.ColumnNotFound(xColumn)
	}
	yCol, ok := t.Column(yColumn)
	if !ok {
		return nil, errors.ColumnNotFound(yColumn)
	}
	selected := []*table.Column{xCol, yCol}
	var colorCol, sizeCol *table.Column
	if colorColumn != "" {
		colorCol, ok = t.Column(colorColumn)
		if !ok {
			return nil, errors.ColumnNotFound(colorColumn)
		}
		selected = append(selected, colorCol)
	}
	if sizeColumn != "" {
		sizeCol, ok = t.Column(sizeColumn)
		if !ok {
			return nil, errors.ColumnNotFound(sizeColumn)
		}
		selected = append(selected, sizeCol)
	}

	var rows []int
	for r := 0; r < t.RowCount(); r++ {
		complete := true
		for _, col := range selected {
			if r >= len(col.Values) || col.Values[r].Missing() {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, r)
		}
	}

	if sampleSize > 0 && len(rows) > sampleSize {
		rng := rand.New(rand.NewSource(scatterSampleSeed))
		perm := rng.Perm(len(rows))[:sampleSize]
		sort.Ints(perm)
		sampled := make([]int, sampleSize)
		for i, p := range perm {
			sampled[i] = rows[p]
		}
		rows = sampled
	}

	rawColumn := func(col *table.Column) []interface{} {
		out := make([]interface{}, len(rows))
		for i, r := range rows {
			out[i] = col.Values[r].Raw()
		}
		return out
	}

	result := map[string]interface{}{
		"type":        "scatter",
		"x_values":    rawColumn(xCol),
		"y_values":    rawColumn(yCol),
		"x_column":    xColumn,
		"y_column":    yColumn,
		"point_count": len(rows),
	}
	if colorCol != nil {
		result["colors"] = rawColumn(colorCol)
		result["color_column"] = colorColumn
	}
	if sizeCol != nil {
		result["sizes"] = rawColumn(sizeCol)
		result["size_column"] = sizeColumn
	}
	return result, nil
}

// Heatmap prepares a correlation heatmap over the numeric columns.
// "correlation" is the only defined method.
func Heatmap(t *table.Table, method string) (map[string]interface{}, error) {
	if method != "correlation" {
		return nil, errors.UnsupportedMethod("heatmap", method)
	}

	names, grid, err := analysis.CorrelationGrid(t, analysis.MethodPearson)
	if err != nil {
		return nil, err
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, row := range grid {
		for _, entry := range row {
			if entry == nil {
				continue
			}
			minV = math.Min(minV, *entry)
			maxV = math.Max(maxV, *entry)
		}
	}

	return map[string]interface{}{
		"type":      "heatmap",
		"method":    method,
		"x_labels":  names,
		"y_labels":  names,
		"values":    grid,
		"min_value": minV,
		"max_value": maxV,
	}, nil
}

// Histogram bins one numeric column into a caller-supplied bin count
func Histogram(t *table.Table, column string, bins int) (map[string]interface{}, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, errors.ColumnNotFound(column)
	}
	if analysis.ClassifyColumn(col) != analysis.ClassNumeric {
		return nil, errors.NoApplicableColumns(fmt.Sprintf("column %q is not numeric", column))
	}
	if bins < 1 {
		return nil, errors.ValidationError("bins must be at least 1")
	}
	data := col.Numbers()
	if len(data) == 0 {
		return nil, errors.EmptyInput(fmt.Sprintf("column %q has no values", column))
	}

	counts, edges := analysis.Histogram(data, bins)
	labels := make([]string, len(counts))
	for i := range counts {
		labels[i] = fmt.Sprintf("%.2f-%.2f", edges[i], edges[i+1])
	}

	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	var std *float64
	if len(data) >= 2 {
		s, _ := stats.StandardDeviationSample(data)
		std = &s
	}

	return map[string]interface{}{
		"type":        "histogram",
		"column":      column,
		"labels":      labels,
		"values":      counts,
		"bin_edges":   edges,
		"total_count": len(data),
		"mean":        mean,
		"median":      median,
		"std":         std,
	}, nil
}

// grouped holds one group's numeric cells plus the count of all its
// non-missing value cells, numeric or not.
type grouped struct {
	nums       []float64
	nonMissing int
}

// groupNumbers buckets the value column by the label of the category
// column, tracking first-seen group order. Rows with a missing
// category are dropped the way a group-by drops null keys; count
// aggregation sees every non-missing value cell, not just numbers.
func groupNumbers(catCol, valCol *table.Column) (map[string]*grouped, []string) {
	groups := make(map[string]*grouped)
	var order []string
	for r := range catCol.Values {
		cv := catCol.Values[r]
		if cv.Missing() || r >= len(valCol.Values) {
			continue
		}
		key := valueLabel(cv)
		g, seen := groups[key]
		if !seen {
			g = &grouped{}
			groups[key] = g
			order = append(order, key)
		}
		vv := valCol.Values[r]
		if vv.Missing() {
			continue
		}
		g.nonMissing++
		if vv.Kind == table.KindNumber {
			g.nums = append(g.nums, vv.Number)
		}
	}
	return groups, order
}

func aggregate(g *grouped, aggregation string) (float64, bool) {
	if aggregation == AggCount {
		return float64(g.nonMissing), true
	}
	data := g.nums
	if len(data) == 0 {
		return 0, false
	}
	var v float64
	switch aggregation {
	case AggSum:
		v, _ = stats.Sum(data)
	case AggMean:
		v, _ = stats.Mean(data)
	case AggMax:
		v, _ = stats.Max(data)
	case AggMin:
		v, _ = stats.Min(data)
	}
	return v, true
}

// sortPairsDesc sorts labels and values together by value descending,
// ties keeping first-seen group order
func sortPairsDesc(labels []string, values []float64) {
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	sortedLabels := make([]string, len(labels))
	sortedValues := make([]float64, len(values))
	for i, j := range idx {
		sortedLabels[i] = labels[j]
		sortedValues[i] = values[j]
	}
	copy(labels, sortedLabels)
	copy(values, sortedValues)
}

// valueLabel renders a cell as a group label
func valueLabel(v table.Value) string {
	switch v.Kind {
	case table.KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case table.KindString:
		return v.Text
	case table.KindTime:
		return v.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// lessValue orders cells for x-axis sorting: numbers by value, times
// chronologically, strings lexically; mixed kinds order by kind
func lessValue(a, b table.Value) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case table.KindNumber:
		return a.Number < b.Number
	case table.KindTime:
		return a.Time.Before(b.Time)
	default:
		return a.Text < b.Text
	}
}
