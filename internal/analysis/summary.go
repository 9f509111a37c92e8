package analysis

import (
	"fmt"
	"strings"

	"datalens/domain/table"
	"datalens/internal/errors"
)

// Summarize composes the dataset overview, the full descriptive
// statistics block and a data-quality score card. On a table with no
// numeric columns the statistics block is null and the overview's
// numeric column count carries the signal.
func Summarize(t *table.Table) (map[string]interface{}, error) {
	profiles := Classify(t)

	numeric, categorical, temporal := 0, 0, 0
	for _, p := range profiles {
		switch p.Type {
		case ClassNumeric:
			numeric++
		case ClassTemporal:
			temporal++
		default:
			categorical++
		}
	}

	rows := t.RowCount()
	cells := rows * t.ColumnCount()
	missing := t.MissingCells()
	missingPct := 0.0
	if cells > 0 {
		missingPct = float64(missing) / float64(cells) * 100
	}
	duplicates := duplicateRows(t)

	var statistics map[string]interface{}
	stats, err := DescriptiveStatistics(t, true)
	switch {
	case err == nil:
		statistics = stats
	case errors.HasCode(err, errors.CodeNoApplicableColumns):
		statistics = nil
	default:
		return nil, err
	}

	uniqueness := 0.0
	if rows > 0 {
		uniqueness = float64(rows-duplicates) / float64(rows) * 100
	}

	return map[string]interface{}{
		"overview": map[string]interface{}{
			"total_rows":          rows,
			"total_columns":       t.ColumnCount(),
			"numeric_columns":     numeric,
			"categorical_columns": categorical,
			"datetime_columns":    temporal,
			"missing_cells":       missing,
			"missing_percentage":  missingPct,
			"duplicate_rows":      duplicates,
			"memory_usage_mb":     approximateMemoryMB(t),
		},
		"statistics": statistics,
		"data_quality": map[string]interface{}{
			"completeness": 100 - missingPct,
			"uniqueness":   uniqueness,
		},
	}, nil
}

// duplicateRows counts rows that repeat an earlier row exactly
func duplicateRows(t *table.Table) int {
	rows := t.RowCount()
	if rows == 0 {
		return 0
	}
	seen := make(map[string]struct{}, rows)
	duplicates := 0
	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.Reset()
		for c := range t.Columns {
			if r < len(t.Columns[c].Values) {
				fmt.Fprintf(&b, "%#v", t.Columns[c].Values[r].Raw())
			}
			b.WriteByte('\x1f')
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			duplicates++
		} else {
			seen[key] = struct{}{}
		}
	}
	return duplicates
}
