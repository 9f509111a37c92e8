// Package analysis holds the pure computation layer: every function
// takes an in-memory table plus request parameters and returns a
// JSON-serializable result or one of the structured error kinds.
// Nothing here performs I/O or holds state between calls.
package analysis

import (
	"fmt"

	"datalens/domain/table"
)

// ColumnClass is the derived analysis class of a column
type ColumnClass string

const (
	ClassNumeric     ColumnClass = "numeric"
	ClassCategorical ColumnClass = "categorical"
	ClassTemporal    ColumnClass = "temporal"
)

// ColumnProfile describes one column for the dataset info report
type ColumnProfile struct {
	Name         string      `json:"name"`
	Type         ColumnClass `json:"type"`
	NonNullCount int         `json:"non_null_count"`
	NullCount    int         `json:"null_count"`
	UniqueCount  int         `json:"unique_count"`
}

// ClassifyColumn derives the class of a single column.
//
// The decision is an ordered predicate chain over the cell kinds, first
// match wins: a column with no values at all counts as numeric (an
// all-missing column carries no contrary evidence), then all-numeric,
// then all-temporal; everything else is categorical. Mixed or
// unparseable content always falls through to categorical, never an
// error.
func ClassifyColumn(c *table.Column) ColumnClass {
	numbers, times, others := 0, 0, 0
	for _, v := range c.Values {
		switch v.Kind {
		case table.KindMissing:
		case table.KindNumber:
			numbers++
		case table.KindTime:
			times++
		default:
			others++
		}
	}
	nonMissing := numbers + times + others
	switch {
	case nonMissing == 0:
		return ClassNumeric
	case numbers == nonMissing:
		return ClassNumeric
	case times == nonMissing:
		return ClassTemporal
	default:
		return ClassCategorical
	}
}

// Classify profiles every column of the table in table order
func Classify(t *table.Table) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, t.ColumnCount())
	for i := range t.Columns {
		c := &t.Columns[i]
		nonNull := c.NonMissingCount()
		profiles = append(profiles, ColumnProfile{
			Name:         c.Name,
			Type:         ClassifyColumn(c),
			NonNullCount: nonNull,
			NullCount:    len(c.Values) - nonNull,
			UniqueCount:  c.DistinctCount(),
		})
	}
	return profiles
}

// columnsOfClass returns pointers to the table's columns of one class,
// in table order
func columnsOfClass(t *table.Table, class ColumnClass) []*table.Column {
	var out []*table.Column
	for i := range t.Columns {
		if ClassifyColumn(&t.Columns[i]) == class {
			out = append(out, &t.Columns[i])
		}
	}
	return out
}

// NumericColumns returns the numeric columns in table order
func NumericColumns(t *table.Table) []*table.Column {
	return columnsOfClass(t, ClassNumeric)
}

// TemporalColumns returns the temporal columns in table order
func TemporalColumns(t *table.Table) []*table.Column {
	return columnsOfClass(t, ClassTemporal)
}

// TableInfo builds the dataset info report used by the datasets API
func TableInfo(t *table.Table) map[string]interface{} {
	profiles := Classify(t)

	var numeric, categorical, temporal []string
	for _, p := range profiles {
		switch p.Type {
		case ClassNumeric:
			numeric = append(numeric, p.Name)
		case ClassTemporal:
			temporal = append(temporal, p.Name)
		default:
			categorical = append(categorical, p.Name)
		}
	}

	return map[string]interface{}{
		"row_count":           t.RowCount(),
		"column_count":        t.ColumnCount(),
		"columns":             profiles,
		"memory_usage":        fmt.Sprintf("%.2f MB", approximateMemoryMB(t)),
		"numeric_columns":     emptyIfNil(numeric),
		"categorical_columns": emptyIfNil(categorical),
		"datetime_columns":    emptyIfNil(temporal),
	}
}

// approximateMemoryMB estimates the in-memory footprint of the table
func approximateMemoryMB(t *table.Table) float64 {
	bytes := 0
	for i := range t.Columns {
		for _, v := range t.Columns[i].Values {
			switch v.Kind {
			case table.KindNumber:
				bytes += 8
			case table.KindTime:
				bytes += 24
			case table.KindString:
				bytes += 16 + len(v.Text)
			default:
				bytes += 1
			}
		}
	}
	return float64(bytes) / (1024 * 1024)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
