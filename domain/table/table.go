package table

import (
	"time"
)

// ValueKind discriminates the typed cell values a column can hold
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindNumber
	KindString
	KindTime
)

// Value is a single typed cell. Exactly one of the payload fields is
// meaningful, selected by Kind; a KindMissing value carries no payload.
type Value struct {
	Kind   ValueKind
	Number float64
	Text   string
	Time   time.Time
}

// Missing reports whether the cell holds no value
func (v Value) Missing() bool {
	return v.Kind == KindMissing
}

// Raw returns the cell as a JSON-serializable value (nil for missing)
func (v Value) Raw() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindString:
		return v.Text
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return nil
	}
}

// Number creates a numeric cell
func Num(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// Str creates a string cell
func Str(s string) Value { return Value{Kind: KindString, Text: s} }

// Time creates a temporal cell
func Tim(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// Missing is the canonical missing-marker cell
var MissingValue = Value{Kind: KindMissing}

// Column is an ordered sequence of typed cells under a unique name
type Column struct {
	Name   string
	Values []Value
}

// NonMissingCount returns the number of cells holding a value
func (c *Column) NonMissingCount() int {
	n := 0
	for _, v := range c.Values {
		if !v.Missing() {
			n++
		}
	}
	return n
}

// MissingCount returns the number of missing-marker cells
func (c *Column) MissingCount() int {
	return len(c.Values) - c.NonMissingCount()
}

// Numbers returns the non-missing numeric values in row order
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Kind == KindNumber {
			out = append(out, v.Number)
		}
	}
	return out
}

// DistinctCount returns the number of distinct non-missing values
func (c *Column) DistinctCount() int {
	seen := make(map[interface{}]struct{}, len(c.Values))
	for _, v := range c.Values {
		if v.Missing() {
			continue
		}
		seen[v.Raw()] = struct{}{}
	}
	return len(seen)
}

// Table is an ordered sequence of equal-length named columns.
// Column names are unique within a table.
type Table struct {
	Columns []Column
}

// RowCount returns the shared column length
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Column finds a column by name
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether a column with the given name exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// MissingCells returns the total missing-marker count across all columns
func (t *Table) MissingCells() int {
	total := 0
	for i := range t.Columns {
		total += t.Columns[i].MissingCount()
	}
	return total
}
