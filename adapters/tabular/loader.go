// Package tabular parses uploaded files into in-memory tables.
//
// A small closed set of format parsers is selected by the declared
// format tag; nothing is inferred from file contents. All parsers
// produce the same typed table so the analysis layer never sees
// format-specific detail.
package tabular

import (
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"datalens/domain/dataset"
	"datalens/domain/table"
	"datalens/internal/errors"
)

// Load reads the file at path and parses it as the declared format
func Load(path string, format dataset.Format) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset file %s", path)
	}
	defer f.Close()

	start := time.Now()
	t, err := Parse(f, format)
	if err != nil {
		return nil, err
	}
	log.Printf("[Loader] %s file parsed in %.2fms (%d rows, %d columns)",
		strings.ToUpper(string(format)), float64(time.Since(start).Nanoseconds())/1e6,
		t.RowCount(), t.ColumnCount())
	return t, nil
}

// Parse parses a byte stream as the declared format
func Parse(r io.Reader, format dataset.Format) (*table.Table, error) {
	switch format {
	case dataset.FormatCSV:
		return parseCSV(r)
	case dataset.FormatXLSX:
		return parseExcel(r)
	case dataset.FormatXLS:
		return parseLegacyExcel(r)
	case dataset.FormatJSON:
		return parseJSON(r)
	default:
		return nil, errors.UnsupportedMethod("file format", string(format))
	}
}

// fromRows assembles a table from a header row plus raw string rows.
// Short rows are padded with missing markers; duplicate header names
// get a numeric suffix so names stay unique within the table.
func fromRows(headerRow []string, rows [][]string) (*table.Table, error) {
	headers := make([]string, len(headerRow))
	seen := make(map[string]int, len(headerRow))
	for i, h := range headerRow {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			// A generated name can itself collide with a later header
			// ("x", "x.1", "x"), so keep bumping the suffix until free.
			base := name
			for {
				name = base + "." + strconv.Itoa(n)
				n++
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		headers[i] = name
	}

	if len(rows) == 0 {
		return nil, errors.EmptyInput("file contains no data rows")
	}

	cols := make([]table.Column, len(headers))
	for i, name := range headers {
		cols[i] = table.Column{Name: name, Values: make([]table.Value, 0, len(rows))}
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				cols[i].Values = append(cols[i].Values, parseCell(row[i]))
			} else {
				cols[i].Values = append(cols[i].Values, table.MissingValue)
			}
		}
	}

	return &table.Table{Columns: cols}, nil
}

// acceptedTimeFormats is the fixed set of date/time layouts a cell may use.
// Checked in order; first match wins.
var acceptedTimeFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// ParseTime attempts to parse a string under the accepted date/time layouts
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range acceptedTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// missingMarkers are string cells treated as missing values
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// parseCell types a raw string cell. Numbers are tried before dates so
// bare years stay numeric; anything unparseable stays a string.
func parseCell(raw string) table.Value {
	s := strings.TrimSpace(raw)
	if missingMarkers[strings.ToLower(s)] {
		return table.MissingValue
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return table.Num(f)
	}
	if t, ok := ParseTime(s); ok {
		return table.Tim(t)
	}
	return table.Str(s)
}
