package tabular

import (
	"encoding/csv"
	"io"

	"datalens/domain/table"
	"datalens/internal/errors"
)

// parseCSV reads a comma-separated stream with a required header row
func parseCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	// Rows may legitimately vary in length; short rows become missing cells.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InputFormat("file could not be parsed as CSV", err)
	}

	if len(rows) == 0 {
		return nil, errors.EmptyInput("CSV file contains no rows")
	}

	return fromRows(rows[0], rows[1:])
}
