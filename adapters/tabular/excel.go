package tabular

import (
	"bytes"
	"io"

	xlsbiff "github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"datalens/domain/table"
	"datalens/internal/errors"
)

// parseExcel reads the first worksheet of an OOXML spreadsheet container
func parseExcel(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.InputFormat("file could not be parsed as a spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.EmptyInput("spreadsheet contains no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.InputFormat("failed to read worksheet rows", err)
	}

	if len(rows) == 0 {
		return nil, errors.EmptyInput("worksheet contains no rows")
	}

	return fromRows(rows[0], rows[1:])
}

// parseLegacyExcel reads the first worksheet of a BIFF (.xls) workbook.
// The BIFF reader needs random access, so the stream is buffered first.
func parseLegacyExcel(r io.Reader) (*table.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read workbook stream")
	}

	wb, err := xlsbiff.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, errors.InputFormat("file could not be parsed as a legacy workbook", err)
	}
	if wb.NumSheets() == 0 {
		return nil, errors.EmptyInput("workbook contains no worksheets")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.EmptyInput("workbook contains no worksheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol()+1)
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return nil, errors.EmptyInput("worksheet contains no rows")
	}

	return fromRows(rows[0], rows[1:])
}
