package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "agriprep/internal/errors"
)

// ReadXLSX loads the first non-empty sheet of an Excel workbook into a Table
// and normalizes its header. The header row is the first row that carries at
// least two non-blank cells, which skips title banners some published
// workbooks put above the data.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	var rows [][]string
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(sheetRows) > 0 {
			rows = sheetRows
			break
		}
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("workbook %s has no data", path), nil)
	}

	headerIdx := -1
	for i, row := range rows {
		if countNonBlank(row) >= 2 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("workbook %s has no header row", path), nil)
	}

	table := &Table{Columns: rows[headerIdx], Provenance: path}
	for _, row := range rows[headerIdx+1:] {
		if countNonBlank(row) == 0 {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	NormalizeColumns(table)
	return table, nil
}

func countNonBlank(cells []string) int {
	n := 0
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}
