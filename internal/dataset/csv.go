package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	apperrors "agriprep/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV loads a CSV file into a Table and normalizes its header to the
// canonical column names. A UTF-8 BOM is tolerated; ragged rows are kept and
// padded on access rather than rejected, since the published dataset copies
// contain the occasional short row.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("open csv %s", path), err)
	}
	defer f.Close()

	table, err := ParseCSV(f)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("parse csv %s", path), err)
	}
	table.Provenance = path
	return table, nil
}

// ParseCSV reads CSV content from r into a Table. The first record is the
// header.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv content: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv content is empty")
	}

	table := &Table{Columns: records[0]}
	for _, record := range records[1:] {
		table.Rows = append(table.Rows, record)
	}
	NormalizeColumns(table)
	return table, nil
}
