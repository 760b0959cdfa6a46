package dataset

import "fmt"

// Table is a raw, untyped tabular dataset: an ordered header and string
// cells. It is what the readers produce and the cleaning stage consumes;
// nothing downstream of cleaning sees a Table. Provenance records where the
// data came from (file path or URL) for the model document.
type Table struct {
	Columns    []string
	Rows       [][]string
	Provenance string
}

// NewTable creates an empty table with the given header.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the cell at (row, column name). Rows shorter than the header
// read as empty cells, matching how ragged CSV rows are tolerated.
func (t *Table) Cell(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	cells := t.Rows[row]
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// SetCell writes the cell at (row, column name), padding short rows.
func (t *Table) SetCell(row int, column, value string) error {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return fmt.Errorf("column %q does not exist", column)
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	for len(t.Rows[row]) <= idx {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][idx] = value
	return nil
}

// AppendRow adds a data row. Short rows are padded to the header width so
// that positional access stays safe.
func (t *Table) AppendRow(cells ...string) {
	for len(cells) < len(t.Columns) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
}

// Column returns a copy of the named column's cells, one per row. A missing
// column returns nil.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values
}

// Filter returns a new table keeping only rows for which keep returns true.
// Header and provenance are shared values, cells are not copied.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{Columns: t.Columns, Provenance: t.Provenance}
	for i := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}
