package models

// Row is an ordered sequence of cells from one sheet row.
type Row struct {
	// R is the row index (1-based).
	R int
	// Cells holds the row's cells in column order. Cells[i].C == i+1.
	Cells []Cell
}

// Cell returns the cell at the 1-based column c, or an empty cell when the
// row is shorter.
func (r Row) Cell(c int) Cell {
	if c < 1 || c > len(r.Cells) {
		return EmptyCell(r.R, c)
	}
	return r.Cells[c-1]
}

// IsBlank reports whether every cell in the row is empty.
func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Width returns the 1-based index of the last non-empty cell, 0 for a
// blank row.
func (r Row) Width() int {
	for i := len(r.Cells) - 1; i >= 0; i-- {
		if !r.Cells[i].IsEmpty() {
			return i + 1
		}
	}
	return 0
}

// Sheet is a read-only view of one worksheet's cell grid.
type Sheet struct {
	// Name is the sheet name.
	Name string
	// Index is the 0-based position of the sheet in its workbook.
	Index int
	// Rows holds the rows in order, trailing blank rows trimmed.
	Rows []Row
}

// Header returns the first row of the sheet and whether one exists.
func (s *Sheet) Header() (Row, bool) {
	if len(s.Rows) == 0 {
		return Row{}, false
	}
	return s.Rows[0], true
}

// DataRows returns the non-blank rows after the header.
func (s *Sheet) DataRows() []Row {
	if len(s.Rows) < 2 {
		return nil
	}
	out := make([]Row, 0, len(s.Rows)-1)
	for _, r := range s.Rows[1:] {
		if r.IsBlank() {
			continue
		}
		out = append(out, r)
	}
	return out
}
