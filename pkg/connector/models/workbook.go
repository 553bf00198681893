package models

// SheetData is the conversion result of one sheet.
type SheetData struct {
	// Name is the sheet name.
	Name string
	// Index is the 0-based position of the sheet in the workbook.
	Index int
	// Columns is the inferred schema.
	Columns []ColumnSchema
	// Records holds one record per data row.
	Records []Record
	// Err is the sheet-level failure, if any. A failed sheet has no records.
	Err error
}

// PartialCount returns the number of partial records.
func (s *SheetData) PartialCount() int {
	n := 0
	for _, r := range s.Records {
		if r.Partial {
			n++
		}
	}
	return n
}

// Diagnostics returns the diagnostics of every record in row order.
func (s *SheetData) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, r := range s.Records {
		out = append(out, r.Diagnostics...)
	}
	return out
}

// WorkbookData is the conversion result of one workbook.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string
	// Path is the source path.
	Path string
	// Sheets holds per-sheet results in workbook order.
	Sheets []SheetData
}

// Sheet returns the named sheet result.
func (w *WorkbookData) Sheet(name string) (*SheetData, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}
