// Package xlsxtest builds workbook fixtures for tests.
package xlsxtest

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Formula is a cell value written as a formula, without the leading '='.
type Formula string

// Sheet is a fixture sheet. A nil value leaves the cell unset.
type Sheet struct {
	Name string
	Rows [][]any
}

// Write saves the sheets as name in dir, in order, and returns the path.
func Write(t testing.TB, dir, name string, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("Failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("Failed to add sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("Bad coordinates: %v", err)
				}
				if formula, ok := v.(Formula); ok {
					err = f.SetCellFormula(sheet.Name, cell, string(formula))
				} else {
					err = f.SetCellValue(sheet.Name, cell, v)
				}
				if err != nil {
					t.Fatalf("Failed to set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

// WriteTemp is Write into a fresh t.TempDir().
func WriteTemp(t testing.TB, name string, sheets ...Sheet) string {
	t.Helper()
	return Write(t, t.TempDir(), name, sheets...)
}
