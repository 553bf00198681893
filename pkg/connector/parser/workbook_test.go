package parser

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kavithaselva95/excel-connector/internal/xlsxtest"
	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

func TestOpenXLSX(t *testing.T) {
	day := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	path := xlsxtest.WriteTemp(t, "book.xlsx",
		xlsxtest.Sheet{Name: "Data", Rows: [][]any{
			{"id", "amount", "when", "flag", "note"},
			{1, "10.5", day, true, "hello"},
			{2, 20.25, "2023-02-01", false, nil},
		}},
		xlsxtest.Sheet{Name: "Other", Rows: [][]any{{"x"}}},
	)

	wb, err := Open(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer wb.Close()

	if wb.Format != "xlsx" {
		t.Errorf("Expected format xlsx, got %q", wb.Format)
	}
	if wb.BookName() != "book.xlsx" {
		t.Errorf("Expected book name book.xlsx, got %q", wb.BookName())
	}
	names := wb.SheetNames()
	if len(names) != 2 || names[0] != "Data" || names[1] != "Other" {
		t.Fatalf("Unexpected sheet names: %v", names)
	}

	sheet, err := wb.SheetByName("Data")
	if err != nil {
		t.Fatalf("SheetByName failed: %v", err)
	}
	if len(sheet.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(sheet.Rows))
	}

	row := sheet.Rows[1]
	if row.R != 2 {
		t.Errorf("Expected row index 2, got %d", row.R)
	}
	checks := []struct {
		col  int
		kind models.CellKind
		text string
	}{
		{1, models.CellNumber, "1"},
		{2, models.CellText, "10.5"},
		{3, models.CellDate, "2023-01-15"},
		{4, models.CellBoolean, "true"},
		{5, models.CellText, "hello"},
	}
	for _, c := range checks {
		cell := row.Cell(c.col)
		if cell.Kind != c.kind {
			t.Errorf("Column %d: expected %s cell, got %s", c.col, c.kind, cell.Kind)
		}
		if cell.String() != c.text {
			t.Errorf("Column %d: expected %q, got %q", c.col, c.text, cell.String())
		}
		if cell.R != 2 || cell.C != c.col {
			t.Errorf("Column %d: wrong coordinates R%dC%d", c.col, cell.R, cell.C)
		}
	}

	if got := sheet.Rows[2].Cell(5); !got.IsEmpty() {
		t.Errorf("Expected empty cell, got %v", got)
	}
	if got := sheet.Rows[2].Cell(2); got.Kind != models.CellNumber || got.Number != 20.25 {
		t.Errorf("Expected number 20.25, got %v", got)
	}
}

func TestSheetByIndex(t *testing.T) {
	path := xlsxtest.WriteTemp(t, "book.xlsx",
		xlsxtest.Sheet{Name: "First", Rows: [][]any{{"a"}, {1}}},
		xlsxtest.Sheet{Name: "Second", Rows: [][]any{{"b"}, {2}}},
	)

	err := WithWorkbook(path, LoadOptions{}, func(wb *Workbook) error {
		sheet, err := wb.SheetByIndex(1)
		if err != nil {
			return err
		}
		if sheet.Name != "Second" || sheet.Index != 1 {
			t.Errorf("Expected Second at index 1, got %s at %d", sheet.Name, sheet.Index)
		}

		_, err = wb.SheetByIndex(5)
		var notFound *models.SheetNotFoundError
		if !errors.As(err, &notFound) || notFound.Index != 5 {
			t.Errorf("Expected SheetNotFoundError for index 5, got %v", err)
		}

		_, err = wb.SheetByName("Missing")
		if !errors.Is(err, models.ErrSheetNotFound) {
			t.Errorf("Expected ErrSheetNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithWorkbook failed: %v", err)
	}
}

func TestWithWorkbookPropagatesError(t *testing.T) {
	path := xlsxtest.WriteTemp(t, "book.xlsx", xlsxtest.Sheet{Name: "S", Rows: [][]any{{"a"}}})
	want := errors.New("boom")

	var seen *Workbook
	err := WithWorkbook(path, LoadOptions{}, func(wb *Workbook) error {
		seen = wb
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Expected callback error, got %v", err)
	}
	if seen.src != nil {
		t.Error("Expected workbook to be closed")
	}
}

func TestOpenUnreadable(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.xlsx")
	if err := os.WriteFile(garbage, []byte("this is not a spreadsheet"), 0644); err != nil {
		t.Fatal(err)
	}

	plainZip := filepath.Join(dir, "archive.xlsx")
	zf, err := os.Create(plainZip)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(zf)
	w, _ := zw.Create("readme.txt")
	w.Write([]byte("hello"))
	zw.Close()
	zf.Close()

	for _, path := range []string{garbage, plainZip, filepath.Join(dir, "missing.xlsx")} {
		_, err := Open(path, LoadOptions{})
		var unreadable *models.UnreadableFileError
		if !errors.As(err, &unreadable) {
			t.Errorf("Open(%s): expected UnreadableFileError, got %v", filepath.Base(path), err)
			continue
		}
		if unreadable.Path != path {
			t.Errorf("Expected path %s, got %s", path, unreadable.Path)
		}
	}
}

func TestTrailingBlankRowsTrimmed(t *testing.T) {
	path := xlsxtest.WriteTemp(t, "book.xlsx", xlsxtest.Sheet{Name: "S", Rows: [][]any{
		{"a"},
		{1},
		{nil},
		{"  "},
	}})

	wb, err := Open(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer wb.Close()

	sheet, err := wb.SheetByIndex(0)
	if err != nil {
		t.Fatalf("SheetByIndex failed: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Errorf("Expected 2 rows after trimming, got %d", len(sheet.Rows))
	}
}

func TestFormulasLoaded(t *testing.T) {
	path := xlsxtest.WriteTemp(t, "book.xlsx", xlsxtest.Sheet{Name: "S", Rows: [][]any{
		{"a", "b", "total"},
		{1, 2, xlsxtest.Formula("A2+B2")},
	}})

	for _, withFormulas := range []bool{false, true} {
		wb, err := Open(path, LoadOptions{Formulas: withFormulas})
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		sheet, err := wb.SheetByIndex(0)
		wb.Close()
		if err != nil {
			t.Fatalf("SheetByIndex failed: %v", err)
		}

		got := sheet.Rows[1].Cell(3).Formula
		want := ""
		if withFormulas {
			want = "A2+B2"
		}
		if got != want {
			t.Errorf("Formulas=%v: expected formula %q, got %q", withFormulas, want, got)
		}
	}
}
