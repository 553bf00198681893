// Package parser loads spreadsheet workbooks into typed cell grids.
package parser

import (
	"fmt"
	"path/filepath"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/yamitzky/xlrd-go/xlrd"
)

// LoadOptions configures how sheets are read.
type LoadOptions struct {
	// Formulas attaches formula text to cells. Only xlsx workbooks carry
	// formulas; xls cells never have one.
	Formulas bool
}

// source is a format specific reader behind a Workbook.
type source interface {
	sheetNames() []string
	readSheet(name string, index int, opts LoadOptions) (*models.Sheet, error)
	close() error
}

// Workbook is an open spreadsheet file. It holds the underlying file handle
// until Close is called.
type Workbook struct {
	// Path is the path the workbook was opened from.
	Path string
	// Format is the detected container format ("xlsx" or "xls").
	Format string

	opts LoadOptions
	src  source
}

// Open opens the workbook at path. Corrupt containers and unsupported
// formats are reported as *models.UnreadableFileError.
func Open(path string, opts LoadOptions) (*Workbook, error) {
	format, err := xlrd.InspectFormat(path, nil)
	if err != nil {
		return nil, &models.UnreadableFileError{Path: path, Err: err}
	}

	var src source
	switch format {
	case "xlsx":
		src, err = openXLSX(path)
	case "xls":
		src, err = openXLS(path)
	case "":
		return nil, &models.UnreadableFileError{Path: path, Reason: "unrecognized format"}
	default:
		reason := fmt.Sprintf("%s is not supported", xlrd.FileFormatDescriptions[format])
		return nil, &models.UnreadableFileError{Path: path, Reason: reason}
	}
	if err != nil {
		return nil, &models.UnreadableFileError{Path: path, Reason: "corrupt " + format + " container", Err: err}
	}

	return &Workbook{Path: path, Format: format, opts: opts, src: src}, nil
}

// WithWorkbook opens path, calls fn and closes the workbook whether or not
// fn succeeds.
func WithWorkbook(path string, opts LoadOptions, fn func(*Workbook) error) (err error) {
	wb, err := Open(path, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(wb)
}

// BookName returns the file name of the workbook without its directory.
func (w *Workbook) BookName() string {
	return filepath.Base(w.Path)
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.src.sheetNames()
}

// SheetByIndex loads the sheet at the 0-based index.
func (w *Workbook) SheetByIndex(index int) (*models.Sheet, error) {
	names := w.src.sheetNames()
	if index < 0 || index >= len(names) {
		return nil, &models.SheetNotFoundError{Path: w.Path, Index: index}
	}
	return w.load(names[index], index)
}

// SheetByName loads the named sheet.
func (w *Workbook) SheetByName(name string) (*models.Sheet, error) {
	for i, n := range w.src.sheetNames() {
		if n == name {
			return w.load(n, i)
		}
	}
	return nil, &models.SheetNotFoundError{Path: w.Path, Name: name, Index: -1}
}

func (w *Workbook) load(name string, index int) (*models.Sheet, error) {
	sheet, err := w.src.readSheet(name, index, w.opts)
	if err != nil {
		return nil, &models.UnreadableFileError{
			Path:   w.Path,
			Reason: fmt.Sprintf("sheet %q", name),
			Err:    err,
		}
	}
	trimTrailingBlankRows(sheet)
	return sheet, nil
}

// Close releases the file handle.
func (w *Workbook) Close() error {
	if w.src == nil {
		return nil
	}
	err := w.src.close()
	w.src = nil
	return err
}

func trimTrailingBlankRows(sheet *models.Sheet) {
	n := len(sheet.Rows)
	for n > 0 && sheet.Rows[n-1].IsBlank() && !hasFormula(sheet.Rows[n-1]) {
		n--
	}
	sheet.Rows = sheet.Rows[:n]
}

func hasFormula(row models.Row) bool {
	for _, c := range row.Cells {
		if c.Formula != "" {
			return true
		}
	}
	return false
}
