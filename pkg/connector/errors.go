package connector

import (
	"fmt"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

// Sentinels matched by errors.Is.
var (
	ErrUnreadableFile  = models.ErrUnreadableFile
	ErrSheetNotFound   = models.ErrSheetNotFound
	ErrDuplicateColumn = models.ErrDuplicateColumn
	ErrWrite           = models.ErrWrite
)

// UnreadableFileError is re-exported from models. It aborts the whole run.
//
//	var ue *connector.UnreadableFileError
//	if errors.As(err, &ue) {
//	    fmt.Println("cannot open", ue.Path)
//	}
type UnreadableFileError = models.UnreadableFileError

// SheetNotFoundError is re-exported from models. It fails one sheet.
type SheetNotFoundError = models.SheetNotFoundError

// DuplicateColumnError is re-exported from models. It fails one sheet.
type DuplicateColumnError = models.DuplicateColumnError

// WriteError is re-exported from models. It aborts the whole run.
type WriteError = models.WriteError

// ExtractionError represents a sheet-level failure within a workbook.
type ExtractionError struct {
	BookName  string
	SheetName string
	Component string // "loader", "schema"
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in %s sheet %q (%s): %v", e.BookName, e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(bookName, sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		BookName:  bookName,
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
