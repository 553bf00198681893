package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreadableFile is matched by every UnreadableFileError.
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrSheetNotFound is matched by every SheetNotFoundError.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrDuplicateColumn is matched by every DuplicateColumnError.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrWrite is matched by every WriteError.
	ErrWrite = errors.New("write failed")
)

// UnreadableFileError reports a workbook that could not be opened: the
// container is corrupt or its format is not supported.
type UnreadableFileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *UnreadableFileError) Error() string {
	msg := fmt.Sprintf("unreadable file %q", e.Path)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

func (e *UnreadableFileError) Is(target error) bool { return target == ErrUnreadableFile }

// SheetNotFoundError reports a sheet lookup by name or index that matched
// nothing. Index is -1 for lookups by name.
type SheetNotFoundError struct {
	Path  string
	Name  string
	Index int
}

func (e *SheetNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("sheet %q not found in %q", e.Name, e.Path)
	}
	return fmt.Sprintf("sheet index %d out of range in %q", e.Index, e.Path)
}

func (e *SheetNotFoundError) Is(target error) bool { return target == ErrSheetNotFound }

// DuplicateColumnError reports two header cells with the same name.
type DuplicateColumnError struct {
	Sheet  string
	Name   string
	First  int
	Second int
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("sheet %q: duplicate column %q at columns %d and %d", e.Sheet, e.Name, e.First, e.Second)
}

func (e *DuplicateColumnError) Is(target error) bool { return target == ErrDuplicateColumn }

// WriteError reports an output failure. Writes are never retried.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write failed: %v", e.Err)
	}
	return fmt.Sprintf("write %q failed: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
