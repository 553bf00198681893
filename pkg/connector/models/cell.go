// Package models defines data structures for spreadsheet record extraction.
package models

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	// CellEmpty is a missing or blank cell.
	CellEmpty CellKind = iota
	// CellText is a string cell.
	CellText
	// CellNumber is a numeric cell.
	CellNumber
	// CellBoolean is a boolean cell.
	CellBoolean
	// CellDate is a date or date-time cell.
	CellDate
)

// String returns the lower-case kind name.
func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellBoolean:
		return "boolean"
	case CellDate:
		return "date"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Cell is a raw spreadsheet value. Exactly one payload field is meaningful,
// selected by Kind.
type Cell struct {
	// R is the row index (1-based).
	R int
	// C is the column index (1-based).
	C int
	// Kind selects the payload.
	Kind CellKind
	// Text is the payload of a CellText cell.
	Text string
	// Number is the payload of a CellNumber cell.
	Number float64
	// Bool is the payload of a CellBoolean cell.
	Bool bool
	// Time is the payload of a CellDate cell.
	Time time.Time
	// Formula is the formula text of the cell, without the leading '='.
	// Only populated when the loader is asked for formulas.
	Formula string
}

// TextCell returns a CellText cell.
func TextCell(r, c int, s string) Cell {
	return Cell{R: r, C: c, Kind: CellText, Text: s}
}

// NumberCell returns a CellNumber cell.
func NumberCell(r, c int, f float64) Cell {
	return Cell{R: r, C: c, Kind: CellNumber, Number: f}
}

// BoolCell returns a CellBoolean cell.
func BoolCell(r, c int, b bool) Cell {
	return Cell{R: r, C: c, Kind: CellBoolean, Bool: b}
}

// DateCell returns a CellDate cell.
func DateCell(r, c int, t time.Time) Cell {
	return Cell{R: r, C: c, Kind: CellDate, Time: t}
}

// EmptyCell returns a CellEmpty cell.
func EmptyCell(r, c int) Cell {
	return Cell{R: r, C: c, Kind: CellEmpty}
}

// IsEmpty reports whether the cell carries no value. Whitespace-only text
// counts as empty.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// String renders the cell the way a user would read it.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return FormatNumber(c.Number)
	case CellBoolean:
		return strconv.FormatBool(c.Bool)
	case CellDate:
		return FormatTime(c.Time)
	}
	return ""
}

// FormatNumber renders f in its shortest round-trippable form.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatTime renders t in canonical ISO form: a bare date when there is no
// time of day, RFC 3339 in UTC otherwise.
func FormatTime(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return u.Format(time.RFC3339Nano)
}
