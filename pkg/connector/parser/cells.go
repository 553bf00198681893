package parser

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/yamitzky/xlrd-go/xlrd"
)

// dateLayouts are the text date forms recognized in string cells. Ambiguous
// day/month orders are deliberately absent.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
}

// missingMarkers are lower-cased text spellings of an absent value,
// including every spreadsheet error value (#N/A, #DIV/0!, ...).
var missingMarkers = func() map[string]bool {
	m := map[string]bool{"n/a": true, "na": true, "null": true, "-": true}
	for _, text := range xlrd.ErrorTextFromCode {
		m[strings.ToLower(text)] = true
	}
	return m
}()

// IsMissingMarker reports whether c is a text cell spelling out an absent
// value, such as "N/A" or "#DIV/0!".
func IsMissingMarker(c models.Cell) bool {
	return c.Kind == models.CellText && missingMarkers[strings.ToLower(strings.TrimSpace(c.Text))]
}

// ParseNumber parses s as a finite decimal number. Surrounding spaces are
// ignored; NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBool parses the boolean spellings accepted in text cells.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

// ParseDate parses s as an ISO-like date or date-time.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len("2006-01-02") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsNumber returns the numeric reading of a cell: number cells as is, text
// cells when they parse as a number.
func AsNumber(c models.Cell) (float64, bool) {
	switch c.Kind {
	case models.CellNumber:
		return c.Number, !math.IsNaN(c.Number) && !math.IsInf(c.Number, 0)
	case models.CellText:
		return ParseNumber(c.Text)
	}
	return 0, false
}

// AsDate returns the date reading of a cell: date cells as is, text cells
// when they parse as a date.
func AsDate(c models.Cell) (time.Time, bool) {
	switch c.Kind {
	case models.CellDate:
		return c.Time, true
	case models.CellText:
		return ParseDate(c.Text)
	}
	return time.Time{}, false
}

// AsBool returns the boolean reading of a cell: boolean cells as is, text
// cells spelled true/false/yes/no.
func AsBool(c models.Cell) (value, ok bool) {
	switch c.Kind {
	case models.CellBoolean:
		return c.Bool, true
	case models.CellText:
		return ParseBool(c.Text)
	}
	return false, false
}
