// Package schema infers column schemas from a sheet's header row and a
// sample of its data rows.
package schema

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

// Header returns the column names of the sheet's first row. Names are
// trimmed and NFC normalized; blank header cells are named Column_<n>.
// Duplicate names yield *models.DuplicateColumnError.
func Header(sheet *models.Sheet) ([]string, error) {
	header, ok := sheet.Header()
	if !ok {
		return nil, nil
	}

	width := header.Width()
	names := make([]string, width)
	seen := make(map[string]int, width)
	for c := 1; c <= width; c++ {
		name := NormalizeName(header.Cell(c).String())
		if name == "" {
			name = "Column_" + strconv.Itoa(c)
		}
		if first, dup := seen[name]; dup {
			return nil, &models.DuplicateColumnError{
				Sheet:  sheet.Name,
				Name:   name,
				First:  first,
				Second: c,
			}
		}
		seen[name] = c
		names[c-1] = name
	}
	return names, nil
}

// NormalizeName trims surrounding whitespace and applies Unicode NFC so
// visually identical headers compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
