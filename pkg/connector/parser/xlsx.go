package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/xuri/excelize/v2"
	"github.com/yamitzky/xlrd-go/xlrd"
)

// formatBook lets xlsx custom number formats go through the same date
// heuristic xlrd applies to xls formats.
var formatBook = &xlrd.Book{}

// xlsxSource reads OOXML workbooks through excelize.
type xlsxSource struct {
	f        *excelize.File
	names    []string
	date1904 bool
	// dateStyles caches whether a style index carries a date number format.
	dateStyles map[int]bool
}

func openXLSX(path string) (*xlsxSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	s := &xlsxSource{
		f:          f,
		names:      f.GetSheetList(),
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		s.date1904 = *props.Date1904
	}
	return s, nil
}

func (s *xlsxSource) sheetNames() []string { return s.names }

func (s *xlsxSource) close() error { return s.f.Close() }

// readSheet streams the sheet rows. Values are read raw so number formats
// do not leak into numeric cells.
func (s *xlsxSource) readSheet(name string, index int, opts LoadOptions) (*models.Sheet, error) {
	rows, err := s.f.Rows(name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheet := &models.Sheet{Name: name, Index: index}
	rowNum := 0
	for rows.Next() {
		rowNum++
		values, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		row := models.Row{R: rowNum, Cells: make([]models.Cell, len(values))}
		for i, v := range values {
			cell, err := s.readCell(name, rowNum, i+1, v, opts)
			if err != nil {
				return nil, err
			}
			row.Cells[i] = cell
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *xlsxSource) readCell(sheet string, r, c int, raw string, opts LoadOptions) (models.Cell, error) {
	cellName, err := excelize.CoordinatesToCellName(c, r)
	if err != nil {
		return models.Cell{}, err
	}

	var formula string
	if opts.Formulas {
		if formula, err = s.f.GetCellFormula(sheet, cellName); err != nil {
			return models.Cell{}, err
		}
		formula = strings.TrimPrefix(formula, "=")
	}

	cell, err := s.typedCell(sheet, cellName, r, c, raw)
	if err != nil {
		return models.Cell{}, err
	}
	cell.Formula = formula
	return cell, nil
}

func (s *xlsxSource) typedCell(sheet, cellName string, r, c int, raw string) (models.Cell, error) {
	if raw == "" {
		return models.EmptyCell(r, c), nil
	}
	typ, err := s.f.GetCellType(sheet, cellName)
	if err != nil {
		return models.Cell{}, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return models.BoolCell(r, c, raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return models.DateCell(r, c, t), nil
		}
		return models.TextCell(r, c, raw), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return models.TextCell(r, c, raw), nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.TextCell(r, c, raw), nil
	}
	isDate, err := s.hasDateFormat(sheet, cellName)
	if err != nil {
		return models.Cell{}, err
	}
	if isDate {
		if t, err := excelize.ExcelDateToTime(f, s.date1904); err == nil {
			return models.DateCell(r, c, t), nil
		}
	}
	return models.NumberCell(r, c, f), nil
}

func (s *xlsxSource) hasDateFormat(sheet, cellName string) (bool, error) {
	styleID, err := s.f.GetCellStyle(sheet, cellName)
	if err != nil {
		return false, err
	}
	if isDate, ok := s.dateStyles[styleID]; ok {
		return isDate, nil
	}
	style, err := s.f.GetStyle(styleID)
	if err != nil {
		// Unknown style index: treat as a plain number.
		s.dateStyles[styleID] = false
		return false, nil
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = xlrd.IsDateFormatString(formatBook, *style.CustomNumFmt)
	}
	s.dateStyles[styleID] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether a built-in number format id renders a date
// or time.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// parseISODate parses the ISO 8601 values stored in "d" typed cells.
func parseISODate(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999",
		"2006-01-02 15:04:05Z",
		"20060102T150405Z",
		"20060102T150405.999",
		"2006-01-02",
	}
	s = strings.ReplaceAll(s, ",", ".")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
