package parser

import (
	"fmt"
	"io"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/yamitzky/xlrd-go/xlrd"
)

// xlsSource reads legacy BIFF workbooks through xlrd.
type xlsSource struct {
	book *xlrd.Book
}

func openXLS(path string) (*xlsSource, error) {
	book, err := xlrd.OpenWorkbook(path, &xlrd.OpenWorkbookOptions{
		Logfile:        io.Discard,
		FormattingInfo: true,
	})
	if err != nil {
		return nil, err
	}
	return &xlsSource{book: book}, nil
}

func (s *xlsSource) sheetNames() []string { return s.book.SheetNames() }

func (s *xlsSource) close() error {
	s.book.ReleaseResources()
	return nil
}

func (s *xlsSource) readSheet(name string, index int, _ LoadOptions) (*models.Sheet, error) {
	sh, err := s.book.SheetByIndex(index)
	if err != nil {
		return nil, err
	}

	sheet := &models.Sheet{Name: name, Index: index, Rows: make([]models.Row, 0, sh.NRows)}
	for rowx := 0; rowx < sh.NRows; rowx++ {
		row := models.Row{R: rowx + 1, Cells: make([]models.Cell, sh.NCols)}
		for colx := 0; colx < sh.NCols; colx++ {
			row.Cells[colx] = s.convert(rowx+1, colx+1, sh.Cell(rowx, colx))
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func (s *xlsSource) convert(r, c int, cell *xlrd.Cell) models.Cell {
	if cell == nil {
		return models.EmptyCell(r, c)
	}
	switch cell.CType {
	case xlrd.XL_CELL_TEXT:
		return models.TextCell(r, c, fmt.Sprint(cell.Value))
	case xlrd.XL_CELL_NUMBER, xlrd.XL_CELL_DATE:
		f, ok := toFloat(cell.Value)
		if !ok {
			return models.TextCell(r, c, fmt.Sprint(cell.Value))
		}
		if cell.CType == xlrd.XL_CELL_DATE || s.isDateXF(cell.XFIndex) {
			if t, err := xlrd.XldateAsDatetime(f, s.book.Datemode); err == nil {
				return models.DateCell(r, c, t)
			}
		}
		return models.NumberCell(r, c, f)
	case xlrd.XL_CELL_BOOLEAN:
		f, ok := toFloat(cell.Value)
		if b, isBool := cell.Value.(bool); isBool {
			return models.BoolCell(r, c, b)
		}
		return models.BoolCell(r, c, ok && f != 0)
	case xlrd.XL_CELL_ERROR:
		return models.TextCell(r, c, errorText(cell.Value))
	}
	return models.EmptyCell(r, c)
}

func (s *xlsSource) isDateXF(xfIndex int) bool {
	book := s.book
	if xfIndex < 0 || xfIndex >= len(book.XFList) {
		return false
	}
	key := book.XFList[xfIndex].FormatKey
	if isDateNumFmt(key) {
		return true
	}
	format := book.FormatMap[key]
	if format == nil || format.FormatString == "" {
		return false
	}
	return xlrd.IsDateFormatString(book, format.FormatString)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	}
	return 0, false
}

func errorText(v any) string {
	var code byte
	switch n := v.(type) {
	case byte:
		code = n
	case int:
		code = byte(n)
	default:
		return fmt.Sprint(v)
	}
	if text, ok := xlrd.ErrorTextFromCode[code]; ok {
		return text
	}
	return fmt.Sprintf("#ERR%d", code)
}
