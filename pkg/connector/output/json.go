// Package output serializes converted workbooks.
package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

// Format is a record output format.
type Format string

const (
	// FormatJSON writes one JSON document per workbook or sheet.
	FormatJSON Format = "json"
	// FormatJSONL writes one record object per line. Workbook streams wrap
	// each record with its sheet name; per-sheet files hold bare records.
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name. An empty name means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatJSONL, "ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or jsonl)", s)
}

// Ext returns the file extension of the format, with the leading dot.
func (f Format) Ext() string {
	if f == FormatJSONL {
		return ".jsonl"
	}
	return ".json"
}

// document is the top-level JSON shape of a converted workbook.
type document struct {
	BookName string                                           `json:"book_name"`
	Sheets   *orderedmap.OrderedMap[string, []models.Record] `json:"sheets"`
}

func newDocument(wb *models.WorkbookData) document {
	sheets := orderedmap.New[string, []models.Record]()
	for i := range wb.Sheets {
		s := &wb.Sheets[i]
		if s.Err != nil {
			continue
		}
		sheets.Set(s.Name, records(s))
	}
	return document{BookName: wb.BookName, Sheets: sheets}
}

// records never returns nil so an empty sheet encodes as [].
func records(s *models.SheetData) []models.Record {
	if s.Records == nil {
		return []models.Record{}
	}
	return s.Records
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// ToJSON encodes the workbook as {"book_name": ..., "sheets": {...}} with
// sheets and fields in source order. Failed sheets are omitted.
func ToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	data, err := marshal(newDocument(wb), pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", wb.BookName, err)
	}
	return data, nil
}

// SheetToJSON encodes the records of one sheet as a JSON array.
func SheetToJSON(sheet *models.SheetData, pretty bool) ([]byte, error) {
	data, err := marshal(records(sheet), pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sheet %q: %w", sheet.Name, err)
	}
	return data, nil
}

// jsonLine is one line of a workbook JSON-lines stream. The sheet name
// keeps records of different sheets apart.
type jsonLine struct {
	Sheet  string        `json:"sheet"`
	Record models.Record `json:"record"`
}

// WriteJSONLines writes one {"sheet": ..., "record": {...}} object per
// line, sheets in order.
func WriteJSONLines(w io.Writer, wb *models.WorkbookData) error {
	bw := bufio.NewWriter(w)
	for i := range wb.Sheets {
		if err := writeSheetLines(bw, &wb.Sheets[i], true); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return &models.WriteError{Err: err}
	}
	return nil
}

// writeSheetLines writes the records of one sheet, one per line. With
// envelope set every record is wrapped in a jsonLine.
func writeSheetLines(w *bufio.Writer, sheet *models.SheetData, envelope bool) error {
	if sheet.Err != nil {
		return nil
	}
	for _, rec := range sheet.Records {
		var v any = rec
		if envelope {
			v = jsonLine{Sheet: sheet.Name, Record: rec}
		}
		line, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s row %d: %w", sheet.Name, rec.Row, err)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return &models.WriteError{Err: err}
		}
	}
	return nil
}

// WriteWorkbook writes the workbook to w in the given format. JSON
// documents end with a newline.
func WriteWorkbook(w io.Writer, wb *models.WorkbookData, format Format, pretty bool) error {
	if format == FormatJSONL {
		return WriteJSONLines(w, wb)
	}
	data, err := ToJSON(wb, pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return &models.WriteError{Err: err}
	}
	return nil
}

// WriteFile writes the workbook to path, creating parent directories.
func WriteFile(path string, wb *models.WorkbookData, format Format, pretty bool) error {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, wb, format, pretty); err != nil {
		return err
	}
	return writeBytes(path, buf.Bytes())
}

// WriteSheetFiles writes one file per sheet to dir, named after the sheet.
// It returns the written paths in sheet order.
func WriteSheetFiles(dir string, wb *models.WorkbookData, format Format, pretty bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &models.WriteError{Path: dir, Err: err}
	}

	var paths []string
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		if sheet.Err != nil {
			continue
		}

		var buf bytes.Buffer
		if format == FormatJSONL {
			bw := bufio.NewWriter(&buf)
			if err := writeSheetLines(bw, sheet, false); err != nil {
				return paths, err
			}
			if err := bw.Flush(); err != nil {
				return paths, &models.WriteError{Err: err}
			}
		} else {
			data, err := SheetToJSON(sheet, pretty)
			if err != nil {
				return paths, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}

		path := filepath.Join(dir, SheetFileName(sheet.Name)+format.Ext())
		if err := writeBytes(path, buf.Bytes()); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SheetFileName makes a sheet name safe to use as a file name.
func SheetFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "sheet"
	}
	return name
}

// EncodeDocument writes v to w as one JSON document followed by a newline.
// It serves outputs that are not workbooks, such as catalog datasets.
func EncodeDocument(w io.Writer, v any, pretty bool) error {
	data, err := marshal(v, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return &models.WriteError{Err: err}
	}
	return nil
}

// WriteDocument is EncodeDocument into the file at path, creating parent
// directories as needed.
func WriteDocument(path string, v any, pretty bool) error {
	data, err := marshal(v, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeBytes(path, append(data, '\n'))
}

func writeBytes(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &models.WriteError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &models.WriteError{Path: path, Err: err}
	}
	return nil
}
