package output

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

// SheetJSONSchema describes the records of a sheet as a JSON Schema
// document. Every column is a required property. Columns that were
// inferred nullable, or hold a null in any record, also accept null.
func SheetJSONSchema(bookName string, sheet *models.SheetData) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	required := make([]string, 0, len(sheet.Columns))
	for _, col := range sheet.Columns {
		props.Set(col.Name, columnSchema(sheet, col))
		required = append(required, col.Name)
	}

	return &jsonschema.Schema{
		Version:              jsonschema.Version,
		Title:                sheet.Name,
		Description:          fmt.Sprintf("Records of sheet '%s' in '%s'", sheet.Name, bookName),
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func columnSchema(sheet *models.SheetData, col models.ColumnSchema) *jsonschema.Schema {
	s := &jsonschema.Schema{}
	switch col.Type {
	case models.ColumnNumber:
		s.Type = "number"
		if col.Integral && allWhole(sheet, col.Name) {
			s.Type = "integer"
		}
	case models.ColumnBoolean:
		s.Type = "boolean"
	case models.ColumnDate:
		s.Type = "string"
		s.Format = "date"
		if hasTimeOfDay(sheet, col.Name) {
			s.Format = "date-time"
		}
	default:
		s.Type = "string"
	}
	if !col.Nullable && !hasNull(sheet, col.Name) {
		return s
	}
	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: s.Type, Format: s.Format},
			{Type: "null"},
		},
	}
}

func hasNull(sheet *models.SheetData, name string) bool {
	for _, rec := range sheet.Records {
		if v, ok := rec.Get(name); !ok || v.IsNull() {
			return true
		}
	}
	return false
}

// hasTimeOfDay reports whether any date in the column is written as an
// RFC 3339 date-time rather than a plain date.
func hasTimeOfDay(sheet *models.SheetData, name string) bool {
	for _, rec := range sheet.Records {
		v, ok := rec.Get(name)
		if ok && v.Kind == models.ValueDate && len(models.FormatTime(v.Time)) > len("2006-01-02") {
			return true
		}
	}
	return false
}

func allWhole(sheet *models.SheetData, name string) bool {
	for _, rec := range sheet.Records {
		v, ok := rec.Get(name)
		if ok && v.Kind == models.ValueNumber && v.Number != math.Trunc(v.Number) {
			return false
		}
	}
	return true
}

// WriteSchemaFiles writes <sheet>.schema.json to dir for every converted
// sheet and returns the written paths.
func WriteSchemaFiles(dir string, wb *models.WorkbookData) ([]string, error) {
	var paths []string
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		if sheet.Err != nil {
			continue
		}
		data, err := json.MarshalIndent(SheetJSONSchema(wb.BookName, sheet), "", "  ")
		if err != nil {
			return paths, fmt.Errorf("failed to encode schema of %q: %w", sheet.Name, err)
		}
		path := filepath.Join(dir, SheetFileName(sheet.Name)+".schema.json")
		if err := writeBytes(path, append(data, '\n')); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
