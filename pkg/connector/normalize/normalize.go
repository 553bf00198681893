// Package normalize coerces raw sheet rows into records that follow an
// inferred column schema.
package normalize

import (
	"fmt"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/parser"
)

// Row converts one data row into a record. Cells that cannot be coerced to
// their column type become null and are reported as diagnostics on a
// partial record; they never fail the row.
func Row(sheet string, row models.Row, columns []models.ColumnSchema) models.Record {
	rec := models.NewRecord(sheet, row.R)

	for _, col := range columns {
		cell := row.Cell(col.Index)
		v, err := Coerce(cell, col.Type)
		if err != nil {
			rec.Partial = true
			rec.Diagnostics = append(rec.Diagnostics, models.Diagnostic{
				Sheet:  sheet,
				Row:    row.R,
				Column: col.Index,
				Field:  col.Name,
				Raw:    cell.String(),
				Reason: err.Error(),
			})
			v = models.Null()
		}
		rec.Fields.Set(col.Name, v)
	}

	for c := len(columns) + 1; c <= row.Width(); c++ {
		cell := row.Cell(c)
		if cell.IsEmpty() {
			continue
		}
		rec.Diagnostics = append(rec.Diagnostics, models.Diagnostic{
			Sheet:  sheet,
			Row:    row.R,
			Column: c,
			Raw:    cell.String(),
			Reason: "value beyond the last header column dropped",
		})
	}
	return rec
}

// Rows converts every data row of the sheet.
func Rows(sheet *models.Sheet, columns []models.ColumnSchema) []models.Record {
	rows := sheet.DataRows()
	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Row(sheet.Name, row, columns))
	}
	return records
}

// Coerce converts a cell to the given column type. Empty cells are null
// for every type.
func Coerce(cell models.Cell, typ models.ColumnType) (models.Value, error) {
	if cell.IsEmpty() {
		return models.Null(), nil
	}

	switch typ {
	case models.ColumnNumber:
		if f, ok := parser.AsNumber(cell); ok {
			return models.Number(f), nil
		}
	case models.ColumnDate:
		if t, ok := parser.AsDate(cell); ok {
			return models.Date(t), nil
		}
	case models.ColumnBoolean:
		if b, ok := parser.AsBool(cell); ok {
			return models.Boolean(b), nil
		}
	case models.ColumnText:
		return models.Text(cell.String()), nil
	default:
		return models.Null(), fmt.Errorf("unknown column type %q", typ)
	}
	return models.Null(), fmt.Errorf("cannot read %s cell as %s", cell.Kind, typ)
}
