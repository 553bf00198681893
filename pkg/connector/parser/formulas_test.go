package parser

import (
	"reflect"
	"testing"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

func TestFormulaRefs(t *testing.T) {
	tests := []struct {
		formula  string
		expected []ColumnRef
	}{
		{"A2+B2", []ColumnRef{{Col: 1}, {Col: 2}}},
		{"$C$3*2", []ColumnRef{{Col: 3}}},
		{"SUM(B2:D2)", []ColumnRef{{Col: 2}, {Col: 3}, {Col: 4}}},
		{"Sheet2!A1+A1", []ColumnRef{{Col: 1}, {Sheet: "Sheet2", Col: 1}}},
		{"'My Sheet'!B4", []ColumnRef{{Sheet: "My Sheet", Col: 2}}},
		{"'It''s'!C1", []ColumnRef{{Sheet: "It's", Col: 3}}},
		{"LOG10(A1)", []ColumnRef{{Col: 1}}},
		{`IF(A1>0,"B2","C3")`, []ColumnRef{{Col: 1}}},
		{"AB12-A1", []ColumnRef{{Col: 1}, {Col: 28}}},
		{"PI()*2", []ColumnRef{}},
	}

	for _, tt := range tests {
		result := FormulaRefs(tt.formula)
		if !reflect.DeepEqual(result, tt.expected) {
			t.Errorf("FormulaRefs(%q) = %v, expected %v", tt.formula, result, tt.expected)
		}
	}
}

func TestDataBounds(t *testing.T) {
	sheet := &models.Sheet{Name: "S", Rows: []models.Row{
		{R: 1, Cells: []models.Cell{models.EmptyCell(1, 1), models.TextCell(1, 2, "a"), models.TextCell(1, 3, "b")}},
		{R: 2, Cells: []models.Cell{models.EmptyCell(2, 1), models.NumberCell(2, 2, 1), models.NumberCell(2, 3, 2)}},
		{R: 3, Cells: []models.Cell{models.EmptyCell(3, 1), models.NumberCell(3, 2, 3)}},
	}}

	bounds, ok := DataBounds(sheet)
	if !ok || bounds != "B1:C3" {
		t.Errorf("DataBounds = %q, %v; expected B1:C3", bounds, ok)
	}
	table, ok := DetectTable(sheet, DefaultTableParams())
	if !ok || table != "B1:C3" {
		t.Errorf("DetectTable = %q, %v; expected B1:C3", table, ok)
	}

	sparse := &models.Sheet{Name: "S", Rows: []models.Row{
		{R: 1, Cells: []models.Cell{models.TextCell(1, 1, "a")}},
	}}
	if _, ok := DetectTable(sparse, DefaultTableParams()); ok {
		t.Error("Expected no table for a single cell")
	}
	if _, ok := DataBounds(&models.Sheet{}); ok {
		t.Error("Expected no bounds for an empty sheet")
	}
}
