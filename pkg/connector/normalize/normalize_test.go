package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

var columns = []models.ColumnSchema{
	{Index: 1, Name: "id", Type: models.ColumnNumber, Integral: true},
	{Index: 2, Name: "amount", Type: models.ColumnNumber},
	{Index: 3, Name: "date", Type: models.ColumnDate},
}

func row(r int, cells ...models.Cell) models.Row {
	return models.Row{R: r, Cells: cells}
}

func TestRowScenario(t *testing.T) {
	rec := Row("Data", row(2,
		models.NumberCell(2, 1, 1),
		models.TextCell(2, 2, "10.5"),
		models.TextCell(2, 3, "2023-01-15"),
	), columns)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"amount":10.5,"date":"2023-01-15"}`, string(data))
	assert.False(t, rec.Partial)
	assert.Empty(t, rec.Diagnostics)
	assert.Equal(t, 2, rec.Row)
}

func TestRowCoercionFailure(t *testing.T) {
	rec := Row("Data", row(3,
		models.NumberCell(3, 1, 2),
		models.TextCell(3, 2, "N/A"),
		models.DateCell(3, 3, time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC)),
	), columns)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"id":2,"amount":null,"date":"2023-01-15T09:30:00Z"}`, string(data))

	assert.True(t, rec.Partial)
	require.Len(t, rec.Diagnostics, 1)
	d := rec.Diagnostics[0]
	assert.Equal(t, "Data", d.Sheet)
	assert.Equal(t, 3, d.Row)
	assert.Equal(t, 2, d.Column)
	assert.Equal(t, "amount", d.Field)
	assert.Equal(t, "N/A", d.Raw)
	assert.Contains(t, d.Reason, "number")
}

func TestRowShortAndLongRows(t *testing.T) {
	short := Row("Data", row(4, models.NumberCell(4, 1, 7)), columns)
	assert.Equal(t, 3, short.Len())
	assert.False(t, short.Partial)
	v, ok := short.Get("amount")
	require.True(t, ok)
	assert.True(t, v.IsNull())

	long := Row("Data", row(5,
		models.NumberCell(5, 1, 1),
		models.NumberCell(5, 2, 2),
		models.TextCell(5, 3, "2023-01-15"),
		models.TextCell(5, 4, "extra"),
	), columns)
	assert.Equal(t, 3, long.Len())
	assert.False(t, long.Partial)
	require.Len(t, long.Diagnostics, 1)
	assert.Equal(t, 4, long.Diagnostics[0].Column)
	assert.Equal(t, "extra", long.Diagnostics[0].Raw)
}

func TestCoerce(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		cell    models.Cell
		typ     models.ColumnType
		want    any
		wantErr bool
	}{
		{"empty number", models.EmptyCell(1, 1), models.ColumnNumber, nil, false},
		{"whitespace text", models.TextCell(1, 1, "  "), models.ColumnText, nil, false},
		{"numeric text", models.TextCell(1, 1, " 42 "), models.ColumnNumber, 42.0, false},
		{"nan text", models.TextCell(1, 1, "NaN"), models.ColumnNumber, nil, true},
		{"bool text", models.TextCell(1, 1, "No"), models.ColumnBoolean, false, false},
		{"bool from number", models.NumberCell(1, 1, 1), models.ColumnBoolean, nil, true},
		{"date cell", models.DateCell(1, 1, day), models.ColumnDate, "2024-02-29", false},
		{"bad date", models.TextCell(1, 1, "soon"), models.ColumnDate, nil, true},
		{"number as text", models.NumberCell(1, 1, 1.5), models.ColumnText, "1.5", false},
		{"bool as text", models.BoolCell(1, 1, true), models.ColumnText, "true", false},
		{"date as text", models.DateCell(1, 1, day), models.ColumnText, "2024-02-29", false},
		{"unknown type", models.TextCell(1, 1, "x"), models.ColumnType("blob"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.cell, tt.typ)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, v.IsNull())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Interface())
		})
	}
}

func TestRowsSkipsBlankRows(t *testing.T) {
	sheet := &models.Sheet{Name: "Data", Rows: []models.Row{
		row(1, models.TextCell(1, 1, "id")),
		row(2, models.NumberCell(2, 1, 1)),
		row(3, models.EmptyCell(3, 1)),
		row(4, models.NumberCell(4, 1, 2)),
	}}

	records := Rows(sheet, columns[:1])
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, 4, records[1].Row)
}
