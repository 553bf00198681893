package schema

import (
	"math"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/parser"
)

// DefaultSampleSize is the number of data rows sampled per column.
const DefaultSampleSize = 100

// Options configures inference.
type Options struct {
	// SampleSize is the number of data rows inspected after the header.
	// Zero or negative means DefaultSampleSize.
	SampleSize int
}

// columnVotes tallies which types every sampled value of a column fits.
type columnVotes struct {
	nonEmpty int
	empty    int
	numbers  int
	integral int
	dates    int
	bools    int
}

// add counts c. Missing-value markers vote like empty cells so a stray
// "N/A" leaves a numeric column numeric (and nullable).
func (v *columnVotes) add(c models.Cell) {
	if c.IsEmpty() || parser.IsMissingMarker(c) {
		v.empty++
		return
	}
	v.nonEmpty++
	if f, ok := parser.AsNumber(c); ok {
		v.numbers++
		if f == math.Trunc(f) {
			v.integral++
		}
	}
	if _, ok := parser.AsDate(c); ok {
		v.dates++
	}
	if _, ok := parser.AsBool(c); ok {
		v.bools++
	}
}

// column picks the narrowest type every sampled value fits, falling back
// to text.
func (v *columnVotes) column(index int, name string) models.ColumnSchema {
	col := models.ColumnSchema{
		Index:    index,
		Name:     name,
		Type:     models.ColumnText,
		Nullable: v.empty > 0 || v.nonEmpty == 0,
	}
	switch {
	case v.nonEmpty == 0:
	case v.numbers == v.nonEmpty:
		col.Type = models.ColumnNumber
		col.Integral = v.integral == v.nonEmpty
	case v.dates == v.nonEmpty:
		col.Type = models.ColumnDate
	case v.bools == v.nonEmpty:
		col.Type = models.ColumnBoolean
	}
	return col
}

// Infer derives the column schema of a sheet: names from the first row,
// types from up to opts.SampleSize data rows. A sheet without rows has no
// columns.
func Infer(sheet *models.Sheet, opts Options) ([]models.ColumnSchema, error) {
	names, err := Header(sheet)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	sampleSize := opts.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	rows := sheet.DataRows()
	if len(rows) > sampleSize {
		rows = rows[:sampleSize]
	}

	votes := make([]columnVotes, len(names))
	for _, row := range rows {
		for c := range names {
			votes[c].add(row.Cell(c + 1))
		}
	}

	cols := make([]models.ColumnSchema, len(names))
	for c, name := range names {
		cols[c] = votes[c].column(c+1, name)
	}
	return cols, nil
}
