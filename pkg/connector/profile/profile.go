// Package profile computes per-column statistics over normalized records.
package profile

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/parser"
)

// DefaultMaxRows is the number of records profiled per column.
const DefaultMaxRows = 1000

// PreviewRows is the number of rows in a sample preview.
const PreviewRows = 3

// Profile holds the statistics of one column.
type Profile struct {
	RowCount    int
	NullCount   int
	Distinct    int
	NullPct     float64
	DistinctPct float64
	// Min and Max are the extremes in canonical text form, empty when the
	// column has no numbers or dates.
	Min string
	Max string
	// Avg, Median and StdDev are nil when the column has no numbers.
	Avg    *float64
	Median *float64
	StdDev *float64
}

// Column profiles the named field over up to maxRows records. maxRows of
// zero or less means DefaultMaxRows.
func Column(records []models.Record, name string, maxRows int) Profile {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if len(records) > maxRows {
		records = records[:maxRows]
	}

	var (
		p        Profile
		distinct = make(map[string]struct{})
		numbers  []float64
		dates    []string
	)
	for _, rec := range records {
		p.RowCount++
		v, ok := rec.Get(name)
		if !ok || v.IsNull() {
			p.NullCount++
			continue
		}
		key, _ := json.Marshal(v)
		distinct[string(key)] = struct{}{}

		switch v.Kind {
		case models.ValueNumber:
			numbers = append(numbers, v.Number)
		case models.ValueDate:
			dates = append(dates, models.FormatTime(v.Time))
		case models.ValueText:
			if f, ok := parser.ParseNumber(v.Text); ok {
				numbers = append(numbers, f)
			}
		}
	}

	p.Distinct = len(distinct)
	if p.RowCount > 0 {
		p.NullPct = round2(float64(p.NullCount) / float64(p.RowCount) * 100)
		p.DistinctPct = round2(float64(p.Distinct) / float64(p.RowCount) * 100)
	}

	switch {
	case len(numbers) > 0:
		p.numberStats(numbers)
	case len(dates) > 0:
		sort.Strings(dates)
		p.Min, p.Max = dates[0], dates[len(dates)-1]
	}
	return p
}

func (p *Profile) numberStats(data []float64) {
	if min, err := stats.Min(data); err == nil {
		p.Min = models.FormatNumber(min)
	}
	if max, err := stats.Max(data); err == nil {
		p.Max = models.FormatNumber(max)
	}
	if mean, err := stats.Mean(data); err == nil {
		p.Avg = &mean
	}
	if median, err := stats.Median(data); err == nil {
		p.Median = &median
	}
	if sd, err := stats.StandardDeviation(data); err == nil {
		p.StdDev = &sd
	}
}

// Properties returns the profile as catalog field properties.
func (p Profile) Properties() map[string]any {
	props := map[string]any{
		"row_count":    p.RowCount,
		"null_pct":     p.NullPct,
		"distinct_pct": p.DistinctPct,
		"min_value":    nil,
		"max_value":    nil,
		"avg_value":    floatOrNil(p.Avg),
		"median_value": floatOrNil(p.Median),
		"stddev_value": floatOrNil(p.StdDev),
	}
	if p.Min != "" {
		props["min_value"] = p.Min
	}
	if p.Max != "" {
		props["max_value"] = p.Max
	}
	return props
}

// SamplePreview encodes the first PreviewRows data rows of the sheet as a
// JSON array of string arrays.
func SamplePreview(sheet *models.Sheet) string {
	rows := sheet.DataRows()
	if len(rows) > PreviewRows {
		rows = rows[:PreviewRows]
	}
	preview := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, row.Width())
		for c := range cells {
			cells[c] = row.Cell(c + 1).String()
		}
		preview = append(preview, cells)
	}
	data, err := json.Marshal(preview)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func floatOrNil(f *float64) any {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return round2(*f)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
