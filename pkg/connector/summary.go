package connector

import (
	"errors"
	"log/slog"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

// Summary counts the outcome of one or more conversions.
type Summary struct {
	Workbooks    int
	Sheets       int
	FailedSheets int
	Records      int
	Partial      int
	Diagnostics  int

	errs []error
}

// Summarize aggregates the results of converted workbooks.
func Summarize(wbs ...*models.WorkbookData) Summary {
	var s Summary
	for _, wb := range wbs {
		if wb == nil {
			continue
		}
		s.Workbooks++
		for i := range wb.Sheets {
			sheet := &wb.Sheets[i]
			s.Sheets++
			if sheet.Err != nil {
				s.FailedSheets++
				s.errs = append(s.errs, sheet.Err)
				continue
			}
			s.Records += len(sheet.Records)
			s.Partial += sheet.PartialCount()
			s.Diagnostics += len(sheet.Diagnostics())
		}
	}
	return s
}

// Err joins the sheet level errors, nil when every sheet converted.
func (s Summary) Err() error {
	return errors.Join(s.errs...)
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("workbooks", s.Workbooks),
		slog.Int("sheets", s.Sheets),
		slog.Int("failed_sheets", s.FailedSheets),
		slog.Int("records", s.Records),
		slog.Int("partial", s.Partial),
		slog.Int("diagnostics", s.Diagnostics),
	)
}
