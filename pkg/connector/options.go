// Package connector converts spreadsheet workbooks into normalized JSON
// records and catalog datasets.
package connector

import (
	"io"
	"log/slog"
	"time"

	"github.com/kavithaselva95/excel-connector/pkg/connector/schema"
)

// Options configures a conversion run.
type Options struct {
	// SampleSize is the number of data rows sampled per column for type
	// inference.
	SampleSize int
	// Sheets restricts the run to the named sheets, in the given order.
	// Empty means every sheet in workbook order.
	Sheets []string
	// Workers is the number of sheets converted concurrently. Each worker
	// opens its own handle on the workbook. Values below 2 convert sheets
	// one after another.
	Workers int
	// Timeout bounds the whole run. Zero means no deadline.
	Timeout time.Duration
	// Formulas loads formula text alongside cell values.
	Formulas bool
	// Logger receives progress and coercion warnings. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns default conversion options.
func DefaultOptions() Options {
	return Options{
		SampleSize: schema.DefaultSampleSize,
		Workers:    1,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}
