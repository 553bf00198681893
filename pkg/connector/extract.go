package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kavithaselva95/excel-connector/pkg/connector/catalog"
	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/normalize"
	"github.com/kavithaselva95/excel-connector/pkg/connector/parser"
	"github.com/kavithaselva95/excel-connector/pkg/connector/schema"
)

// cancelCheckRows is how often row normalization checks for cancellation.
const cancelCheckRows = 256

// target is a sheet selected for conversion. index is -1 when a requested
// name matched no sheet.
type target struct {
	name  string
	index int
}

// Convert converts the workbook at path into normalized records.
//
// An unreadable workbook fails the whole run with *UnreadableFileError.
// Sheet level failures (a requested sheet that does not exist, duplicate
// header names) are recorded on the sheet's SheetData and the remaining
// sheets are still converted.
func Convert(ctx context.Context, path string, opts Options) (*models.WorkbookData, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	log := opts.logger().With("file", path)
	loadOpts := parser.LoadOptions{Formulas: opts.Formulas}

	wb, err := parser.Open(path, loadOpts)
	if err != nil {
		return nil, err
	}
	result := &models.WorkbookData{BookName: wb.BookName(), Path: path}
	targets := selectSheets(wb.SheetNames(), opts.Sheets)
	result.Sheets = make([]models.SheetData, len(targets))

	if opts.workers() < 2 || len(targets) < 2 {
		defer wb.Close()
		for i, t := range targets {
			sd, err := convertSheet(ctx, wb, t, opts, log)
			if err != nil {
				return nil, err
			}
			result.Sheets[i] = sd
		}
	} else {
		if err := wb.Close(); err != nil {
			return nil, &models.UnreadableFileError{Path: path, Err: err}
		}
		if err := convertConcurrently(ctx, path, loadOpts, targets, result.Sheets, opts, log); err != nil {
			return nil, err
		}
	}

	log.Info("converted workbook", "summary", Summarize(result))
	return result, nil
}

// convertConcurrently converts each target with its own workbook handle,
// at most opts.Workers at a time. Results are stored at the target's
// position so sheet order is preserved.
func convertConcurrently(ctx context.Context, path string, loadOpts parser.LoadOptions, targets []target, out []models.SheetData, opts Options, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(opts.workers()))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for i, t := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		go func(i int, t target) {
			defer wg.Done()
			defer sem.Release(1)
			err := parser.WithWorkbook(path, loadOpts, func(wb *parser.Workbook) error {
				sd, err := convertSheet(ctx, wb, t, opts, log)
				out[i] = sd
				return err
			})
			if err != nil {
				fail(err)
			}
		}(i, t)
	}
	wg.Wait()
	return firstErr
}

// selectSheets resolves the requested sheet names against the workbook.
// A name requested more than once is converted once, at its first position.
// No request selects every sheet in workbook order.
func selectSheets(names, requested []string) []target {
	if len(requested) == 0 {
		targets := make([]target, len(names))
		for i, n := range names {
			targets[i] = target{name: n, index: i}
		}
		return targets
	}

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	targets := make([]target, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, n := range requested {
		if seen[n] {
			continue
		}
		seen[n] = true
		i, ok := index[n]
		if !ok {
			i = -1
		}
		targets = append(targets, target{name: n, index: i})
	}
	return targets
}

// convertSheet loads, infers and normalizes one sheet. The returned error
// is fatal for the run; sheet level failures are set on SheetData.Err.
func convertSheet(ctx context.Context, wb *parser.Workbook, t target, opts Options, log *slog.Logger) (models.SheetData, error) {
	sd := models.SheetData{Name: t.name, Index: t.index}
	if err := ctx.Err(); err != nil {
		return sd, fmt.Errorf("convert %s: %w", wb.Path, err)
	}
	log = log.With("sheet", t.name)

	if t.index < 0 {
		sd.Err = NewExtractionError(wb.BookName(), t.name, "loader",
			&models.SheetNotFoundError{Path: wb.Path, Name: t.name, Index: -1})
		log.Error("sheet failed", "error", sd.Err)
		return sd, nil
	}

	sheet, err := wb.SheetByIndex(t.index)
	if err != nil {
		var notFound *models.SheetNotFoundError
		if errors.As(err, &notFound) {
			sd.Err = NewExtractionError(wb.BookName(), t.name, "loader", err)
			log.Error("sheet failed", "error", sd.Err)
			return sd, nil
		}
		return sd, err
	}

	cols, err := schema.Infer(sheet, schema.Options{SampleSize: opts.SampleSize})
	if err != nil {
		sd.Err = NewExtractionError(wb.BookName(), t.name, "schema", err)
		log.Error("sheet failed", "error", sd.Err)
		return sd, nil
	}
	sd.Columns = cols

	rows := sheet.DataRows()
	sd.Records = make([]models.Record, 0, len(rows))
	for i, row := range rows {
		if i%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return sd, fmt.Errorf("convert %s: %w", wb.Path, err)
			}
		}
		rec := normalize.Row(sheet.Name, row, cols)
		for _, d := range rec.Diagnostics {
			log.Warn("cell not converted", "row", d.Row, "column", d.Column, "field", d.Field, "raw", d.Raw, "reason", d.Reason)
		}
		sd.Records = append(sd.Records, rec)
	}

	log.Debug("converted sheet", "columns", len(cols), "records", len(sd.Records), "partial", sd.PartialCount())
	return sd, nil
}

// ConvertDir converts every workbook under dir in lexical path order. The
// first unreadable workbook aborts the run.
func ConvertDir(ctx context.Context, dir string, opts Options) ([]*models.WorkbookData, error) {
	files, err := catalog.Files(dir)
	if err != nil {
		return nil, err
	}
	out := make([]*models.WorkbookData, 0, len(files))
	for _, path := range files {
		wb, err := Convert(ctx, path, opts)
		if err != nil {
			return out, err
		}
		out = append(out, wb)
	}
	return out, nil
}
