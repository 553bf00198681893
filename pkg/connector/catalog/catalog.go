// Package catalog describes a directory of workbooks as catalog datasets,
// one per non-empty sheet, with typed and profiled fields and formula
// lineage.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/normalize"
	"github.com/kavithaselva95/excel-connector/pkg/connector/parser"
	"github.com/kavithaselva95/excel-connector/pkg/connector/profile"
	"github.com/kavithaselva95/excel-connector/pkg/connector/schema"
)

// Catalog field types.
const (
	TypeBigInt    = "BIGINT"
	TypeDouble    = "DOUBLE"
	TypeTimestamp = "TIMESTAMP"
	TypeBoolean   = "BOOLEAN"
	TypeString    = "STRING"
)

// namespace scopes dataset ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/kavithaselva95/excel-connector/datasets"))

// Options configures a synchronization.
type Options struct {
	// SampleSize is the number of rows sampled for type inference.
	SampleSize int
	// MaxProfileRows is the number of rows profiled per field.
	MaxProfileRows int
	// Logger receives progress and skipped files. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns default synchronization options.
func DefaultOptions() Options {
	return Options{
		SampleSize:     schema.DefaultSampleSize,
		MaxProfileRows: profile.DefaultMaxRows,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// IsWorkbook reports whether path has a workbook extension.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// Files returns the workbooks under dir in lexical order. Office lock
// files (~$name.xlsx) are ignored.
func Files(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), "~$") || !IsWorkbook(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return files, nil
}

// Synchronize returns one dataset per sheet with at least one data row, for
// every workbook under dir. Unreadable workbooks and failing sheets are
// logged and skipped.
func Synchronize(ctx context.Context, dir string, opts Options) ([]models.Dataset, error) {
	log := opts.logger()

	files, err := Files(dir)
	if err != nil {
		return nil, err
	}

	datasets := []models.Dataset{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return datasets, err
		}
		log.Info("processing file", "file", filepath.Base(path))

		ds, err := File(ctx, dir, path, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return datasets, err
			}
			log.Error("failed to read file", "file", filepath.Base(path), "error", err)
			continue
		}
		datasets = append(datasets, ds...)
	}

	log.Info("processed datasets", "count", len(datasets))
	return datasets, nil
}

// File returns the datasets of one workbook. root is the synchronized
// directory; dataset ids derive from the path relative to it.
func File(ctx context.Context, root, path string, opts Options) ([]models.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &models.UnreadableFileError{Path: path, Err: err}
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	file := fileInfo{
		rel:      filepath.ToSlash(rel),
		name:     filepath.Base(path),
		size:     info.Size(),
		modified: info.ModTime(),
	}

	var out []models.Dataset
	err = parser.WithWorkbook(path, parser.LoadOptions{Formulas: true}, func(wb *parser.Workbook) error {
		resolve := newHeaderResolver(wb)
		for i := range wb.SheetNames() {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, ok := sheetDataset(wb, i, file, resolve, opts)
			if ok {
				out = append(out, ds)
			}
		}
		return nil
	})
	return out, err
}

type fileInfo struct {
	rel      string
	name     string
	size     int64
	modified time.Time
}

func (f fileInfo) stem() string {
	return strings.TrimSuffix(f.name, filepath.Ext(f.name))
}

func sheetDataset(wb *parser.Workbook, index int, file fileInfo, resolve *headerResolver, opts Options) (models.Dataset, bool) {
	log := opts.logger().With("file", file.name)

	sheet, err := wb.SheetByIndex(index)
	if err != nil {
		log.Warn("skipping sheet", "index", index, "error", err)
		return models.Dataset{}, false
	}
	log = log.With("sheet", sheet.Name)

	rows := sheet.DataRows()
	if len(rows) < 1 {
		log.Warn("skipping sheet without data rows", "rows", len(sheet.Rows))
		return models.Dataset{}, false
	}

	cols, err := schema.Infer(sheet, schema.Options{SampleSize: opts.SampleSize})
	if err != nil {
		log.Warn("skipping sheet", "error", err)
		return models.Dataset{}, false
	}
	resolve.add(sheet.Name, models.ColumnNames(cols))
	records := normalize.Rows(sheet, cols)
	preview := profile.SamplePreview(sheet)

	ds := models.Dataset{
		ID:   uuid.NewSHA1(namespace, []byte(file.rel+"#"+sheet.Name)).String(),
		Name: file.stem() + " - " + sheet.Name,
		Description: fmt.Sprintf("Sheet '%s' in '%s' (%d rows, %d columns)",
			sheet.Name, file.name, len(sheet.Rows), len(cols)),
		Properties: map[string]any{
			"last_modified":   file.modified.UTC().Format(time.RFC3339),
			"file_size_bytes": file.size,
		},
		Fields: make([]models.Field, 0, len(cols)),
	}
	if rng, ok := parser.DetectTable(sheet, parser.DefaultTableParams()); ok {
		ds.Properties["table_range"] = rng
	}

	for _, col := range cols {
		props := profile.Column(records, col.Name, opts.MaxProfileRows).Properties()
		props["sample_preview"] = preview
		ds.Fields = append(ds.Fields, models.Field{
			Name:         col.Name,
			Type:         Type(col),
			Nullable:     col.Nullable,
			Properties:   props,
			SourceFields: lineage(sheet, col.Index, resolve),
		})
	}
	return ds, true
}

// Type maps an inferred column schema to a catalog type.
func Type(col models.ColumnSchema) string {
	switch col.Type {
	case models.ColumnNumber:
		if col.Integral {
			return TypeBigInt
		}
		return TypeDouble
	case models.ColumnDate:
		return TypeTimestamp
	case models.ColumnBoolean:
		return TypeBoolean
	}
	return TypeString
}
