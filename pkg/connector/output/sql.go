package output

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

// RowColumn is the column holding the source row index in SQL tables.
const RowColumn = "_row"

// SQLWriter writes converted sheets into SQL tables, one table per sheet.
// Tables are dropped and recreated on every write. Each table starts with
// the RowColumn source row index; sheet columns whose names clash with it or
// with each other (ignoring case) are suffixed "_1", "_2", ...
type SQLWriter struct {
	db *sqlx.DB
	// TablePrefix is prepended to every table name.
	TablePrefix string
}

// NewSQLWriter wraps an open database.
func NewSQLWriter(db *sqlx.DB) *SQLWriter {
	return &SQLWriter{db: db}
}

// OpenSQL connects to a "sqlite3" or "postgres" database.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLWriter, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, &models.WriteError{Path: driver, Err: err}
	}
	return NewSQLWriter(db), nil
}

// DB returns the underlying database.
func (w *SQLWriter) DB() *sqlx.DB { return w.db }

// Close closes the database.
func (w *SQLWriter) Close() error {
	return w.db.Close()
}

// TableName returns the table a sheet is written to.
func (w *SQLWriter) TableName(sheet string) string {
	return w.TablePrefix + sheet
}

// WriteWorkbook writes every converted sheet of wb.
func (w *SQLWriter) WriteWorkbook(ctx context.Context, wb *models.WorkbookData) error {
	for i := range wb.Sheets {
		if wb.Sheets[i].Err != nil {
			continue
		}
		if err := w.WriteSheet(ctx, &wb.Sheets[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteSheet recreates the sheet's table and inserts its records in a
// single transaction.
func (w *SQLWriter) WriteSheet(ctx context.Context, sheet *models.SheetData) error {
	table := w.TableName(sheet.Name)
	if err := w.writeSheet(ctx, table, sheet); err != nil {
		return &models.WriteError{Path: table, Err: err}
	}
	return nil
}

func (w *SQLWriter) writeSheet(ctx context.Context, table string, sheet *models.SheetData) (err error) {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	names := sqlColumnNames(sheet.Columns)
	if _, err = tx.ExecContext(ctx, createTableSQL(table, sheet.Columns, names)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	insert := tx.Rebind(insertSQL(table, names))
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range sheet.Records {
		if _, err = stmt.ExecContext(ctx, rowArgs(rec, sheet.Columns)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", rec.Row, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// sqlColumnNames returns the table column of every sheet column. SQL
// column names compare case-insensitively and RowColumn is reserved, so a
// clashing name gets the first free numeric suffix: "_row" becomes "_row_1",
// "id" after "ID" becomes "id_1".
func sqlColumnNames(cols []models.ColumnSchema) []string {
	taken := map[string]bool{strings.ToLower(RowColumn): true}
	names := make([]string, len(cols))
	for i, col := range cols {
		name := col.Name
		for n := 1; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", col.Name, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func createTableSQL(table string, cols []models.ColumnSchema, names []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	b.WriteString(quoteIdent(RowColumn))
	b.WriteString(" INTEGER NOT NULL")
	for i, col := range cols {
		b.WriteString(", ")
		b.WriteString(quoteIdent(names[i]))
		b.WriteByte(' ')
		b.WriteString(sqlType(col))
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(table string, names []string) string {
	quoted := make([]string, 0, len(names)+1)
	marks := make([]string, 0, len(names)+1)
	quoted = append(quoted, quoteIdent(RowColumn))
	marks = append(marks, "?")
	for _, name := range names {
		quoted = append(quoted, quoteIdent(name))
		marks = append(marks, "?")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func sqlType(col models.ColumnSchema) string {
	switch col.Type {
	case models.ColumnNumber:
		return "DOUBLE PRECISION"
	case models.ColumnBoolean:
		return "BOOLEAN"
	}
	return "TEXT"
}

func rowArgs(rec models.Record, cols []models.ColumnSchema) []any {
	args := make([]any, 0, len(cols)+1)
	args = append(args, rec.Row)
	for _, col := range cols {
		v, _ := rec.Get(col.Name)
		if v.Kind == models.ValueNumber && (math.IsNaN(v.Number) || math.IsInf(v.Number, 0)) {
			args = append(args, nil)
			continue
		}
		args = append(args, v.Interface())
	}
	return args
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
