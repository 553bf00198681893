package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/kavithaselva95/excel-connector/internal/xlsxtest"
	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.toml"), "--log-level", "error"))
	return cmd.Execute()
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := xlsxtest.Write(t, dir, "book.xlsx", xlsxtest.Sheet{Name: "Data", Rows: [][]any{
		{"id", "amount", "date"},
		{1, "10.5", "2023-01-15"},
	}})
	out := filepath.Join(dir, "out", "book.json")
	sheetsOut := filepath.Join(dir, "sheets")
	schemaOut := filepath.Join(dir, "schema")
	db := filepath.Join(dir, "records.db")

	err := execute(t, input, "-o", out, "--sheets-dir", sheetsOut, "--schema-dir", schemaOut, "--sql-dsn", db)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{"book_name":"book.xlsx","sheets":{"Data":[{"id":1,"amount":10.5,"date":"2023-01-15"}]}}`+"\n", string(data))

	assert.FileExists(t, filepath.Join(sheetsOut, "Data.json"))
	schema, err := os.ReadFile(filepath.Join(schemaOut, "Data.schema.json"))
	require.NoError(t, err)
	assert.Equal(t, "integer", gjson.GetBytes(schema, "properties.id.type").String())
	assert.FileExists(t, db)
}

func TestRunDirectory(t *testing.T) {
	in := t.TempDir()
	xlsxtest.Write(t, in, "a.xlsx", xlsxtest.Sheet{Name: "S", Rows: [][]any{{"x"}, {1}}})
	xlsxtest.Write(t, in, "b.xlsx", xlsxtest.Sheet{Name: "S", Rows: [][]any{{"x"}, {2}}})
	out := t.TempDir()

	require.NoError(t, execute(t, in, "-o", out, "--format", "jsonl"))

	data, err := os.ReadFile(filepath.Join(out, "b.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, `{"sheet":"S","record":{"x":2}}`+"\n", string(data))
	assert.FileExists(t, filepath.Join(out, "a.jsonl"))
}

func TestRunMissingMarkerInNumericColumn(t *testing.T) {
	dir := t.TempDir()
	input := xlsxtest.Write(t, dir, "book.xlsx", xlsxtest.Sheet{Name: "Data", Rows: [][]any{
		{"id", "amount"},
		{1, 10.5},
		{2, "N/A"},
	}})
	out := filepath.Join(dir, "book.json")

	require.NoError(t, execute(t, input, "-o", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc := gjson.ParseBytes(data)
	assert.Equal(t, 10.5, doc.Get("sheets.Data.0.amount").Float())
	assert.Equal(t, gjson.Null, doc.Get("sheets.Data.1.amount").Type)
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	input := xlsxtest.Write(t, dir, "book.xlsx", xlsxtest.Sheet{Name: "Data", Rows: [][]any{{"id"}, {1}}})

	err := execute(t, input, "-o", filepath.Join(dir, "out.json"), "--sheet", "Missing")
	assert.ErrorContains(t, err, "sheet(s) failed")

	err = execute(t, filepath.Join(dir, "missing.xlsx"))
	assert.ErrorContains(t, err, "file not found")

	broken := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("junk"), 0o644))
	assert.Error(t, execute(t, broken, "-o", filepath.Join(dir, "broken.json")))

	assert.Error(t, execute(t, input, "--format", "csv"))
}

func TestCatalogCommand(t *testing.T) {
	dir := t.TempDir()
	xlsxtest.Write(t, dir, "book.xlsx", xlsxtest.Sheet{Name: "Data", Rows: [][]any{{"id", "name"}, {1, "a"}}})
	out := filepath.Join(t.TempDir(), "datasets.json")

	require.NoError(t, execute(t, "catalog", dir, "-o", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc := gjson.ParseBytes(data)
	assert.Equal(t, int64(1), doc.Get("#").Int())
	assert.Equal(t, "book - Data", doc.Get("0.name").String())
	assert.Equal(t, "STRING", doc.Get("0.fields.1.type").String())

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	err = execute(t, "catalog", dir, "-o", filepath.Join(blocker, "datasets.json"))
	assert.ErrorIs(t, err, models.ErrWrite)
}
