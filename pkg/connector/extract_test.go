package connector

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/kavithaselva95/excel-connector/internal/xlsxtest"
	"github.com/kavithaselva95/excel-connector/pkg/connector/output"
)

func ordersBook(t *testing.T) string {
	t.Helper()
	return xlsxtest.WriteTemp(t, "orders.xlsx",
		xlsxtest.Sheet{Name: "Orders", Rows: [][]any{
			{"id", "amount", "date"},
			{1, "10.5", "2023-01-15"},
			{2, "N/A", "2023-01-16"},
			{3, 7, "2023-01-17"},
		}},
		xlsxtest.Sheet{Name: "HeaderOnly", Rows: [][]any{
			{"id", "amount"},
		}},
		xlsxtest.Sheet{Name: "Dup", Rows: [][]any{
			{"id", "id"},
			{1, 2},
		}},
	)
}

func TestConvertScenario(t *testing.T) {
	path := xlsxtest.WriteTemp(t, "book.xlsx", xlsxtest.Sheet{Name: "Data", Rows: [][]any{
		{"id", "amount", "date"},
		{1, "10.5", "2023-01-15"},
	}})

	wb, err := Convert(context.Background(), path, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	data, err := output.SheetToJSON(&wb.Sheets[0], false)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"amount":10.5,"date":"2023-01-15"}]`, string(data))
}

func TestConvertPartialAndSheetFailures(t *testing.T) {
	var logs bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	wb, err := Convert(context.Background(), ordersBook(t), opts)
	require.NoError(t, err)
	assert.Equal(t, "orders.xlsx", wb.BookName)
	require.Len(t, wb.Sheets, 3)

	orders := wb.Sheets[0]
	require.NoError(t, orders.Err)
	require.Len(t, orders.Records, 3)
	assert.False(t, orders.Records[0].Partial)
	assert.True(t, orders.Records[1].Partial)
	amount, _ := orders.Records[1].Get("amount")
	assert.True(t, amount.IsNull())
	require.Len(t, orders.Records[1].Diagnostics, 1)
	assert.Equal(t, "N/A", orders.Records[1].Diagnostics[0].Raw)

	headerOnly := wb.Sheets[1]
	require.NoError(t, headerOnly.Err)
	assert.Empty(t, headerOnly.Records)
	assert.Len(t, headerOnly.Columns, 2)

	dup := wb.Sheets[2]
	assert.ErrorIs(t, dup.Err, ErrDuplicateColumn)
	var ee *ExtractionError
	require.True(t, errors.As(dup.Err, &ee))
	assert.Equal(t, "schema", ee.Component)
	assert.Equal(t, "Dup", ee.SheetName)

	s := Summarize(wb)
	assert.Equal(t, 1, s.Workbooks)
	assert.Equal(t, 3, s.Sheets)
	assert.Equal(t, 1, s.FailedSheets)
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 1, s.Partial)
	assert.Equal(t, 1, s.Diagnostics)
	assert.ErrorIs(t, s.Err(), ErrDuplicateColumn)

	assert.Contains(t, logs.String(), "cell not converted")
	assert.Contains(t, logs.String(), "summary.records=3")
}

func TestConvertHeaderOnlyJSON(t *testing.T) {
	opts := DefaultOptions()
	opts.Sheets = []string{"HeaderOnly"}

	wb, err := Convert(context.Background(), ordersBook(t), opts)
	require.NoError(t, err)

	data, err := output.ToJSON(wb, false)
	require.NoError(t, err)
	assert.Equal(t, `{"book_name":"orders.xlsx","sheets":{"HeaderOnly":[]}}`, string(data))
}

func TestConvertSelectedSheets(t *testing.T) {
	opts := DefaultOptions()
	opts.Sheets = []string{"Missing", "Orders"}

	wb, err := Convert(context.Background(), ordersBook(t), opts)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	missing := wb.Sheets[0]
	assert.Equal(t, "Missing", missing.Name)
	assert.ErrorIs(t, missing.Err, ErrSheetNotFound)
	var nf *SheetNotFoundError
	require.True(t, errors.As(missing.Err, &nf))
	assert.Equal(t, "Missing", nf.Name)

	assert.Equal(t, "Orders", wb.Sheets[1].Name)
	assert.NoError(t, wb.Sheets[1].Err)
	assert.Len(t, wb.Sheets[1].Records, 3)
}

func TestConvertRepeatedSheetOnce(t *testing.T) {
	opts := DefaultOptions()
	opts.Sheets = []string{"Orders", "Orders", "Missing", "Missing"}

	wb, err := Convert(context.Background(), ordersBook(t), opts)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "Orders", wb.Sheets[0].Name)
	assert.Len(t, wb.Sheets[0].Records, 3)
	assert.ErrorIs(t, wb.Sheets[1].Err, ErrSheetNotFound)
	assert.Equal(t, 3, Summarize(wb).Records)
}

func TestConvertNumbersRoundTrip(t *testing.T) {
	values := []float64{0.1, 123456789.123456789, 1 << 53, -1e-7, 1e21}
	rows := [][]any{{"v"}}
	for _, v := range values {
		rows = append(rows, []any{v})
	}
	path := xlsxtest.WriteTemp(t, "numbers.xlsx", xlsxtest.Sheet{Name: "N", Rows: rows})

	wb, err := Convert(context.Background(), path, DefaultOptions())
	require.NoError(t, err)
	data, err := output.ToJSON(wb, false)
	require.NoError(t, err)

	got := gjson.GetBytes(data, "sheets.N.#.v").Array()
	require.Len(t, got, len(values))
	for i, want := range values {
		assert.Equal(t, gjson.Number, got[i].Type, "row %d: %s", i, got[i].Raw)
		assert.Equal(t, want, got[i].Float(), "row %d: %s", i, got[i].Raw)
	}
}

func TestConvertConcurrentMatchesSequential(t *testing.T) {
	path := ordersBook(t)

	sequential, err := Convert(context.Background(), path, DefaultOptions())
	require.NoError(t, err)
	want, err := output.ToJSON(sequential, false)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Workers = 3
	for i := 0; i < 3; i++ {
		concurrent, err := Convert(context.Background(), path, opts)
		require.NoError(t, err)
		got, err := output.ToJSON(concurrent, false)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
		assert.Equal(t, Summarize(sequential).FailedSheets, Summarize(concurrent).FailedSheets)
	}
}

func TestConvertIdempotent(t *testing.T) {
	path := ordersBook(t)
	dir := t.TempDir()

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		wb, err := Convert(context.Background(), path, DefaultOptions())
		require.NoError(t, err)
		out := filepath.Join(dir, "out.json")
		require.NoError(t, output.WriteFile(out, wb, output.FormatJSON, true))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestConvertUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	wb, err := Convert(context.Background(), path, DefaultOptions())
	assert.Nil(t, wb)
	assert.ErrorIs(t, err, ErrUnreadableFile)
	var ue *UnreadableFileError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, path, ue.Path)
}

func TestConvertCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Convert(ctx, ordersBook(t), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)

	opts := DefaultOptions()
	opts.Workers = 2
	_, err = Convert(ctx, ordersBook(t), opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.Timeout = time.Nanosecond

	_, err := Convert(context.Background(), ordersBook(t), opts)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConvertDir(t *testing.T) {
	dir := t.TempDir()
	xlsxtest.Write(t, dir, "b.xlsx", xlsxtest.Sheet{Name: "S", Rows: [][]any{{"x"}, {2}}})
	xlsxtest.Write(t, dir, "a.xlsx", xlsxtest.Sheet{Name: "S", Rows: [][]any{{"x"}, {1}}})

	wbs, err := ConvertDir(context.Background(), dir, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, wbs, 2)
	assert.Equal(t, "a.xlsx", wbs[0].BookName)
	assert.Equal(t, "b.xlsx", wbs[1].BookName)

	s := Summarize(wbs...)
	assert.Equal(t, 2, s.Workbooks)
	assert.Equal(t, 2, s.Records)
	assert.NoError(t, s.Err())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.xlsx"), []byte("junk"), 0o644))
	wbs, err = ConvertDir(context.Background(), dir, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnreadableFile)
	assert.Len(t, wbs, 2)
}

func TestExtractionError(t *testing.T) {
	inner := &DuplicateColumnError{Sheet: "S", Name: "id", First: 1, Second: 2}
	err := NewExtractionError("book.xlsx", "S", "schema", inner)
	assert.Contains(t, err.Error(), `book.xlsx sheet "S" (schema)`)
	assert.ErrorIs(t, err, ErrDuplicateColumn)
	assert.Same(t, inner, errors.Unwrap(err))
}
