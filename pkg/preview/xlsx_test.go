package preview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXPreviewFirstThreeRecords(t *testing.T) {
	path := writeXLSX(t,
		[]any{"Name", "Age", "City"},
		[]any{"Alice", 30, "Oslo"},
		[]any{"Bob", 25},
		[]any{"Carol", 41.5, "Rome"},
		[]any{"Dave", 19, "Lima"},
	)

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)

	want := `[
  {
    "Name": "Alice",
    "Age": 30,
    "City": "Oslo"
  },
  {
    "Name": "Bob",
    "Age": 25
  },
  {
    "Name": "Carol",
    "Age": 41.5,
    "City": "Rome"
  }
]`
	assert.Equal(t, want, got)
}

func TestXLSXPreviewHeaderOnly(t *testing.T) {
	path := writeXLSX(t, []any{"A", "B"})

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestXLSXPreviewKeepsNumericLookingText(t *testing.T) {
	path := writeXLSX(t,
		[]any{"Code", "Flag"},
		[]any{"007", true},
	)

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"Code\": \"007\",\n    \"Flag\": true\n  }\n]", got)
}

func TestXLSXPreviewNotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := XLSXPreview(context.Background(), path)
	assert.Error(t, err)
}

func TestHeaderKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"id", "__EMPTY", "id_1", "__EMPTY_1", "name"},
		headerKeys([]string{"id", "", "id", " ", "name"}))
}

func TestRecordMarshalKeepsOrderAndHTML(t *testing.T) {
	rec := record{{Key: "z", Value: "<b>"}, {Key: "a", Value: 1.0}}
	b, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":"<b>","a":1}`, string(b))
}

func writeCells(t *testing.T, dimension string, cells map[string]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	if dimension != "" {
		require.NoError(t, f.SetSheetDimension("Sheet1", dimension))
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXPreviewTableStartsBelowFirstRow(t *testing.T) {
	path := writeCells(t, "", map[string]any{
		"A2": "name", "B2": "age",
		"A3": "Ann", "B3": 30,
	})

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"name\": \"Ann\",\n    \"age\": 30\n  }\n]", got)
}

func TestXLSXPreviewTableStartsRightOfFirstColumn(t *testing.T) {
	path := writeCells(t, "", map[string]any{
		"C3": "city",
		"C4": "Oslo",
	})

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"city\": \"Oslo\"\n  }\n]", got)
}

func TestXLSXPreviewValueWithoutHeader(t *testing.T) {
	path := writeXLSX(t,
		[]any{"name"},
		[]any{"Ann", "extra", "more"},
	)

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)
	want := `[
  {
    "name": "Ann",
    "__EMPTY": "extra",
    "__EMPTY_1": "more"
  }
]`
	assert.Equal(t, want, got)
}

func TestXLSXPreviewHonorsStoredDimension(t *testing.T) {
	// row 1 is inside the stored range, so it is the (blank) header row
	path := writeCells(t, "A1:B3", map[string]any{
		"A2": "x", "B2": "y",
		"A3": 1,
	})

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)
	want := `[
  {
    "__EMPTY": "x",
    "__EMPTY_1": "y"
  },
  {
    "__EMPTY": 1
  }
]`
	assert.Equal(t, want, got)
}

func TestXLSXPreviewIgnoresStaleDimension(t *testing.T) {
	path := writeCells(t, "D5:E9", map[string]any{
		"A1": "k",
		"A2": "v",
	})

	got, err := XLSXPreview(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"k\": \"v\"\n  }\n]", got)
}
