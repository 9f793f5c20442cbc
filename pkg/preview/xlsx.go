package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXPreview renders the first MaxRows records of the first sheet as
// indented JSON. The first row holds the keys.
func XLSXPreview(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	records, err := sheetRecords(ctx, f, MaxRows)
	if err != nil {
		return "", err
	}
	return renderRecords(records)
}

// field is one key/value pair of a record, kept in column order.
type field struct {
	Key   string
	Value any
}

type record []field

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

func renderRecords(records []record) (string, error) {
	if records == nil {
		records = []record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("encode xlsx preview: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func sheetRecords(ctx context.Context, f *excelize.File, limit int) ([]record, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx: workbook has no sheets")
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	used, ok := usedRange(f, sheet, formatted)
	if !ok {
		return nil, nil
	}

	var header []string
	if used.top < len(formatted) {
		header = formatted[used.top]
	}
	keys := headerKeys(span(header, used.left, used.right))
	var out []record
	for i := used.top + 1; i < len(raw) && len(out) < limit; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec record
		for col := used.left; col < len(raw[i]) && col <= used.right; col++ {
			val := raw[i][col]
			if val == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", cell, err)
			}
			rec = append(rec, field{Key: keys[col-used.left], Value: typedValue(typ, val)})
		}
		// blank rows are skipped
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out, nil
}

// cellRange holds zero-based, inclusive row and column bounds.
type cellRange struct {
	top, left, right int
}

// usedRange finds the table on the sheet. The header is the first row of the
// stored dimension when it covers the data, otherwise the first non-empty row.
// The range is as wide as the widest row.
func usedRange(f *excelize.File, sheet string, rows [][]string) (cellRange, bool) {
	r := cellRange{top: -1, left: -1, right: -1}
	for i, row := range rows {
		for col, v := range row {
			if v == "" {
				continue
			}
			if r.top < 0 {
				r.top = i
			}
			if r.left < 0 || col < r.left {
				r.left = col
			}
			if col > r.right {
				r.right = col
			}
		}
	}
	if r.top < 0 {
		return r, false
	}

	if dim, err := f.GetSheetDimension(sheet); err == nil {
		if from, to, found := strings.Cut(dim, ":"); found {
			c1, r1, err1 := excelize.CellNameToCoordinates(from)
			c2, _, err2 := excelize.CellNameToCoordinates(to)
			if err1 == nil && err2 == nil && r1-1 <= r.top && c1-1 <= r.left {
				r.top, r.left = r1-1, c1-1
				if c2-1 > r.right {
					r.right = c2 - 1
				}
			}
		}
	}
	return r, true
}

// span returns row[left..right], padding missing cells with "".
func span(row []string, left, right int) []string {
	out := make([]string, right-left+1)
	for col := left; col <= right && col < len(row); col++ {
		out[col-left] = row[col]
	}
	return out
}

// headerKeys names every column. Blank headers become __EMPTY, __EMPTY_1, ...
// and repeated headers get a numeric suffix.
func headerKeys(header []string) []string {
	keys := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "__EMPTY"
		}
		key := base
		if n, ok := seen[base]; ok {
			for {
				key = base + "_" + strconv.Itoa(n)
				n++
				if _, taken := seen[key]; !taken {
					break
				}
			}
			seen[base] = n
		} else {
			seen[base] = 1
		}
		seen[key] = 1
		keys[i] = key
	}
	return keys
}

func typedValue(typ excelize.CellType, val string) any {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return val
	case excelize.CellTypeBool:
		return val == "1" || strings.EqualFold(val, "true")
	}
	if n, err := strconv.ParseFloat(val, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n
	}
	return val
}
