// Package importer reads store catalogues and sales history from CSV and
// XLSX exports into the types the analytics packages work with.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is the container format of an import file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// RowError describes one rejected row. Row is 1-based and counts the header.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// Result holds the accepted rows and the rejected ones of an import.
type Result[T any] struct {
	Rows      []T        `json:"rows"`
	Errors    []RowError `json:"errors"`
	TotalRows int        `json:"total_rows"`
}

// ValidRows is the number of accepted rows.
func (r Result[T]) ValidRows() int {
	return len(r.Rows)
}

// table is a header plus data rows, both as raw strings.
type table struct {
	header []string
	rows   [][]string
}

func readTable(content []byte, format Format) (table, error) {
	switch format {
	case FormatCSV:
		return readCSV(content)
	case FormatXLSX:
		return readXLSX(content)
	default:
		return table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readCSV(content []byte) (table, error) {
	text, err := Decode(content, DetectEncoding(content))
	if err != nil {
		return table{}, err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	delim := DetectDelimiter(text)

	var t table
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := SplitLine(line, delim)
		if t.header == nil {
			t.header = fields
			continue
		}
		t.rows = append(t.rows, fields)
	}
	if t.header == nil {
		return table{}, errors.New("file is empty")
	}
	return t, nil
}

func readXLSX(content []byte) (table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	var t table
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if t.header == nil {
			t.header = row
			continue
		}
		t.rows = append(t.rows, row)
	}
	if t.header == nil {
		return table{}, errors.New("sheet is empty")
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader folds "Store ID", "store_id" and "STORE-ID" to "storeid".
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if r == ' ' || r == '_' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// columns maps field names to column indices using a list of accepted
// header aliases per field.
type columns map[string]int

func resolveColumns(header []string, aliases map[string][]string, required []string) (columns, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := byName[normalizeHeader(h)]; !dup {
			byName[normalizeHeader(h)] = i
		}
	}

	cols := make(columns, len(aliases))
	for field, names := range aliases {
		for _, name := range names {
			if idx, ok := byName[normalizeHeader(name)]; ok {
				cols[field] = idx
				break
			}
		}
	}

	var missing []string
	for _, field := range required {
		if _, ok := cols[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// get returns the trimmed cell for field, or "" when the column is absent
// or the row is short.
func (c columns) get(row []string, field string) string {
	idx, ok := c[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
