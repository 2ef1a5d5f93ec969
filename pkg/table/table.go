// Package table persists flat tables as comma separated text with a header
// row, and reads them back with per-column type inference.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Kind is the inferred type of a column
type Kind int

const (
	// KindInt columns hold int64 cells
	KindInt Kind = iota
	// KindFloat columns hold float64 cells
	KindFloat
	// KindString columns hold string cells
	KindString
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Table is an in-memory flat table. Cells are int64, float64, string, or nil
// for an empty field, according to the column's Kind.
type Table struct {
	Columns []string
	Kinds   []Kind
	Rows    [][]any
}

// Len returns the number of data rows
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Write creates or truncates path and writes header followed by rows.
// No row-number column is emitted.
func Write(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := Encode(file, header, rows); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

// Encode writes header and rows to w as CSV
func Encode(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// Read loads a table written by Write.
func Read(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// ErrNoHeader is returned when the input holds no header row.
var ErrNoHeader = errors.New("table has no header row")

// Decode parses CSV from r. The first record is the header; every column is
// typed as int if all its non-empty cells parse as integers, else float if
// they all parse as floats, else string.
func Decode(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header, body := records[0], records[1:]
	t := &Table{
		Columns: header,
		Kinds:   make([]Kind, len(header)),
		Rows:    make([][]any, len(body)),
	}

	for col := range header {
		t.Kinds[col] = inferKind(body, col)
	}

	for i, record := range body {
		row := make([]any, len(header))
		for col, cell := range record {
			row[col] = convert(cell, t.Kinds[col])
		}
		t.Rows[i] = row
	}
	return t, nil
}

func inferKind(body [][]string, col int) Kind {
	kind := KindInt
	for _, record := range body {
		cell := record[col]
		if cell == "" {
			// missing values cannot live in an integer column
			if kind == KindInt {
				kind = KindFloat
			}
			continue
		}
		if kind == KindInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			kind = KindFloat
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return KindString
		}
	}
	return kind
}

func convert(cell string, kind Kind) any {
	if cell == "" {
		return nil
	}
	switch kind {
	case KindInt:
		v, _ := strconv.ParseInt(cell, 10, 64)
		return v
	case KindFloat:
		v, _ := strconv.ParseFloat(cell, 64)
		return v
	default:
		return cell
	}
}
