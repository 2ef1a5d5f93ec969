package indexing

import (
	"fmt"
	"slices"

	"plateindex/internal/models"
	"plateindex/pkg/table"
)

// Index is the ordered set of records produced by one build, in walk order.
type Index struct {
	Records []models.ImageRecord
}

// Len returns the number of records
func (idx *Index) Len() int { return len(idx.Records) }

// Rows renders the records as table cells in models.IndexColumns order
func (idx *Index) Rows() [][]string {
	rows := make([][]string, len(idx.Records))
	for i, r := range idx.Records {
		rows[i] = r.Values()
	}
	return rows
}

// Write persists the index as CSV at path, header included.
func (idx *Index) Write(path string) error {
	return table.Write(path, models.IndexColumns, idx.Rows())
}

// Summary describes the plate coverage of an index
type Summary struct {
	Images   int
	Wells    []string
	Fields   []int
	Channels []int
}

// Summary counts the distinct wells, fields and channels in the index
func (idx *Index) Summary() Summary {
	wells := map[string]struct{}{}
	fields := map[int]struct{}{}
	channels := map[int]struct{}{}
	for _, r := range idx.Records {
		wells[r.WellPosition.String()] = struct{}{}
		fields[r.Field] = struct{}{}
		channels[r.Channel] = struct{}{}
	}

	s := Summary{Images: len(idx.Records)}
	for w := range wells {
		s.Wells = append(s.Wells, w)
	}
	for f := range fields {
		s.Fields = append(s.Fields, f)
	}
	for c := range channels {
		s.Channels = append(s.Channels, c)
	}
	slices.Sort(s.Wells)
	slices.Sort(s.Fields)
	slices.Sort(s.Channels)
	return s
}

// LoadIndex reads a table written by Index.Write. Column types are
// inferred from the text and no schema check is made.
func LoadIndex(path string) (*table.Table, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}
	return t, nil
}

// SchemaError reports a loaded table that does not have the image index layout.
type SchemaError struct {
	Column string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("index column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("index row %d column %q: %s", e.Row, e.Column, e.Reason)
}

// FromTable converts a loaded table back into an Index.
func FromTable(t *table.Table) (*Index, error) {
	pos := make(map[string]int, len(models.IndexColumns))
	for _, name := range models.IndexColumns {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, &SchemaError{Column: name, Row: -1, Reason: "missing"}
		}
		pos[name] = i
	}

	idx := &Index{Records: make([]models.ImageRecord, 0, t.Len())}
	for n, row := range t.Rows {
		var rec models.ImageRecord
		var err error
		if rec.Column, err = stringCell(row, pos, models.ColumnColumn, n); err != nil {
			return nil, err
		}
		if rec.Row, err = intCell(row, pos, models.ColumnRow, n); err != nil {
			return nil, err
		}
		if rec.Field, err = intCell(row, pos, models.ColumnField, n); err != nil {
			return nil, err
		}
		if rec.Channel, err = intCell(row, pos, models.ColumnChannel, n); err != nil {
			return nil, err
		}
		if rec.RelativePath, err = stringCell(row, pos, models.ColumnPath, n); err != nil {
			return nil, err
		}
		idx.Records = append(idx.Records, rec)
	}
	return idx, nil
}

func stringCell(row []any, pos map[string]int, name string, n int) (string, error) {
	switch v := row[pos[name]].(type) {
	case string:
		return v, nil
	case int64:
		return fmt.Sprint(v), nil
	case float64:
		return fmt.Sprint(v), nil
	default:
		return "", &SchemaError{Column: name, Row: n, Reason: "empty"}
	}
}

func intCell(row []any, pos map[string]int, name string, n int) (int, error) {
	v, ok := row[pos[name]].(int64)
	if !ok {
		return 0, &SchemaError{Column: name, Row: n, Reason: fmt.Sprintf("expected integer, got %v", row[pos[name]])}
	}
	return int(v), nil
}
