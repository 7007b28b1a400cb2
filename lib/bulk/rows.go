package bulk

import (
	"fmt"
	"maps"
	"slices"
)

// RowSource enumerates rows as values aligned with [RowSource.Fields].
type RowSource interface {
	Fields() []string
	Len() int
	Values(i int) []any
}

// Rows is an immutable [RowSource] backed by a snapshot of the caller's data.
type Rows struct {
	fields []string
	values [][]any
}

// NewRows copies [fields] and [values], every row must have one value per field.
func NewRows(fields []string, values [][]any) (*Rows, error) {
	copied := make([][]any, len(values))
	for i, row := range values {
		if len(row) != len(fields) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(fields))
		}
		copied[i] = slices.Clone(row)
	}

	return &Rows{fields: slices.Clone(fields), values: copied}, nil
}

// RowsFromMaps snapshots [rows]. The fields are the union of every row's keys in sorted order,
// a key missing from a row is read as NULL.
func RowsFromMaps(rows []map[string]any) *Rows {
	keys := make(map[string]bool)
	for _, row := range rows {
		for key := range row {
			keys[key] = true
		}
	}

	fields := slices.Sorted(maps.Keys(keys))
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(fields))
		for j, field := range fields {
			values[i][j] = row[field]
		}
	}

	return &Rows{fields: fields, values: values}
}

func (r *Rows) Fields() []string {
	return r.fields
}

func (r *Rows) Len() int {
	return len(r.values)
}

func (r *Rows) Values(i int) []any {
	return r.values[i]
}
