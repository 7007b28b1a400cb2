package columns

import (
	"cmp"
	"slices"
	"strings"
)

// Column describes a destination column as reported by the table's catalog.
type Column struct {
	name     string
	dataType string
	nullable bool
	// primaryKeyPosition is the 1-based position inside the primary key, 0 when the column is not part of it.
	primaryKeyPosition int
	identity           bool
}

func NewColumn(name, dataType string) Column {
	return Column{name: name, dataType: dataType, nullable: true}
}

func (c Column) Name() string {
	return c.name
}

// DataType is the raw type definition, e.g. `nvarchar(50)` or `numeric(10,2)`.
func (c Column) DataType() string {
	return c.dataType
}

func (c Column) Nullable() bool {
	return c.nullable
}

func (c Column) PrimaryKey() bool {
	return c.primaryKeyPosition > 0
}

func (c Column) PrimaryKeyPosition() int {
	return c.primaryKeyPosition
}

func (c Column) Identity() bool {
	return c.identity
}

func (c Column) WithNullable(nullable bool) Column {
	c.nullable = nullable
	return c
}

func (c Column) WithPrimaryKeyPosition(position int) Column {
	c.primaryKeyPosition = position
	return c
}

func (c Column) WithIdentity(identity bool) Column {
	c.identity = identity
	return c
}

func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name()
	}
	return names
}

// PrimaryKeys returns the primary key columns ordered by their position in the key.
func PrimaryKeys(cols []Column) []Column {
	var pks []Column
	for _, col := range cols {
		if col.PrimaryKey() {
			pks = append(pks, col)
		}
	}

	slices.SortStableFunc(pks, func(a, b Column) int {
		return cmp.Compare(a.primaryKeyPosition, b.primaryKeyPosition)
	})
	return pks
}

func IdentityColumns(cols []Column) []Column {
	var identities []Column
	for _, col := range cols {
		if col.Identity() {
			identities = append(identities, col)
		}
	}
	return identities
}

// Find looks a column up by name, ignoring case.
func Find(cols []Column, name string) (Column, bool) {
	for _, col := range cols {
		if strings.EqualFold(col.Name(), name) {
			return col, true
		}
	}
	return Column{}, false
}

// Exclude returns the columns whose names are not in [names], comparing case-insensitively.
func Exclude(cols []Column, names []string) []Column {
	var result []Column
	for _, col := range cols {
		if !slices.ContainsFunc(names, func(name string) bool { return strings.EqualFold(name, col.Name()) }) {
			result = append(result, col)
		}
	}
	return result
}

// WithoutIdentity drops identity columns.
func WithoutIdentity(cols []Column) []Column {
	var result []Column
	for _, col := range cols {
		if !col.Identity() {
			result = append(result, col)
		}
	}
	return result
}
