package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func personColumns() []Column {
	return []Column{
		NewColumn("Id", "int").WithNullable(false).WithPrimaryKeyPosition(1).WithIdentity(true),
		NewColumn("Name", "nvarchar(50)"),
		NewColumn("Age", "int"),
	}
}

func TestColumn(t *testing.T) {
	col := NewColumn("Name", "nvarchar(50)")
	assert.Equal(t, "Name", col.Name())
	assert.Equal(t, "nvarchar(50)", col.DataType())
	assert.True(t, col.Nullable())
	assert.False(t, col.PrimaryKey())
	assert.False(t, col.Identity())

	updated := col.WithPrimaryKeyPosition(2).WithNullable(false)
	assert.True(t, updated.PrimaryKey())
	assert.Equal(t, 2, updated.PrimaryKeyPosition())
	assert.False(t, updated.Nullable())
	// The original is untouched.
	assert.False(t, col.PrimaryKey())
}

func TestColumnNames(t *testing.T) {
	assert.Empty(t, ColumnNames(nil))
	assert.Equal(t, []string{"Id", "Name", "Age"}, ColumnNames(personColumns()))
}

func TestPrimaryKeys(t *testing.T) {
	{
		assert.Equal(t, []string{"Id"}, ColumnNames(PrimaryKeys(personColumns())))
	}
	{
		// Ordered by key position, not table position
		cols := []Column{
			NewColumn("a", "int").WithPrimaryKeyPosition(2),
			NewColumn("b", "int"),
			NewColumn("c", "int").WithPrimaryKeyPosition(1),
		}
		assert.Equal(t, []string{"c", "a"}, ColumnNames(PrimaryKeys(cols)))
	}
	{
		assert.Empty(t, PrimaryKeys([]Column{NewColumn("a", "int")}))
	}
}

func TestIdentityColumns(t *testing.T) {
	assert.Equal(t, []string{"Id"}, ColumnNames(IdentityColumns(personColumns())))
	assert.Empty(t, IdentityColumns(personColumns()[1:]))
}

func TestFind(t *testing.T) {
	col, ok := Find(personColumns(), "name")
	assert.True(t, ok)
	assert.Equal(t, "Name", col.Name())

	_, ok = Find(personColumns(), "email")
	assert.False(t, ok)
}

func TestExclude(t *testing.T) {
	assert.Equal(t, []string{"Name", "Age"}, ColumnNames(Exclude(personColumns(), []string{"ID"})))
	assert.Equal(t, []string{"Id", "Name", "Age"}, ColumnNames(Exclude(personColumns(), nil)))
	assert.Empty(t, Exclude(personColumns(), []string{"id", "name", "age"}))
}

func TestWithoutIdentity(t *testing.T) {
	assert.Equal(t, []string{"Name", "Age"}, ColumnNames(WithoutIdentity(personColumns())))
}
