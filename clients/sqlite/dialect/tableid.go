package dialect

import (
	"fmt"

	"github.com/artie-labs/bulksync/lib/sql"
)

const (
	MainSchema = "main"
	TempSchema = "temp"
)

var _dialect = SQLiteDialect{}

type TableIdentifier struct {
	schema         string
	table          string
	temporaryTable bool
}

func NewTableIdentifier(schema, table string) TableIdentifier {
	if schema == "" {
		schema = MainSchema
	}
	return TableIdentifier{schema: schema, table: table}
}

func (ti TableIdentifier) Schema() string {
	return ti.schema
}

func (ti TableIdentifier) Table() string {
	return ti.table
}

func (ti TableIdentifier) Temporary() bool {
	return ti.temporaryTable
}

func (ti TableIdentifier) WithTable(table string) sql.TableIdentifier {
	ti.table = table
	return ti
}

func (ti TableIdentifier) WithTemporary(temporary bool) sql.TableIdentifier {
	ti.temporaryTable = temporary
	return ti
}

// FullyQualifiedName returns `"schema"."table"`, temporary tables always live in the `temp` schema.
func (ti TableIdentifier) FullyQualifiedName() string {
	schema := ti.schema
	if ti.temporaryTable {
		schema = TempSchema
	}
	return fmt.Sprintf("%s.%s", _dialect.QuoteIdentifier(schema), _dialect.QuoteIdentifier(ti.table))
}
