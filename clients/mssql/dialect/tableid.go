package dialect

import (
	"fmt"

	"github.com/artie-labs/bulksync/lib/sql"
)

var _dialect = MSSQLDialect{}

type TableIdentifier struct {
	schema         string
	table          string
	temporaryTable bool
}

func NewTableIdentifier(schema, table string) TableIdentifier {
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
	return TableIdentifier{schema: ti.schema, table: table, temporaryTable: ti.temporaryTable}
}

func (ti TableIdentifier) WithTemporary(temporary bool) sql.TableIdentifier {
	return TableIdentifier{schema: ti.schema, table: ti.table, temporaryTable: temporary}
}

// FullyQualifiedName returns `[schema].[table]`, or `[#table]` for a session temporary table.
func (ti TableIdentifier) FullyQualifiedName() string {
	if ti.temporaryTable {
		return _dialect.QuoteIdentifier("#" + ti.table)
	}

	return fmt.Sprintf("%s.%s", _dialect.QuoteIdentifier(ti.schema), _dialect.QuoteIdentifier(ti.table))
}
