package dialect

import (
	"fmt"

	"github.com/artie-labs/bulksync/lib/sql"
)

var _dialect = MySQLDialect{}

type TableIdentifier struct {
	database       string
	table          string
	temporaryTable bool
}

func NewTableIdentifier(database, table string) TableIdentifier {
	return TableIdentifier{database: database, table: table}
}

func (ti TableIdentifier) Database() string {
	return ti.database
}

// Schema returns the database name (MySQL uses database instead of schema)
func (ti TableIdentifier) Schema() string {
	return ti.database
}

func (ti TableIdentifier) Table() string {
	return ti.table
}

func (ti TableIdentifier) Temporary() bool {
	return ti.temporaryTable
}

func (ti TableIdentifier) WithTable(table string) sql.TableIdentifier {
	return TableIdentifier{database: ti.database, table: table, temporaryTable: ti.temporaryTable}
}

func (ti TableIdentifier) WithTemporary(temporary bool) sql.TableIdentifier {
	ti.temporaryTable = temporary
	return ti
}

// FullyQualifiedName returns `database`.`table`, temporary tables are qualified the same way.
func (ti TableIdentifier) FullyQualifiedName() string {
	return fmt.Sprintf("%s.%s", _dialect.QuoteIdentifier(ti.database), _dialect.QuoteIdentifier(ti.table))
}
