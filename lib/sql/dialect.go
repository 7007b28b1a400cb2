package sql

import (
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

type TableIdentifier interface {
	Schema() string
	Table() string
	// Temporary reports whether the identifier points at a session scoped table.
	Temporary() bool
	WithTable(table string) TableIdentifier
	WithTemporary(temporary bool) TableIdentifier
	FullyQualifiedName() string
}

type Dialect interface {
	QuoteIdentifier(identifier string) string
	// SupportsTransactionalDDL reports whether CREATE TABLE and DROP TABLE are undone by a rollback.
	SupportsTransactionalDDL() bool
	IsTableDoesNotExistErr(err error) bool

	// BuildDescribeTableQuery selects (name, data type, nullable, identity, primary key position) in column order.
	BuildDescribeTableQuery(tableID TableIdentifier) (string, []any)
	BuildCreateStagingTableQuery(tableID TableIdentifier, cols []columns.Column) string
	BuildDropTableQuery(tableID TableIdentifier) string
	// BuildSweepQuery selects (schema, table) for every staging table in the schema.
	BuildSweepQuery(schema string) (string, []any)

	BuildUpdateQuery(tableID, stagingTableID TableIdentifier, qualifiers, cols []columns.Column) string
	BuildDeleteQuery(tableID, stagingTableID TableIdentifier, qualifiers []columns.Column) string
	BuildInsertQuery(tableID, stagingTableID TableIdentifier, cols []columns.Column, overrideIdentity bool) string
	// BuildInsertUnmatchedQuery inserts staged rows that have no qualifier match in the target.
	BuildInsertUnmatchedQuery(tableID, stagingTableID TableIdentifier, qualifiers, cols []columns.Column, overrideIdentity bool) string
	// BuildMergeQuery returns false when the dialect cannot express an upsert as a single statement.
	BuildMergeQuery(tableID, stagingTableID TableIdentifier, qualifiers, updateCols, insertCols []columns.Column, overrideIdentity bool) (string, bool)
	// BuildIdentityInsertQueries returns the statements that wrap an insert of explicit identity values, empty when not required.
	BuildIdentityInsertQueries(tableID TableIdentifier) (enable string, disable string)
}
