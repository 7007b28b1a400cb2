package dialect

import (
	"fmt"
	"strings"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// SQLite has no identity columns, an INTEGER PRIMARY KEY accepts explicit values as is.
const describeTableQuery = `SELECT name, type, "notnull" = 0, 0, pk FROM pragma_table_info(?, ?) ORDER BY cid`

type SQLiteDialect struct{}

func (SQLiteDialect) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(identifier, `"`, `""`))
}

func (SQLiteDialect) SupportsTransactionalDDL() bool {
	return true
}

func (SQLiteDialect) IsTableDoesNotExistErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func (SQLiteDialect) BuildDescribeTableQuery(tableID sql.TableIdentifier) (string, []any) {
	return describeTableQuery, []any{tableID.Table(), tableID.Schema()}
}

func (sd SQLiteDialect) BuildCreateStagingTableQuery(tableID sql.TableIdentifier, cols []columns.Column) string {
	var temporary string
	if tableID.Temporary() {
		temporary = "TEMP "
	}

	return fmt.Sprintf("CREATE %sTABLE %s (%s);", temporary, tableID.FullyQualifiedName(), strings.Join(sql.BuildColumnDefinitions(cols, sd), ","))
}

func (SQLiteDialect) BuildDropTableQuery(tableID sql.TableIdentifier) string {
	return sql.DefaultBuildDropTableQuery(tableID)
}

func (sd SQLiteDialect) BuildSweepQuery(schema string) (string, []any) {
	return fmt.Sprintf(`SELECT ?, name FROM %s.sqlite_master WHERE type = 'table' AND name LIKE ?`, sd.QuoteIdentifier(schema)),
		[]any{schema, "%" + constants.StagingTablePrefix + "%"}
}

// BuildUpdateQuery relies on UPDATE ... FROM, available since SQLite 3.33.
func (sd SQLiteDialect) BuildUpdateQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column) string {
	return fmt.Sprintf(`UPDATE %s AS %s SET %s FROM %s AS %s WHERE %s;`,
		tableID.FullyQualifiedName(), constants.TargetAlias, sql.BuildColumnsUpdateFragment(cols, constants.StagingAlias, "", sd),
		stagingTableID.FullyQualifiedName(), constants.StagingAlias, sd.joinOn(qualifiers),
	)
}

func (sd SQLiteDialect) BuildDeleteQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers []columns.Column) string {
	return fmt.Sprintf(`DELETE FROM %s AS %s WHERE EXISTS (SELECT 1 FROM %s AS %s WHERE %s);`,
		tableID.FullyQualifiedName(), constants.TargetAlias,
		stagingTableID.FullyQualifiedName(), constants.StagingAlias, sd.joinOn(qualifiers),
	)
}

func (sd SQLiteDialect) BuildInsertQuery(tableID, stagingTableID sql.TableIdentifier, cols []columns.Column, _ bool) string {
	return fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM %s AS %s;`,
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, sd), ","),
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, sd), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
	)
}

func (sd SQLiteDialect) BuildInsertUnmatchedQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column, _ bool) string {
	return fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM %s AS %s LEFT JOIN %s AS %s ON %s WHERE %s IS NULL;`,
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, sd), ","),
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, sd), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
		tableID.FullyQualifiedName(), constants.TargetAlias, sd.joinOn(qualifiers),
		sql.QuoteTableAliasColumn(constants.TargetAlias, qualifiers[0], sd),
	)
}

// BuildMergeQuery is not supported, SQLite's upsert resolves conflicts on unique indexes rather than the qualifiers.
func (SQLiteDialect) BuildMergeQuery(_, _ sql.TableIdentifier, _, _, _ []columns.Column, _ bool) (string, bool) {
	return "", false
}

func (SQLiteDialect) BuildIdentityInsertQueries(_ sql.TableIdentifier) (string, string) {
	return "", ""
}

func (sd SQLiteDialect) joinOn(qualifiers []columns.Column) string {
	return strings.Join(sql.BuildColumnComparisons(qualifiers, constants.TargetAlias, constants.StagingAlias, sd), " AND ")
}
