package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html#error_er_no_such_table
const noSuchTableErrorNumber = 1146

const describeTableQuery = `
SELECT
    c.COLUMN_NAME,
    c.COLUMN_TYPE,
    c.IS_NULLABLE = 'YES',
    c.EXTRA LIKE '%auto_increment%',
    COALESCE(k.ORDINAL_POSITION, 0)
FROM INFORMATION_SCHEMA.COLUMNS c
LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
    ON k.TABLE_SCHEMA = c.TABLE_SCHEMA AND k.TABLE_NAME = c.TABLE_NAME AND k.COLUMN_NAME = c.COLUMN_NAME AND k.CONSTRAINT_NAME = 'PRIMARY'
WHERE c.TABLE_SCHEMA = ? AND c.TABLE_NAME = ?
ORDER BY c.ORDINAL_POSITION`

type MySQLDialect struct{}

func (MySQLDialect) QuoteIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

// SupportsTransactionalDDL is false, CREATE TABLE and DROP TABLE commit the open transaction.
// Only the TEMPORARY forms are safe inside one.
func (MySQLDialect) SupportsTransactionalDDL() bool {
	return false
}

func (MySQLDialect) IsTableDoesNotExistErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == noSuchTableErrorNumber
	}
	return false
}

func (MySQLDialect) BuildDescribeTableQuery(tableID sql.TableIdentifier) (string, []any) {
	return describeTableQuery, []any{tableID.Schema(), tableID.Table()}
}

func (md MySQLDialect) BuildCreateStagingTableQuery(tableID sql.TableIdentifier, cols []columns.Column) string {
	var temporary string
	if tableID.Temporary() {
		temporary = "TEMPORARY "
	}

	return fmt.Sprintf("CREATE %sTABLE %s (%s);", temporary, tableID.FullyQualifiedName(), strings.Join(sql.BuildColumnDefinitions(cols, md), ","))
}

func (MySQLDialect) BuildDropTableQuery(tableID sql.TableIdentifier) string {
	if tableID.Temporary() {
		return "DROP TEMPORARY TABLE IF EXISTS " + tableID.FullyQualifiedName()
	}
	return sql.DefaultBuildDropTableQuery(tableID)
}

func (MySQLDialect) BuildSweepQuery(schema string) (string, []any) {
	return `SELECT TABLE_SCHEMA, TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME LIKE ?`, []any{schema, "%" + constants.StagingTablePrefix + "%"}
}

func (md MySQLDialect) BuildUpdateQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column) string {
	return fmt.Sprintf("UPDATE %s AS %s INNER JOIN %s AS %s ON %s SET %s;",
		tableID.FullyQualifiedName(), constants.TargetAlias,
		stagingTableID.FullyQualifiedName(), constants.StagingAlias, md.joinOn(qualifiers),
		sql.BuildColumnsUpdateFragment(cols, constants.StagingAlias, constants.TargetAlias, md),
	)
}

func (md MySQLDialect) BuildDeleteQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers []columns.Column) string {
	return fmt.Sprintf("DELETE %s FROM %s AS %s INNER JOIN %s AS %s ON %s;",
		constants.TargetAlias,
		tableID.FullyQualifiedName(), constants.TargetAlias,
		stagingTableID.FullyQualifiedName(), constants.StagingAlias, md.joinOn(qualifiers),
	)
}

// BuildInsertQuery ignores [overrideIdentity], MySQL accepts explicit AUTO_INCREMENT values as is.
func (md MySQLDialect) BuildInsertQuery(tableID, stagingTableID sql.TableIdentifier, cols []columns.Column, _ bool) string {
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s AS %s;",
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, md), ","),
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, md), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
	)
}

func (md MySQLDialect) BuildInsertUnmatchedQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column, _ bool) string {
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s AS %s LEFT JOIN %s AS %s ON %s WHERE %s IS NULL;",
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, md), ","),
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, md), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
		tableID.FullyQualifiedName(), constants.TargetAlias, md.joinOn(qualifiers),
		sql.QuoteTableAliasColumn(constants.TargetAlias, qualifiers[0], md),
	)
}

// BuildMergeQuery is not supported. INSERT ... ON DUPLICATE KEY UPDATE matches on unique keys rather than the qualifiers
// and reports an update as two affected rows.
func (MySQLDialect) BuildMergeQuery(_, _ sql.TableIdentifier, _, _, _ []columns.Column, _ bool) (string, bool) {
	return "", false
}

func (MySQLDialect) BuildIdentityInsertQueries(_ sql.TableIdentifier) (string, string) {
	return "", ""
}

func (md MySQLDialect) joinOn(qualifiers []columns.Column) string {
	return strings.Join(sql.BuildColumnComparisons(qualifiers, constants.TargetAlias, constants.StagingAlias, md), " AND ")
}
