package dialect

import (
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// https://learn.microsoft.com/en-us/sql/relational-databases/errors-events/database-engine-events-and-errors
const invalidObjectNameErrorNumber = 208

type MSSQLDialect struct{}

func (MSSQLDialect) QuoteIdentifier(identifier string) string {
	return "[" + strings.ReplaceAll(identifier, "]", "]]") + "]"
}

func (MSSQLDialect) SupportsTransactionalDDL() bool {
	return true
}

func (MSSQLDialect) IsTableDoesNotExistErr(err error) bool {
	var mssqlErr mssql.Error
	if errors.As(err, &mssqlErr) {
		return mssqlErr.Number == invalidObjectNameErrorNumber
	}
	return false
}

func (MSSQLDialect) BuildDescribeTableQuery(tableID sql.TableIdentifier) (string, []any) {
	return `
SELECT
    c.COLUMN_NAME,
    CASE
        WHEN c.DATA_TYPE IN ('char', 'varchar', 'nchar', 'nvarchar', 'binary', 'varbinary')
            THEN c.DATA_TYPE + '(' + CASE WHEN c.CHARACTER_MAXIMUM_LENGTH = -1 THEN 'max' ELSE CAST(c.CHARACTER_MAXIMUM_LENGTH AS VARCHAR(10)) END + ')'
        WHEN c.DATA_TYPE IN ('decimal', 'numeric')
            THEN c.DATA_TYPE + '(' + CAST(c.NUMERIC_PRECISION AS VARCHAR(10)) + ',' + CAST(c.NUMERIC_SCALE AS VARCHAR(10)) + ')'
        WHEN c.DATA_TYPE IN ('datetime2', 'datetimeoffset', 'time')
            THEN c.DATA_TYPE + '(' + CAST(c.DATETIME_PRECISION AS VARCHAR(10)) + ')'
        ELSE c.DATA_TYPE
    END,
    CAST(CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS BIT),
    CAST(COALESCE(COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity'), 0) AS BIT),
    COALESCE(k.ORDINAL_POSITION, 0)
FROM INFORMATION_SCHEMA.COLUMNS c
LEFT JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
    ON tc.TABLE_SCHEMA = c.TABLE_SCHEMA AND tc.TABLE_NAME = c.TABLE_NAME AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
    ON k.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA AND k.CONSTRAINT_NAME = tc.CONSTRAINT_NAME AND k.COLUMN_NAME = c.COLUMN_NAME
WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
ORDER BY c.ORDINAL_POSITION`, []any{tableID.Schema(), tableID.Table()}
}

func (md MSSQLDialect) BuildCreateStagingTableQuery(tableID sql.TableIdentifier, cols []columns.Column) string {
	// Microsoft SQL Server uses the same syntax for temporary and permanent tables, the `#` prefix makes it temporary.
	return fmt.Sprintf("CREATE TABLE %s (%s);", tableID.FullyQualifiedName(), strings.Join(sql.BuildColumnDefinitions(cols, md), ","))
}

func (MSSQLDialect) BuildDropTableQuery(tableID sql.TableIdentifier) string {
	return sql.DefaultBuildDropTableQuery(tableID) + ";"
}

func (MSSQLDialect) BuildSweepQuery(schema string) (string, []any) {
	return `
SELECT
    TABLE_SCHEMA, TABLE_NAME
FROM
    INFORMATION_SCHEMA.TABLES
WHERE
    TABLE_SCHEMA = @p1 AND TABLE_NAME LIKE @p2`, []any{schema, "%" + constants.StagingTablePrefix + "%"}
}

func (md MSSQLDialect) BuildUpdateQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column) string {
	return fmt.Sprintf(`
UPDATE %s SET %s
FROM %s AS %s INNER JOIN %s AS %s ON %s;`,
		// UPDATE tgt SET [col]=stg.[col]
		constants.TargetAlias, sql.BuildColumnsUpdateFragment(cols, constants.StagingAlias, "", md),
		// FROM target AS tgt INNER JOIN staging AS stg ON tgt.pk = stg.pk
		tableID.FullyQualifiedName(), constants.TargetAlias, stagingTableID.FullyQualifiedName(), constants.StagingAlias,
		joinOn(qualifiers, md),
	)
}

func (md MSSQLDialect) BuildDeleteQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers []columns.Column) string {
	return fmt.Sprintf(`
DELETE %s FROM %s AS %s INNER JOIN %s AS %s ON %s;`,
		constants.TargetAlias,
		tableID.FullyQualifiedName(), constants.TargetAlias, stagingTableID.FullyQualifiedName(), constants.StagingAlias,
		joinOn(qualifiers, md),
	)
}

func (md MSSQLDialect) BuildInsertQuery(tableID, stagingTableID sql.TableIdentifier, cols []columns.Column, _ bool) string {
	return fmt.Sprintf(`
INSERT INTO %s (%s)
SELECT %s FROM %s AS %s;`,
		// INSERT INTO target ([col])
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, md), ","),
		// SELECT stg.[col] FROM staging AS stg
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, md), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
	)
}

func (md MSSQLDialect) BuildInsertUnmatchedQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column, _ bool) string {
	return fmt.Sprintf(`
INSERT INTO %s (%s)
SELECT %s FROM %s AS %s
LEFT JOIN %s AS %s ON %s
WHERE %s IS NULL;`,
		// INSERT INTO target ([col])
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, md), ","),
		// SELECT stg.[col] FROM staging AS stg
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, md), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
		// LEFT JOIN target AS tgt ON tgt.pk = stg.pk
		tableID.FullyQualifiedName(), constants.TargetAlias, joinOn(qualifiers, md),
		// WHERE tgt.pk IS NULL (one qualifier is enough since the join covers all of them)
		sql.QuoteTableAliasColumn(constants.TargetAlias, qualifiers[0], md),
	)
}

func (md MSSQLDialect) BuildMergeQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, updateCols, insertCols []columns.Column, _ bool) (string, bool) {
	var matchedClause string
	if len(updateCols) > 0 {
		matchedClause = fmt.Sprintf("\nWHEN MATCHED THEN UPDATE SET %s", sql.BuildColumnsUpdateFragment(updateCols, constants.StagingAlias, "", md))
	}

	return fmt.Sprintf(`
MERGE INTO %s AS %s
USING %s AS %s ON %s%s
WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);`,
		// MERGE INTO target AS tgt
		tableID.FullyQualifiedName(), constants.TargetAlias,
		// USING staging AS stg ON tgt.pk = stg.pk
		stagingTableID.FullyQualifiedName(), constants.StagingAlias, joinOn(qualifiers, md),
		// WHEN MATCHED THEN UPDATE SET [col]=stg.[col]
		matchedClause,
		// WHEN NOT MATCHED THEN INSERT ([col]) VALUES (stg.[col])
		strings.Join(sql.QuoteColumns(insertCols, md), ","), strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, insertCols, md), ","),
	), true
}

func (MSSQLDialect) BuildIdentityInsertQueries(tableID sql.TableIdentifier) (string, string) {
	return fmt.Sprintf("SET IDENTITY_INSERT %s ON;", tableID.FullyQualifiedName()),
		fmt.Sprintf("SET IDENTITY_INSERT %s OFF;", tableID.FullyQualifiedName())
}

func joinOn(qualifiers []columns.Column, md MSSQLDialect) string {
	return strings.Join(sql.BuildColumnComparisons(qualifiers, constants.TargetAlias, constants.StagingAlias, md), " AND ")
}
