package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html#:~:text=undefined_function-,42P01,-undefined_table
const undefinedTableErrorCode = "42P01"

// to_regclass returns NULL for a missing relation, which surfaces as zero rows instead of an error.
const describeTableQuery = `
SELECT
    a.attname,
    pg_catalog.format_type(a.atttypid, a.atttypmod),
    NOT a.attnotnull,
    a.attidentity <> '',
    COALESCE(array_position(i.indkey::int2[], a.attnum), 0)
FROM pg_catalog.pg_attribute a
LEFT JOIN pg_catalog.pg_index i ON i.indrelid = a.attrelid AND i.indisprimary
WHERE a.attrelid = to_regclass($1) AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

type PostgresDialect struct {
	disableMerge bool
}

func NewPostgresDialect(disableMerge bool) PostgresDialect {
	return PostgresDialect{disableMerge: disableMerge}
}

func (PostgresDialect) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(identifier, `"`, `""`))
}

func (PostgresDialect) SupportsTransactionalDDL() bool {
	return true
}

func (PostgresDialect) IsTableDoesNotExistErr(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTableErrorCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == undefinedTableErrorCode
	}

	return false
}

func (PostgresDialect) BuildDescribeTableQuery(tableID sql.TableIdentifier) (string, []any) {
	return describeTableQuery, []any{tableID.FullyQualifiedName()}
}

func (pd PostgresDialect) BuildCreateStagingTableQuery(tableID sql.TableIdentifier, cols []columns.Column) string {
	var temporary string
	if tableID.Temporary() {
		temporary = "TEMPORARY "
	}

	return fmt.Sprintf("CREATE %sTABLE %s (%s);", temporary, tableID.FullyQualifiedName(), strings.Join(sql.BuildColumnDefinitions(cols, pd), ","))
}

func (PostgresDialect) BuildDropTableQuery(tableID sql.TableIdentifier) string {
	return sql.DefaultBuildDropTableQuery(tableID)
}

func (PostgresDialect) BuildSweepQuery(schema string) (string, []any) {
	return `SELECT table_schema, table_name FROM information_schema.tables WHERE table_schema = $1 AND table_name LIKE $2`, []any{schema, "%" + constants.StagingTablePrefix + "%"}
}

func (pd PostgresDialect) BuildUpdateQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column) string {
	// Postgres does not allow the target alias on the left hand side of SET.
	return fmt.Sprintf(`UPDATE %s AS %s SET %s FROM %s AS %s WHERE %s;`,
		tableID.FullyQualifiedName(), constants.TargetAlias, sql.BuildColumnsUpdateFragment(cols, constants.StagingAlias, "", pd),
		stagingTableID.FullyQualifiedName(), constants.StagingAlias, pd.joinOn(qualifiers),
	)
}

func (pd PostgresDialect) BuildDeleteQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers []columns.Column) string {
	return fmt.Sprintf(`DELETE FROM %s AS %s USING %s AS %s WHERE %s;`,
		tableID.FullyQualifiedName(), constants.TargetAlias,
		stagingTableID.FullyQualifiedName(), constants.StagingAlias,
		pd.joinOn(qualifiers),
	)
}

func (pd PostgresDialect) BuildInsertQuery(tableID, stagingTableID sql.TableIdentifier, cols []columns.Column, overrideIdentity bool) string {
	return fmt.Sprintf(`INSERT INTO %s (%s)%s SELECT %s FROM %s AS %s;`,
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, pd), ","), overridingClause(overrideIdentity),
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, pd), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
	)
}

func (pd PostgresDialect) BuildInsertUnmatchedQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, cols []columns.Column, overrideIdentity bool) string {
	return fmt.Sprintf(`INSERT INTO %s (%s)%s SELECT %s FROM %s AS %s LEFT JOIN %s AS %s ON %s WHERE %s IS NULL;`,
		tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, pd), ","), overridingClause(overrideIdentity),
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, cols, pd), ","), stagingTableID.FullyQualifiedName(), constants.StagingAlias,
		tableID.FullyQualifiedName(), constants.TargetAlias, pd.joinOn(qualifiers),
		sql.QuoteTableAliasColumn(constants.TargetAlias, qualifiers[0], pd),
	)
}

// BuildMergeQuery returns false when merge has been disabled, MERGE is only available from Postgres 15.
func (pd PostgresDialect) BuildMergeQuery(tableID, stagingTableID sql.TableIdentifier, qualifiers, updateCols, insertCols []columns.Column, overrideIdentity bool) (string, bool) {
	if pd.disableMerge {
		return "", false
	}

	var matchedClause string
	if len(updateCols) > 0 {
		matchedClause = fmt.Sprintf("\nWHEN MATCHED THEN UPDATE SET %s", sql.BuildColumnsUpdateFragment(updateCols, constants.StagingAlias, "", pd))
	}

	return fmt.Sprintf(`
MERGE INTO %s AS %s
USING %s AS %s ON %s%s
WHEN NOT MATCHED THEN INSERT (%s)%s VALUES (%s)`,
		// MERGE INTO target AS tgt
		tableID.FullyQualifiedName(), constants.TargetAlias,
		// USING staging AS stg ON join_condition
		stagingTableID.FullyQualifiedName(), constants.StagingAlias, pd.joinOn(qualifiers),
		// Update matched rows
		matchedClause,
		// Insert new records
		strings.Join(sql.QuoteColumns(insertCols, pd), ","), overridingClause(overrideIdentity),
		strings.Join(sql.QuoteTableAliasColumns(constants.StagingAlias, insertCols, pd), ","),
	), true
}

// BuildIdentityInsertQueries is a no-op, Postgres overrides identity values per statement with OVERRIDING SYSTEM VALUE.
func (PostgresDialect) BuildIdentityInsertQueries(_ sql.TableIdentifier) (string, string) {
	return "", ""
}

func (pd PostgresDialect) joinOn(qualifiers []columns.Column) string {
	return strings.Join(sql.BuildColumnComparisons(qualifiers, constants.TargetAlias, constants.StagingAlias, pd), " AND ")
}

func overridingClause(overrideIdentity bool) string {
	if overrideIdentity {
		return " OVERRIDING SYSTEM VALUE"
	}
	return ""
}
