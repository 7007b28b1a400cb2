package sql

import (
	"fmt"
	"strings"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

func QuoteColumns(cols []columns.Column, dialect Dialect) []string {
	result := make([]string, len(cols))
	for i, col := range cols {
		result[i] = dialect.QuoteIdentifier(col.Name())
	}
	return result
}

func QuoteTableAliasColumn(tableAlias constants.TableAlias, column columns.Column, dialect Dialect) string {
	return fmt.Sprintf("%s.%s", tableAlias, dialect.QuoteIdentifier(column.Name()))
}

func QuoteTableAliasColumns(tableAlias constants.TableAlias, cols []columns.Column, dialect Dialect) []string {
	result := make([]string, len(cols))
	for i, col := range cols {
		result[i] = QuoteTableAliasColumn(tableAlias, col, dialect)
	}
	return result
}

// BuildColumnComparisons returns `tgt.col = stg.col` for every column, callers join them with AND.
func BuildColumnComparisons(cols []columns.Column, table1, table2 constants.TableAlias, dialect Dialect) []string {
	result := make([]string, len(cols))
	for i, col := range cols {
		result[i] = fmt.Sprintf("%s = %s", QuoteTableAliasColumn(table1, col, dialect), QuoteTableAliasColumn(table2, col, dialect))
	}
	return result
}

// BuildColumnsUpdateFragment returns `col=stg.col,...`, prefixing the left hand side with [targetAlias] when set.
func BuildColumnsUpdateFragment(cols []columns.Column, stagingAlias, targetAlias constants.TableAlias, dialect Dialect) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		left := dialect.QuoteIdentifier(col.Name())
		if targetAlias != "" {
			left = QuoteTableAliasColumn(targetAlias, col, dialect)
		}
		parts[i] = fmt.Sprintf("%s=%s", left, QuoteTableAliasColumn(stagingAlias, col, dialect))
	}
	return strings.Join(parts, ",")
}

// BuildColumnDefinitions returns `"col" type` parts for a staging table, every column is left nullable.
func BuildColumnDefinitions(cols []columns.Column, dialect Dialect) []string {
	result := make([]string, len(cols))
	for i, col := range cols {
		result[i] = fmt.Sprintf("%s %s", dialect.QuoteIdentifier(col.Name()), col.DataType())
	}
	return result
}

func DefaultBuildDropTableQuery(tableID TableIdentifier) string {
	return "DROP TABLE IF EXISTS " + tableID.FullyQualifiedName()
}
