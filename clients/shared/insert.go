package shared

import (
	"context"
	"fmt"
	"strings"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

type PlaceholderFunc func(index int) string

func QuestionMarkPlaceholder(_ int) string {
	return "?"
}

func DollarPlaceholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

// InsertRows writes [rows] with multi-row INSERT statements, each one binding at most [maxParams] values.
// It backs destinations whose driver has no bulk channel reachable from a transaction.
func InsertRows(ctx context.Context, querier db.Querier, dialect sql.Dialect, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any, placeholder PlaceholderFunc, maxParams int) (int64, error) {
	if len(cols) == 0 {
		return 0, fmt.Errorf("no columns to insert")
	}

	rowsPerStatement := max(maxParams/len(cols), 1)
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, dialect), ","))

	var inserted int64
	for start := 0; start < len(rows); start += rowsPerStatement {
		chunk := rows[start:min(start+rowsPerStatement, len(rows))]
		tuples := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(cols))
		for i, row := range chunk {
			if len(row) != len(cols) {
				return inserted, fmt.Errorf("row %d has %d values, expected %d", start+i, len(row), len(cols))
			}

			values, err := ToDriverValues(row)
			if err != nil {
				return inserted, err
			}

			placeholders := make([]string, len(values))
			for j := range values {
				placeholders[j] = placeholder(len(args) + j)
			}
			tuples[i] = "(" + strings.Join(placeholders, ",") + ")"
			args = append(args, values...)
		}

		result, err := querier.ExecContext(ctx, prefix+strings.Join(tuples, ","), args...)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert rows: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += affected
	}

	return inserted, nil
}
