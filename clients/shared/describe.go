package shared

import (
	"context"
	"fmt"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// DescribeTable runs the dialect's catalog query and returns the columns in table order.
func DescribeTable(ctx context.Context, querier db.Querier, dialect sql.Dialect, tableID sql.TableIdentifier) ([]columns.Column, error) {
	query, args := dialect.BuildDescribeTableQuery(tableID)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		if dialect.IsTableDoesNotExistErr(err) {
			return nil, fmt.Errorf("%w: %s", destination.ErrTableNotFound, tableID.FullyQualifiedName())
		}
		return nil, fmt.Errorf("failed to describe table %q: %w", tableID.FullyQualifiedName(), err)
	}

	defer rows.Close()

	var cols []columns.Column
	for rows.Next() {
		var name, dataType string
		var nullable, identity bool
		var primaryKeyPosition int
		if err = rows.Scan(&name, &dataType, &nullable, &identity, &primaryKeyPosition); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		cols = append(cols, columns.NewColumn(name, dataType).
			WithNullable(nullable).
			WithIdentity(identity).
			WithPrimaryKeyPosition(primaryKeyPosition),
		)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over columns: %w", err)
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", destination.ErrTableNotFound, tableID.FullyQualifiedName())
	}

	return cols, nil
}
