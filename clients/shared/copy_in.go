package shared

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/typing"
)

// CopyIn drives the prepared statement form of a bulk copy (go-mssqldb and lib/pq):
// every Exec buffers one row and the final argument-less Exec flushes the batch to the server.
func CopyIn(ctx context.Context, tx db.Tx, copyQuery string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, copyQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare bulk insert: %w", err)
	}

	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			slog.Debug("Failed to close bulk insert statement", slog.Any("err", closeErr))
		}
	}()

	for _, row := range rows {
		values, err := ToDriverValues(row)
		if err != nil {
			return 0, err
		}

		if _, err = stmt.ExecContext(ctx, values...); err != nil {
			return 0, fmt.Errorf("failed to copy row: %w", err)
		}
	}

	result, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize bulk insert: %w", err)
	}

	rowsLoaded, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsLoaded, nil
}

func ToDriverValues(row []any) ([]any, error) {
	values := make([]any, len(row))
	for i, value := range row {
		converted, err := typing.ToDriverValue(value)
		if err != nil {
			return nil, fmt.Errorf("failed to convert value for column %d: %w", i, err)
		}
		values[i] = converted
	}
	return values, nil
}
