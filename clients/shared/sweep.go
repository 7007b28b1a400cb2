package shared

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
)

type IdentifierForFunc func(schema, table string) sql.TableIdentifier

// Sweep drops every staging table in [schema] whose embedded expiry is before [now].
func Sweep(ctx context.Context, querier db.Querier, dialect sql.Dialect, identifierFor IdentifierForFunc, schema string, now time.Time) error {
	slog.Info("Looking to see if there are any dangling staging tables to delete...", slog.String("schema", schema))
	query, args := dialect.BuildSweepQuery(schema)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to list staging tables: %w", err)
	}

	var expired []sql.TableIdentifier
	for rows.Next() {
		var tableSchema, tableName string
		if err = rows.Scan(&tableSchema, &tableName); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan staging table: %w", err)
		}

		if destination.StagingTableExpired(tableName, now) {
			expired = append(expired, identifierFor(tableSchema, tableName))
		}
	}

	// Drain the cursor before issuing drops, some drivers cannot run a statement while rows are open.
	if err = rows.Close(); err != nil {
		return fmt.Errorf("failed to close rows: %w", err)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate over staging tables: %w", err)
	}

	for _, tableID := range expired {
		slog.Info("Dropping expired staging table", slog.String("table", tableID.FullyQualifiedName()))
		if _, err = querier.ExecContext(ctx, dialect.BuildDropTableQuery(tableID)); err != nil {
			return fmt.Errorf("failed to drop staging table %q: %w", tableID.FullyQualifiedName(), err)
		}
	}

	return nil
}
