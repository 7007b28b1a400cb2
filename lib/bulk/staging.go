package bulk

import (
	"context"
	"log/slog"
	"time"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// dropTimeout bounds the cleanup drop, which runs detached from the caller's cancellation.
const dropTimeout = 30 * time.Second

type StagingTable struct {
	ID        sql.TableIdentifier
	Columns   []columns.Column
	Ephemeral bool
}

func newStagingTable(tableID sql.TableIdentifier, physical *PhysicalPseudo, cols []columns.Column, now time.Time) StagingTable {
	base := tableID.Table()
	if physical != nil && physical.Name != "" {
		base = physical.Name
	}

	ephemeral := physical == nil
	return StagingTable{
		ID:        tableID.WithTable(destination.StagingTableName(base, now)).WithTemporary(ephemeral),
		Columns:   cols,
		Ephemeral: ephemeral,
	}
}

func createStagingTable(ctx context.Context, tx db.Tx, dialect sql.Dialect, table string, stagingTable StagingTable) error {
	if _, err := tx.ExecContext(ctx, dialect.BuildCreateStagingTableQuery(stagingTable.ID, stagingTable.Columns)); err != nil {
		return &StagingTableError{Table: table, StagingTable: stagingTable.ID.FullyQualifiedName(), Op: StagingCreate, Err: err}
	}

	slog.Debug("Created staging table", slog.String("table", table), slog.String("stagingTable", stagingTable.ID.FullyQualifiedName()),
		slog.Bool("ephemeral", stagingTable.Ephemeral))
	return nil
}

func dropStagingTable(ctx context.Context, tx db.Tx, dialect sql.Dialect, table string, stagingTable StagingTable) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dropTimeout)
	defer cancel()

	if _, err := tx.ExecContext(ctx, dialect.BuildDropTableQuery(stagingTable.ID)); err != nil {
		return &StagingTableError{Table: table, StagingTable: stagingTable.ID.FullyQualifiedName(), Op: StagingDrop, Err: err}
	}
	return nil
}
