package destination

import (
	"context"
	"time"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// CopyOptions tune the driver's bulk channel, drivers ignore the flags they have no equivalent for.
type CopyOptions struct {
	KeepNulls        bool
	CheckConstraints bool
	FireTriggers     bool
	TableLock        bool
}

type Destination interface {
	Label() constants.DestinationKind
	Dialect() sql.Dialect
	IdentifierFor(schema, table string) sql.TableIdentifier

	// DB is used for catalog reads when the caller did not supply a transaction.
	DB() db.Querier
	Begin(ctx context.Context) (db.Tx, error)
	DescribeTable(ctx context.Context, querier db.Querier, tableID sql.TableIdentifier) ([]columns.Column, error)
	// BulkCopy streams [rows] into [tableID] through the driver's bulk ingestion channel and returns the rows written.
	BulkCopy(ctx context.Context, tx db.Tx, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any, opts CopyOptions) (int64, error)
	// SweepStagingTables drops staging tables in [schema] whose expiry has passed.
	SweepStagingTables(ctx context.Context, schema string, now time.Time) error
	Close() error
}
