package bulk

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/telemetry/metrics/base"
)

// DefaultMaxBatchSize bounds how many rows are handed to the bulk channel at once when no batch size is given.
const DefaultMaxBatchSize = 100_000

type CopyOptions struct {
	// KeepIdentity inserts the source values of identity columns instead of letting the destination generate them.
	KeepIdentity     bool
	KeepNulls        bool
	CheckConstraints bool
	FireTriggers     bool
	TableLock        bool
	// Timeout applies to every batch transfer and every reconciliation statement, zero disables it.
	Timeout time.Duration
}

// StagingPolicy is either [Ephemeral] or [PhysicalPseudo].
type StagingPolicy interface {
	isStagingPolicy()
}

// Ephemeral stages rows in a session scoped temporary table.
type Ephemeral struct{}

// PhysicalPseudo stages rows in a regular table that the engine creates and drops inside the transaction.
// Name is the base of the table name, the random suffix is always appended. Defaults to the destination table's name.
type PhysicalPseudo struct {
	Name string
}

func (Ephemeral) isStagingPolicy()      {}
func (PhysicalPseudo) isStagingPolicy() {}

type Mapping struct {
	Source      string
	Destination string
}

type Args struct {
	TableID sql.TableIdentifier
	Rows    RowSource
	// Qualifiers default to the destination's primary key.
	Qualifiers []string
	// Mappings default to mapping every source field to the destination column of the same name.
	Mappings []Mapping
	Options  CopyOptions
	// BatchSize defaults to every row, capped at [EngineOptions.MaxBatchSize].
	BatchSize *int
	// Staging defaults to [Ephemeral].
	Staging StagingPolicy
	// Tx is an optional caller owned transaction, it is never committed or rolled back by the engine.
	// Postgres over pgx can only COPY on a pinned connection, pass a [db.ConnTx] from [db.NewConnTx] or [db.BeginConnTx].
	Tx db.Tx
}

type EngineOptions struct {
	MaxBatchSize int
	// MaxColumnsPerStatement splits the SET list of UPDATE statements, zero leaves it whole.
	MaxColumnsPerStatement int
	// Limiter paces batch transfers.
	Limiter *rate.Limiter
	Metrics base.Client
}
