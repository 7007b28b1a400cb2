package bulk

import (
	"context"
	"errors"
	"log/slog"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/sql"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScopeOpen
	PhaseStagingCreated
	PhaseTransferring
	PhaseMerging
	PhaseStagingDropped
	PhaseCommitted
	PhaseRollingBack
	PhaseCleanedUp
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScopeOpen:
		return "scope_open"
	case PhaseStagingCreated:
		return "staging_created"
	case PhaseTransferring:
		return "transferring"
	case PhaseMerging:
		return "merging"
	case PhaseStagingDropped:
		return "staging_dropped"
	case PhaseCommitted:
		return "committed"
	case PhaseRollingBack:
		return "rolling_back"
	case PhaseCleanedUp:
		return "cleaned_up"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// coordinator owns the lifecycle of one bulk operation: the transactional scope, the staging table and the
// cleanup that has to happen on every exit path.
type coordinator struct {
	table   string
	dialect sql.Dialect
	tx      db.Tx
	// owned is true when the engine began [tx] and is responsible for committing or rolling it back.
	owned   bool
	phase   Phase
	history []Phase
	staging *StagingTable
}

type beginner interface {
	Begin(ctx context.Context) (db.Tx, error)
}

// openScope uses [supplied] when it is set, otherwise it begins a transaction of its own.
// The owned transaction is detached from [ctx] so that cancelling the caller does not race the rollback.
func openScope(ctx context.Context, dest beginner, dialect sql.Dialect, table string, supplied db.Tx) (*coordinator, error) {
	c := &coordinator{table: table, dialect: dialect, phase: PhaseIdle}
	if supplied != nil {
		c.tx = supplied
	} else {
		tx, err := dest.Begin(context.WithoutCancel(ctx))
		if err != nil {
			c.transition(PhaseFailed)
			return nil, &TransactionError{Table: table, Op: TransactionBegin, Err: err}
		}
		c.tx = tx
		c.owned = true
	}

	c.transition(PhaseScopeOpen)
	return c, nil
}

func (c *coordinator) transition(phase Phase) {
	slog.Debug("Bulk operation phase changed", slog.String("table", c.table), slog.String("from", c.phase.String()),
		slog.String("to", phase.String()), slog.Bool("ownedTransaction", c.owned))
	c.phase = phase
	c.history = append(c.history, phase)
}

func (c *coordinator) createStaging(ctx context.Context, stagingTable StagingTable) error {
	if err := createStagingTable(ctx, c.tx, c.dialect, c.table, stagingTable); err != nil {
		return err
	}

	c.staging = &stagingTable
	c.transition(PhaseStagingCreated)
	return nil
}

func (c *coordinator) dropStaging(ctx context.Context) error {
	if c.staging == nil {
		return nil
	}

	stagingTable := *c.staging
	c.staging = nil
	if err := dropStagingTable(ctx, c.tx, c.dialect, c.table, stagingTable); err != nil {
		return err
	}

	c.transition(PhaseStagingDropped)
	return nil
}

// commit drops the staging table and commits an owned transaction.
// A supplied transaction is left open for the caller.
func (c *coordinator) commit(ctx context.Context) error {
	if err := c.dropStaging(ctx); err != nil {
		return c.fail(ctx, err)
	}

	if c.owned {
		if err := c.tx.Commit(); err != nil {
			c.transition(PhaseFailed)
			return &TransactionError{Table: c.table, Op: TransactionCommit, Err: err}
		}
	}

	c.transition(PhaseCommitted)
	return nil
}

// fail cleans up after [err] and returns it, joined with anything that went wrong while cleaning up.
func (c *coordinator) fail(ctx context.Context, err error) error {
	errs := []error{err}

	// Rolling back an owned transaction undoes the CREATE TABLE on dialects with transactional DDL,
	// and a failed Postgres transaction rejects every statement until then, so no drop is attempted.
	if c.staging != nil && (!c.owned || !c.dialect.SupportsTransactionalDDL()) {
		if dropErr := c.dropStaging(ctx); dropErr != nil {
			slog.Warn("Failed to drop staging table", slog.String("table", c.table), slog.Any("err", dropErr))
			errs = append(errs, dropErr)
		}
	}

	if c.owned {
		c.staging = nil
		c.transition(PhaseRollingBack)
		if rollbackErr := c.tx.Rollback(); rollbackErr != nil {
			slog.Warn("Failed to roll back transaction", slog.String("table", c.table), slog.Any("err", rollbackErr))
			errs = append(errs, &TransactionError{Table: c.table, Op: TransactionRollback, Err: rollbackErr})
		}
	} else {
		c.transition(PhaseCleanedUp)
	}

	c.transition(PhaseFailed)
	if len(errs) == 1 {
		return err
	}
	return errors.Join(errs...)
}
