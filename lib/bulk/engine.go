package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/telemetry/metrics"
	"github.com/artie-labs/bulksync/lib/telemetry/metrics/base"
)

// Engine applies rows to a destination table by staging them and reconciling the staging table with the target.
// It is safe for concurrent use, every operation has its own staging table and transaction.
type Engine struct {
	dest                   destination.Destination
	maxBatchSize           int
	maxColumnsPerStatement int
	limiter                *rate.Limiter
	metrics                base.Client
	now                    func() time.Time
}

func NewEngine(dest destination.Destination, opts EngineOptions) *Engine {
	e := &Engine{
		dest:                   dest,
		maxBatchSize:           opts.MaxBatchSize,
		maxColumnsPerStatement: opts.MaxColumnsPerStatement,
		limiter:                opts.Limiter,
		metrics:                opts.Metrics,
		now:                    time.Now,
	}

	if e.maxBatchSize <= 0 {
		e.maxBatchSize = DefaultMaxBatchSize
	}

	if e.metrics == nil {
		e.metrics = metrics.NullMetricsProvider{}
	}

	return e
}

// BulkUpdate updates destination rows that match a source row on the qualifiers. Unmatched source rows are ignored.
func (e *Engine) BulkUpdate(ctx context.Context, args Args) (int64, error) {
	return e.Run(ctx, constants.Update, args)
}

// BulkMerge updates matched rows and inserts the rest.
func (e *Engine) BulkMerge(ctx context.Context, args Args) (int64, error) {
	return e.Run(ctx, constants.Merge, args)
}

func (e *Engine) BulkDelete(ctx context.Context, args Args) (int64, error) {
	return e.Run(ctx, constants.Delete, args)
}

// BulkReplace deletes matched rows and inserts every source row. The outcome is the number of rows inserted.
func (e *Engine) BulkReplace(ctx context.Context, args Args) (int64, error) {
	return e.Run(ctx, constants.Replace, args)
}

func (e *Engine) BulkInsert(ctx context.Context, args Args) (int64, error) {
	return e.Run(ctx, constants.Insert, args)
}

// Run executes a bulk operation and returns the number of destination rows it affected.
// On error nothing is committed. A caller supplied [Args.Tx] is left open either way.
func (e *Engine) Run(ctx context.Context, mode constants.Mode, args Args) (int64, error) {
	start := time.Now()
	affected, err := e.run(ctx, mode, args)

	tags := e.tags(args, mode)
	tags["result"] = "success"
	if err != nil {
		tags["result"] = errorKind(err)
	}
	e.metrics.Timing("bulk.operation", time.Since(start), tags)

	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (e *Engine) run(ctx context.Context, mode constants.Mode, args Args) (int64, error) {
	req, err := e.validate(mode, args)
	if err != nil {
		return 0, err
	}

	if args.Rows.Len() == 0 {
		slog.Debug("No rows to apply, skipping", slog.String("table", req.table), slog.String("mode", string(mode)))
		return 0, nil
	}

	if err = ctx.Err(); err != nil {
		return 0, err
	}

	var querier db.Querier = e.dest.DB()
	if args.Tx != nil {
		querier = args.Tx
	}

	destinationColumns, err := e.dest.DescribeTable(ctx, querier, args.TableID)
	if err != nil {
		if errors.Is(err, destination.ErrTableNotFound) {
			return 0, newConfigurationError(req.table, "table does not exist")
		}
		return 0, fmt.Errorf("failed to describe %s: %w", req.table, err)
	}

	mapping, err := resolve(req, destinationColumns, args.Options.KeepIdentity)
	if err != nil {
		return 0, err
	}

	dialect := e.dest.Dialect()
	stagingTable := newStagingTable(args.TableID, req.physical, mapping.columns, e.now())
	r, err := buildReconciliation(dialect, mode, args.TableID, stagingTable, mapping, args.Options.KeepIdentity, e.maxColumnsPerStatement)
	if err != nil {
		return 0, err
	}

	c, err := openScope(ctx, e.dest, dialect, req.table, args.Tx)
	if err != nil {
		return 0, err
	}

	affected, err := e.execute(ctx, c, req, mapping, stagingTable, r, args)
	if err != nil {
		return 0, c.fail(ctx, err)
	}

	if err = c.commit(ctx); err != nil {
		return 0, err
	}

	slog.Info("Applied bulk operation", slog.String("table", req.table), slog.String("mode", string(mode)),
		slog.Int("rows", args.Rows.Len()), slog.Int64("affected", affected))
	return affected, nil
}

// execute runs every step that writes, the caller is responsible for committing or cleaning up.
func (e *Engine) execute(ctx context.Context, c *coordinator, req request, mapping resolvedMapping, stagingTable StagingTable, r reconciliation, args Args) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := c.createStaging(ctx, stagingTable); err != nil {
		return 0, err
	}

	tags := e.tags(args, req.mode)
	c.transition(PhaseTransferring)
	batches := BatchCount(args.Rows.Len(), req.batchSize)
	for batch := range Plan(args.Rows.Len(), req.batchSize) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		slog.Debug("Transferring batch", slog.String("table", req.table), slog.Int("batch", batch.Index+1), slog.Int("of", batches))

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return 0, err
			}
		}

		if err := e.transferBatch(ctx, c.tx, req.table, stagingTable, mapping, args.Rows, batch, args.Options, tags); err != nil {
			return 0, err
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.transition(PhaseMerging)
	start := time.Now()
	affected, err := reconcile(ctx, c.tx, req.table, r, args.Options.Timeout)
	if err != nil {
		return 0, err
	}

	e.metrics.Timing("bulk.reconcile.duration", time.Since(start), tags)
	e.metrics.Count("bulk.rows.affected", affected, tags)
	return affected, nil
}

// SweepStagingTables drops expired staging tables left behind in [schema] by operations that never cleaned up.
func (e *Engine) SweepStagingTables(ctx context.Context, schema string) error {
	return e.dest.SweepStagingTables(ctx, schema, e.now())
}

func (e *Engine) tags(args Args, mode constants.Mode) map[string]string {
	tags := map[string]string{
		"mode":        string(mode),
		"destination": string(e.dest.Label()),
	}
	if args.TableID != nil {
		tags["table"] = args.TableID.Table()
	}
	return tags
}

// errorKind tags a failed operation by its primary error, cleanup errors joined after it are ignored.
func errorKind(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			err = errs[0]
		}
	}

	var configurationErr *ConfigurationError
	var stagingErr *StagingTableError
	var transferErr *TransferError
	var mergeErr *MergeError
	var transactionErr *TransactionError
	switch {
	case errors.As(err, &configurationErr):
		return "configuration_error"
	case errors.As(err, &transferErr):
		return "transfer_error"
	case errors.As(err, &mergeErr):
		return "merge_error"
	case errors.As(err, &stagingErr):
		return "staging_table_error"
	case errors.As(err, &transactionErr):
		return "transaction_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
