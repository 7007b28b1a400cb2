package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
)

// transferBatch copies the mapped values of one batch and hands them to the destination's bulk channel.
func (e *Engine) transferBatch(ctx context.Context, tx db.Tx, table string, stagingTable StagingTable, mapping resolvedMapping, rows RowSource, batch Batch, opts CopyOptions, tags map[string]string) error {
	values := make([][]any, 0, batch.Len())
	for i := batch.Start; i < batch.End; i++ {
		source := rows.Values(i)
		row := make([]any, len(mapping.sourceIndexes))
		for j, index := range mapping.sourceIndexes {
			if index >= len(source) {
				return &TransferError{Table: table, BatchIndex: batch.Index, Rows: batch.Len(), Err: fmt.Errorf("row %d has %d values, expected at least %d", i, len(source), index+1)}
			}
			row[j] = source[index]
		}
		values = append(values, row)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	copied, err := e.dest.BulkCopy(ctx, tx, stagingTable.ID, stagingTable.Columns, values, destination.CopyOptions{
		KeepNulls:        opts.KeepNulls,
		CheckConstraints: opts.CheckConstraints,
		FireTriggers:     opts.FireTriggers,
		TableLock:        opts.TableLock,
	})
	if err != nil {
		return &TransferError{Table: table, BatchIndex: batch.Index, Rows: batch.Len(), Err: err}
	}

	if copied != int64(batch.Len()) {
		return &TransferError{Table: table, BatchIndex: batch.Index, Rows: batch.Len(), Err: fmt.Errorf("expected %d rows to be copied, but got %d", batch.Len(), copied)}
	}

	e.metrics.Timing("bulk.batch.duration", time.Since(start), tags)
	e.metrics.Count("bulk.rows.transferred", copied, tags)
	slog.Debug("Transferred batch", slog.String("table", table), slog.Int("batch", batch.Index), slog.Int("rows", batch.Len()), slog.Duration("duration", time.Since(start)))
	return nil
}
