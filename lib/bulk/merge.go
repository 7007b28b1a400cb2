package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

type statement struct {
	query string
	// counted statements contribute their affected rows to the operation's outcome.
	counted bool
}

// reconciliation is the set of statements that apply the staged rows to the destination.
// [after] always runs once [before] has, even when a statement in between fails.
type reconciliation struct {
	before     []string
	statements []statement
	after      []string
}

func buildReconciliation(dialect sql.Dialect, mode constants.Mode, tableID sql.TableIdentifier, stagingTable StagingTable, mapping resolvedMapping, keepIdentity bool, maxColumnsPerStatement int) (reconciliation, error) {
	stagingID := stagingTable.ID
	overrideIdentity := keepIdentity && len(columns.IdentityColumns(mapping.insertColumns)) > 0

	var r reconciliation
	switch mode {
	case constants.Update:
		r.statements = buildUpdateStatements(dialect, tableID, stagingID, mapping, maxColumnsPerStatement)
		return r, nil
	case constants.Delete:
		r.statements = []statement{{query: dialect.BuildDeleteQuery(tableID, stagingID, mapping.qualifiers), counted: true}}
		return r, nil
	case constants.Merge:
		fitsOneStatement := maxColumnsPerStatement <= 0 || len(mapping.updateColumns) <= maxColumnsPerStatement
		if query, ok := dialect.BuildMergeQuery(tableID, stagingID, mapping.qualifiers, mapping.updateColumns, mapping.insertColumns, overrideIdentity); ok && fitsOneStatement {
			r.statements = []statement{{query: query, counted: true}}
		} else {
			// The update has to run first, otherwise the rows inserted below would be counted twice.
			if len(mapping.updateColumns) > 0 {
				r.statements = buildUpdateStatements(dialect, tableID, stagingID, mapping, maxColumnsPerStatement)
			}
			r.statements = append(r.statements, statement{
				query:   dialect.BuildInsertUnmatchedQuery(tableID, stagingID, mapping.qualifiers, mapping.insertColumns, overrideIdentity),
				counted: true,
			})
		}
	case constants.Replace:
		r.statements = []statement{
			{query: dialect.BuildDeleteQuery(tableID, stagingID, mapping.qualifiers)},
			{query: dialect.BuildInsertQuery(tableID, stagingID, mapping.insertColumns, overrideIdentity), counted: true},
		}
	case constants.Insert:
		r.statements = []statement{{query: dialect.BuildInsertQuery(tableID, stagingID, mapping.insertColumns, overrideIdentity), counted: true}}
	default:
		return reconciliation{}, fmt.Errorf("unsupported mode %q", mode)
	}

	if overrideIdentity {
		if enable, disable := dialect.BuildIdentityInsertQueries(tableID); enable != "" {
			r.before = []string{enable}
			r.after = []string{disable}
		}
	}

	return r, nil
}

// buildUpdateStatements splits the SET list into chunks of [maxColumnsPerStatement]. Every chunk matches the same rows,
// so only the first one is counted.
func buildUpdateStatements(dialect sql.Dialect, tableID, stagingID sql.TableIdentifier, mapping resolvedMapping, maxColumnsPerStatement int) []statement {
	chunkSize := len(mapping.updateColumns)
	if maxColumnsPerStatement > 0 {
		chunkSize = min(chunkSize, maxColumnsPerStatement)
	}

	var statements []statement
	for chunk := range slices.Chunk(mapping.updateColumns, max(chunkSize, 1)) {
		statements = append(statements, statement{
			query:   dialect.BuildUpdateQuery(tableID, stagingID, mapping.qualifiers, chunk),
			counted: len(statements) == 0,
		})
	}
	return statements
}

func reconcile(ctx context.Context, tx db.Tx, table string, r reconciliation, timeout time.Duration) (int64, error) {
	exec := func(ctx context.Context, query string) (int64, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		result, err := tx.ExecContext(ctx, query)
		if err != nil {
			return 0, err
		}
		return result.RowsAffected()
	}

	for _, query := range r.before {
		if _, err := exec(ctx, query); err != nil {
			return 0, &MergeError{Table: table, Err: err}
		}
	}

	var affected int64
	var err error
	for _, stmt := range r.statements {
		var rowsAffected int64
		if rowsAffected, err = exec(ctx, stmt.query); err != nil {
			err = &MergeError{Table: table, Err: err}
			break
		}

		if stmt.counted {
			affected += rowsAffected
		}
	}

	// Session settings have to be restored even when the caller has given up.
	for _, query := range r.after {
		if _, afterErr := exec(context.WithoutCancel(ctx), query); afterErr != nil {
			slog.Warn("Failed to run statement after reconciliation", slog.String("table", table), slog.Any("err", afterErr))
			err = errors.Join(err, &MergeError{Table: table, Err: afterErr})
		}
	}

	if err != nil {
		return 0, err
	}
	return affected, nil
}
