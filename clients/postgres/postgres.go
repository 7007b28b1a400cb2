package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/artie-labs/bulksync/clients/postgres/dialect"
	"github.com/artie-labs/bulksync/clients/shared"
	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// Postgres binds at most 65535 parameters per statement.
const maxParams = 65_535

type Store struct {
	db      db.Store
	driver  config.PostgresDriver
	dialect dialect.PostgresDialect
}

func NewStore(store db.Store, driver config.PostgresDriver, disableMerge bool) *Store {
	return &Store{db: store, driver: driver, dialect: dialect.NewPostgresDialect(disableMerge)}
}

func (s *Store) Label() constants.DestinationKind {
	return constants.Postgres
}

func (s *Store) Dialect() sql.Dialect {
	return s.dialect
}

func (s *Store) IdentifierFor(schema, table string) sql.TableIdentifier {
	if schema == "" {
		schema = "public"
	}

	return dialect.NewTableIdentifier(schema, table)
}

func (s *Store) DB() db.Querier {
	return s.db
}

func (s *Store) Begin(ctx context.Context) (db.Tx, error) {
	tx, err := db.BeginConnTx(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) DescribeTable(ctx context.Context, querier db.Querier, tableID sql.TableIdentifier) ([]columns.Column, error) {
	return shared.DescribeTable(ctx, querier, s.dialect, tableID)
}

// BulkCopy issues COPY FROM STDIN on the transaction's connection. pgx needs the raw connection, so a transaction
// that was not started by [Store.Begin] falls back to multi-row inserts.
func (s *Store) BulkCopy(ctx context.Context, tx db.Tx, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any, _ destination.CopyOptions) (int64, error) {
	switch s.driver {
	case config.PQ:
		var copyQuery string
		if tableID.Temporary() {
			copyQuery = pq.CopyIn(tableID.Table(), columns.ColumnNames(cols)...)
		} else {
			copyQuery = pq.CopyInSchema(tableID.Schema(), tableID.Table(), columns.ColumnNames(cols)...)
		}
		return shared.CopyIn(ctx, tx, copyQuery, rows)
	default:
		connTx, ok := tx.(*db.ConnTx)
		if !ok {
			slog.Warn("Transaction has no pinned connection, loading with multi-row inserts instead of COPY, wrap it with db.NewConnTx",
				slog.String("table", tableID.Table()), slog.Int("rows", len(rows)))
			return shared.InsertRows(ctx, tx, s.dialect, tableID, cols, rows, shared.DollarPlaceholder, maxParams)
		}
		return copyFrom(ctx, connTx, tableID, cols, rows)
	}
}

func copyFrom(ctx context.Context, tx *db.ConnTx, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any) (int64, error) {
	pgxIdentifier := pgx.Identifier{tableID.Schema(), tableID.Table()}
	if tableID.Temporary() {
		pgxIdentifier = pgx.Identifier{tableID.Table()}
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		converted, err := toPgxValues(row)
		if err != nil {
			return 0, fmt.Errorf("failed to convert row %d: %w", i, err)
		}
		values[i] = converted
	}

	var copyCount int64
	err := tx.Conn().Raw(func(driverConn any) error {
		stdlibConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("expected a pgx connection, got: %T", driverConn)
		}

		var err error
		copyCount, err = stdlibConn.Conn().CopyFrom(ctx, pgxIdentifier, columns.ColumnNames(cols), pgx.CopyFromRows(values))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy from rows: %w", err)
	}

	if copyCount != int64(len(rows)) {
		return 0, fmt.Errorf("expected %d rows to be copied, but got %d", len(rows), copyCount)
	}

	return copyCount, nil
}

// toPgxValues keeps decimals exact, pgx encodes numeric columns in binary and will not take a string for them.
func toPgxValues(row []any) ([]any, error) {
	values := make([]any, len(row))
	for i, value := range row {
		switch castedValue := value.(type) {
		case *apd.Decimal:
			var numeric pgtype.Numeric
			if err := numeric.Scan(castedValue.Text('f')); err != nil {
				return nil, fmt.Errorf("failed to convert decimal for column %d: %w", i, err)
			}
			values[i] = numeric
		default:
			converted, err := typing.ToDriverValue(value)
			if err != nil {
				return nil, fmt.Errorf("failed to convert value for column %d: %w", i, err)
			}
			values[i] = converted
		}
	}
	return values, nil
}

func (s *Store) SweepStagingTables(ctx context.Context, schema string, now time.Time) error {
	return shared.Sweep(ctx, s.db, s.dialect, s.IdentifierFor, s.IdentifierFor(schema, "").Schema(), now)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func driverName(driver config.PostgresDriver) string {
	if driver == config.PQ {
		return "postgres"
	}
	return "pgx"
}

func LoadStore(ctx context.Context, cfg config.Config) (*Store, error) {
	store, err := db.Open(ctx, driverName(cfg.Postgres.DriverName()), cfg.Postgres.DSN())
	if err != nil {
		return nil, err
	}

	return NewStore(store, cfg.Postgres.DriverName(), cfg.Postgres.DisableMerge), nil
}
