package sqlite

import (
	"context"
	"time"

	_ "modernc.org/sqlite"

	"github.com/artie-labs/bulksync/clients/shared"
	"github.com/artie-labs/bulksync/clients/sqlite/dialect"
	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// SQLITE_MAX_VARIABLE_NUMBER defaults to 32766 since 3.32.
const maxParams = 32_766

type Store struct {
	db db.Store
}

func NewStore(store db.Store) *Store {
	return &Store{db: store}
}

func (s *Store) Label() constants.DestinationKind {
	return constants.SQLite
}

func (s *Store) Dialect() sql.Dialect {
	return dialect.SQLiteDialect{}
}

func (s *Store) IdentifierFor(schema, table string) sql.TableIdentifier {
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
	return shared.DescribeTable(ctx, querier, s.Dialect(), tableID)
}

// BulkCopy uses multi-row inserts, SQLite has no separate bulk load path and runs in process.
func (s *Store) BulkCopy(ctx context.Context, tx db.Tx, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any, _ destination.CopyOptions) (int64, error) {
	return shared.InsertRows(ctx, tx, s.Dialect(), tableID, cols, rows, shared.QuestionMarkPlaceholder, maxParams)
}

func (s *Store) SweepStagingTables(ctx context.Context, schema string, now time.Time) error {
	return shared.Sweep(ctx, s.db, s.Dialect(), s.IdentifierFor, s.IdentifierFor(schema, "").Schema(), now)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func LoadStore(ctx context.Context, cfg config.Config) (*Store, error) {
	store, err := db.Open(ctx, "sqlite", cfg.SQLite.DSN())
	if err != nil {
		return nil, err
	}

	return NewStore(store), nil
}
