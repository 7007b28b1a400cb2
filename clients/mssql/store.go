package mssql

import (
	"context"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/artie-labs/bulksync/clients/mssql/dialect"
	"github.com/artie-labs/bulksync/clients/shared"
	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

type Store struct {
	db db.Store
}

func NewStore(store db.Store) *Store {
	return &Store{db: store}
}

func getSchema(schema string) string {
	// MSSQL has their default schema called `dbo`, `public` is a reserved keyword.
	if schema == "" || strings.ToLower(schema) == "public" {
		return "dbo"
	}

	return schema
}

func (s *Store) Label() constants.DestinationKind {
	return constants.MSSQL
}

func (s *Store) Dialect() sql.Dialect {
	return dialect.MSSQLDialect{}
}

func (s *Store) IdentifierFor(schema, table string) sql.TableIdentifier {
	return dialect.NewTableIdentifier(getSchema(schema), table)
}

func (s *Store) DB() db.Querier {
	return s.db
}

func (s *Store) Begin(ctx context.Context) (db.Tx, error) {
	// `#temp` tables live as long as the session, so the whole operation has to stay on one connection.
	tx, err := db.BeginConnTx(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) DescribeTable(ctx context.Context, querier db.Querier, tableID sql.TableIdentifier) ([]columns.Column, error) {
	return shared.DescribeTable(ctx, querier, s.Dialect(), tableID)
}

func (s *Store) BulkCopy(ctx context.Context, tx db.Tx, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any, opts destination.CopyOptions) (int64, error) {
	bulkOptions := mssql.BulkOptions{
		KeepNulls:        opts.KeepNulls,
		CheckConstraints: opts.CheckConstraints,
		FireTriggers:     opts.FireTriggers,
		Tablock:          opts.TableLock,
	}

	return shared.CopyIn(ctx, tx, mssql.CopyIn(tableID.FullyQualifiedName(), bulkOptions, columns.ColumnNames(cols)...), rows)
}

func (s *Store) SweepStagingTables(ctx context.Context, schema string, now time.Time) error {
	return shared.Sweep(ctx, s.db, s.Dialect(), s.IdentifierFor, getSchema(schema), now)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func LoadStore(ctx context.Context, cfg config.Config) (*Store, error) {
	store, err := db.Open(ctx, "sqlserver", cfg.MSSQL.DSN())
	if err != nil {
		return nil, err
	}

	return NewStore(store), nil
}
