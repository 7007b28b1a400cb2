package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/artie-labs/bulksync/lib/retry"
)

const (
	pingMaxAttempts  = 5
	pingJitterBaseMs = 500
	pingJitterMaxMs  = 5_000
)

// Querier is satisfied by [sql.DB], [sql.Conn] and [sql.Tx].
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Tx is the transaction every step of a bulk operation runs on, [sql.Tx] satisfies it.
type Tx interface {
	Querier
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	Commit() error
	Rollback() error
}

// Store is satisfied by [sql.DB].
type Store interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Conn(ctx context.Context) (*sql.Conn, error)
	PingContext(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*sql.DB)(nil)
	_ Tx    = (*sql.Tx)(nil)
	_ Tx    = (*ConnTx)(nil)
)

// Open creates a connection pool and pings it, retrying while the server is unreachable.
func Open(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to start a SQL client for driver %q: %w", driverName, err)
	}

	retryCfg := retry.NewRetryConfig(retry.NewRetryConfigArgs{
		JitterBaseMs:   pingJitterBaseMs,
		JitterMaxMs:    pingJitterMaxMs,
		MaxAttempts:    pingMaxAttempts,
		IsRetryableErr: isRetryableError,
	})

	err = retryCfg.WithRetries(func(attempt int, _ error) error {
		if attempt > 0 {
			slog.Info("Retrying database ping", slog.String("driverName", driverName), slog.Int("attempt", attempt))
		}
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to validate the DB connection for driver %q: %w", driverName, err)
	}

	return db, nil
}
