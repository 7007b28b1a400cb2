package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ConnTx is a transaction that also exposes the connection it is pinned to.
// Drivers whose bulk channel lives on the raw connection (pgx COPY) need both.
type ConnTx struct {
	*sql.Tx
	conn *sql.Conn
}

// BeginConnTx checks a connection out of the pool and opens a transaction on it.
// The connection is returned to the pool by Commit or Rollback.
func BeginConnTx(ctx context.Context, store Store) (*ConnTx, error) {
	conn, err := store.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to begin transaction: %w", err), conn.Close())
	}

	return NewConnTx(conn, tx), nil
}

// NewConnTx wraps a transaction that was opened on [conn].
func NewConnTx(conn *sql.Conn, tx *sql.Tx) *ConnTx {
	return &ConnTx{Tx: tx, conn: conn}
}

func (c *ConnTx) Conn() *sql.Conn {
	return c.conn
}

func (c *ConnTx) Commit() error {
	return c.release(c.Tx.Commit())
}

func (c *ConnTx) Rollback() error {
	return c.release(c.Tx.Rollback())
}

func (c *ConnTx) release(err error) error {
	if closeErr := c.conn.Close(); closeErr != nil && !errors.Is(closeErr, sql.ErrConnDone) {
		return errors.Join(err, fmt.Errorf("failed to release connection: %w", closeErr))
	}
	return err
}
