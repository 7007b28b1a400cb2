package bulk

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteDialect "github.com/artie-labs/bulksync/clients/sqlite/dialect"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/mocks"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

func TestNewStagingTable(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tableID := sqliteDialect.NewTableIdentifier("", "person")
	cols := []columns.Column{columns.NewColumn("id", "INTEGER")}
	{
		// Ephemeral
		stagingTable := newStagingTable(tableID, nil, cols, now)
		assert.True(t, stagingTable.Ephemeral)
		assert.True(t, stagingTable.ID.Temporary())
		assert.Regexp(t, `^person__bulk_[0-9a-f]{12}_\d+$`, stagingTable.ID.Table())
		assert.False(t, destination.StagingTableExpired(stagingTable.ID.Table(), now))
		assert.Equal(t, cols, stagingTable.Columns)
	}
	{
		// Physical with a custom base name
		stagingTable := newStagingTable(tableID, &PhysicalPseudo{Name: "scratch"}, cols, now)
		assert.False(t, stagingTable.Ephemeral)
		assert.False(t, stagingTable.ID.Temporary())
		assert.Equal(t, "main", stagingTable.ID.Schema())
		assert.Regexp(t, `^scratch__bulk_`, stagingTable.ID.Table())
	}
	{
		// Names are unique per operation
		assert.NotEqual(t, newStagingTable(tableID, nil, cols, now).ID.Table(), newStagingTable(tableID, nil, cols, now).ID.Table())
	}
	{
		// The identifier is derived from the destination table
		fakeID := &mocks.FakeTableIdentifier{}
		fakeID.TableReturns("orders")
		fakeID.WithTableReturns(fakeID)
		fakeID.WithTemporaryReturns(fakeID)

		stagingTable := newStagingTable(fakeID, &PhysicalPseudo{}, cols, now)
		assert.Equal(t, fakeID, stagingTable.ID)
		assert.Equal(t, 1, fakeID.WithTableCallCount())
		assert.Regexp(t, `^orders__bulk_`, fakeID.WithTableArgsForCall(0))
		assert.False(t, fakeID.WithTemporaryArgsForCall(0))
	}
}

func TestCoordinator(t *testing.T) {
	stagingTable := StagingTable{ID: sqliteDialect.NewTableIdentifier("", "person__bulk").WithTemporary(true), Ephemeral: true}
	{
		// Supplied transaction, cleanup drops the staging table and never rolls back
		mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`CREATE TEMP TABLE "temp"."person__bulk" ();`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DROP TABLE IF EXISTS "temp"."person__bulk"`).WillReturnError(errInjected)

		tx, err := mockDB.Begin()
		require.NoError(t, err)

		c, err := openScope(t.Context(), nil, sqliteDialect.SQLiteDialect{}, "person", tx)
		require.NoError(t, err)
		assert.False(t, c.owned)
		assert.Equal(t, PhaseScopeOpen, c.phase)

		require.NoError(t, c.createStaging(t.Context(), stagingTable))
		assert.Equal(t, PhaseStagingCreated, c.phase)

		primary := &TransferError{Table: "person", Err: errInjected}
		err = c.fail(t.Context(), primary)
		var stagingErr *StagingTableError
		assert.ErrorAs(t, err, &stagingErr)
		assert.Equal(t, StagingDrop, stagingErr.Op)
		var transferErr *TransferError
		assert.ErrorAs(t, err, &transferErr)
		assert.Equal(t, PhaseFailed, c.phase)
		assert.Equal(t, []Phase{PhaseScopeOpen, PhaseStagingCreated, PhaseCleanedUp, PhaseFailed}, c.history)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Owned transaction, the rollback removes the staging table
		mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`CREATE TEMP TABLE "temp"."person__bulk" ();`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		dest := beginnerFunc(func(ctx context.Context) (db.Tx, error) {
			return mockDB.BeginTx(ctx, nil)
		})
		c, err := openScope(t.Context(), dest, sqliteDialect.SQLiteDialect{}, "person", nil)
		require.NoError(t, err)
		assert.True(t, c.owned)

		require.NoError(t, c.createStaging(t.Context(), stagingTable))
		err = c.fail(t.Context(), errInjected)
		assert.Equal(t, errInjected, err)
		assert.Equal(t, []Phase{PhaseScopeOpen, PhaseStagingCreated, PhaseRollingBack, PhaseFailed}, c.history)
		assert.Nil(t, c.staging)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

type beginnerFunc func(ctx context.Context) (db.Tx, error)

func (f beginnerFunc) Begin(ctx context.Context) (db.Tx, error) {
	return f(ctx)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "staging_created", PhaseStagingCreated.String())
	assert.Equal(t, "rolling_back", PhaseRollingBack.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.Equal(t, "unknown", Phase(100).String())
}
