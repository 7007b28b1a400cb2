package bulk

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/artie-labs/bulksync/clients/sqlite"
	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

var errInjected = errors.New("injected failure")

// faultyDestination counts the calls the engine makes and fails the bulk copy numbered [failOnCopy].
type faultyDestination struct {
	destination.Destination

	mu         sync.Mutex
	begins     int
	copies     int
	failOnCopy int
	afterCopy  func()
}

func (f *faultyDestination) Begin(ctx context.Context) (db.Tx, error) {
	f.mu.Lock()
	f.begins++
	f.mu.Unlock()
	return f.Destination.Begin(ctx)
}

func (f *faultyDestination) BulkCopy(ctx context.Context, tx db.Tx, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any, opts destination.CopyOptions) (int64, error) {
	f.mu.Lock()
	f.copies++
	copies := f.copies
	f.mu.Unlock()

	if copies == f.failOnCopy {
		return 0, errInjected
	}

	copied, err := f.Destination.BulkCopy(ctx, tx, tableID, cols, rows, opts)
	if f.afterCopy != nil {
		f.afterCopy()
	}
	return copied, err
}

type person struct {
	ID   int64
	Name string
	Age  int64
}

type EngineTestSuite struct {
	suite.Suite

	store    *sqlite.Store
	dest     *faultyDestination
	engine   *Engine
	personID sql.TableIdentifier
}

func (e *EngineTestSuite) SetupTest() {
	store, err := sqlite.LoadStore(e.T().Context(), config.Config{SQLite: &config.SQLite{Path: filepath.Join(e.T().TempDir(), "bulk.db")}})
	e.Require().NoError(err)
	e.T().Cleanup(func() { e.NoError(store.Close()) })

	e.store = store
	e.dest = &faultyDestination{Destination: store}
	e.engine = NewEngine(e.dest, EngineOptions{})
	e.personID = store.IdentifierFor("", "Person")

	e.exec(`CREATE TABLE Person (Id INTEGER PRIMARY KEY, Name TEXT NOT NULL, Age INTEGER)`)
	e.exec(`INSERT INTO Person (Id, Name, Age) VALUES (1, 'X', 99)`)
}

func (e *EngineTestSuite) exec(query string) {
	_, err := e.store.DB().ExecContext(e.T().Context(), query)
	e.Require().NoError(err)
}

func (e *EngineTestSuite) people(querier db.Querier) []person {
	rows, err := querier.QueryContext(e.T().Context(), `SELECT Id, Name, Age FROM Person ORDER BY Id`)
	e.Require().NoError(err)
	defer rows.Close()

	var people []person
	for rows.Next() {
		var p person
		e.Require().NoError(rows.Scan(&p.ID, &p.Name, &p.Age))
		people = append(people, p)
	}
	e.Require().NoError(rows.Err())
	return people
}

func (e *EngineTestSuite) stagingTables(querier db.Querier) []string {
	rows, err := querier.QueryContext(e.T().Context(), `SELECT name FROM sqlite_master WHERE name LIKE '%__bulk%' UNION ALL SELECT name FROM sqlite_temp_master WHERE name LIKE '%__bulk%'`)
	e.Require().NoError(err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		e.Require().NoError(rows.Scan(&name))
		names = append(names, name)
	}
	e.Require().NoError(rows.Err())
	return names
}

func personRows(people ...person) *Rows {
	rows := make([]map[string]any, len(people))
	for i, p := range people {
		rows[i] = map[string]any{"Id": p.ID, "Name": p.Name, "Age": p.Age}
	}
	return RowsFromMaps(rows)
}

func (e *EngineTestSuite) TestBulkUpdate_Example() {
	affected, err := e.engine.BulkUpdate(e.T().Context(), Args{
		TableID:    e.personID,
		Rows:       personRows(person{1, "A", 30}, person{2, "B", 40}),
		Qualifiers: []string{"Id"},
	})
	e.NoError(err)
	e.Equal(int64(1), affected)
	e.Equal([]person{{1, "A", 30}}, e.people(e.store.DB()))
	e.Empty(e.stagingTables(e.store.DB()))
	e.Equal(1, e.dest.begins)
}

func (e *EngineTestSuite) TestBulkUpdate_ManyBatches() {
	e.exec(`WITH RECURSIVE ids(id) AS (SELECT 2 UNION ALL SELECT id + 1 FROM ids WHERE id < 10) INSERT INTO Person (Id, Name, Age) SELECT id, 'old', 0 FROM ids`)

	var input []person
	for i := int64(1); i <= 25; i++ {
		input = append(input, person{i, "new", i * 10})
	}

	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	batchSize := 4
	affected, err := e.engine.BulkUpdate(e.T().Context(), Args{TableID: e.personID, Rows: personRows(input...), BatchSize: &batchSize})
	e.NoError(err)
	e.Equal(int64(10), affected)
	e.Equal(7, e.dest.copies)
	e.Equal(input[:10], e.people(e.store.DB()))
	e.Contains(logs.String(), "batch=1 of=7")
	e.Contains(logs.String(), "batch=7 of=7")
	e.NotContains(logs.String(), "batch=8")
}

func (e *EngineTestSuite) TestBulkUpdate_ExplicitMapping() {
	rows, err := NewRows([]string{"person_id", "full_name", "ignored"}, [][]any{{1, "A", "?"}})
	e.Require().NoError(err)

	affected, err := e.engine.BulkUpdate(e.T().Context(), Args{
		TableID:    e.personID,
		Rows:       rows,
		Qualifiers: []string{"Id"},
		Mappings:   []Mapping{{Source: "person_id", Destination: "id"}, {Source: "full_name", Destination: "NAME"}},
	})
	e.NoError(err)
	e.Equal(int64(1), affected)
	// Age is not mapped and keeps its value.
	e.Equal([]person{{1, "A", 99}}, e.people(e.store.DB()))
}

func (e *EngineTestSuite) TestBulkUpdate_EmptyInput() {
	affected, err := e.engine.BulkUpdate(e.T().Context(), Args{TableID: e.personID, Rows: personRows()})
	e.NoError(err)
	e.Zero(affected)

	affected, err = e.engine.BulkUpdate(e.T().Context(), Args{TableID: e.personID, Rows: RowsFromMaps(nil), Qualifiers: []string{"Id"}})
	e.NoError(err)
	e.Zero(affected)

	rows, err := NewRows(nil, nil)
	e.Require().NoError(err)
	affected, err = e.engine.BulkMerge(e.T().Context(), Args{TableID: e.personID, Rows: rows, Mappings: []Mapping{{Source: "id", Destination: "Id"}}})
	e.NoError(err)
	e.Zero(affected)

	e.Zero(e.dest.begins)
	e.Zero(e.dest.copies)
	e.Equal([]person{{1, "X", 99}}, e.people(e.store.DB()))
}

func (e *EngineTestSuite) TestBulkUpdate_NoPrimaryKey() {
	e.exec(`CREATE TABLE NoKey (Name TEXT, Age INTEGER)`)
	e.exec(`INSERT INTO NoKey (Name, Age) VALUES ('X', 99)`)

	_, err := e.engine.BulkUpdate(e.T().Context(), Args{
		TableID: e.store.IdentifierFor("", "NoKey"),
		Rows:    RowsFromMaps([]map[string]any{{"Name": "X", "Age": 1}}),
	})
	var configurationErr *ConfigurationError
	e.ErrorAs(err, &configurationErr)
	e.Contains(err.Error(), "no primary key")
	e.Zero(e.dest.begins)
	e.Zero(e.dest.copies)
}

func (e *EngineTestSuite) TestBulkUpdate_QualifierNotMapped() {
	_, err := e.engine.BulkUpdate(e.T().Context(), Args{
		TableID:    e.personID,
		Rows:       personRows(person{1, "A", 30}),
		Qualifiers: []string{"Id"},
		Mappings:   []Mapping{{Source: "Name", Destination: "Name"}},
	})
	var configurationErr *ConfigurationError
	e.ErrorAs(err, &configurationErr)
	e.Equal(`invalid bulk operation on "main"."Person": qualifier "Id" is not a mapped column`, err.Error())
	e.Zero(e.dest.begins)
	e.Equal([]person{{1, "X", 99}}, e.people(e.store.DB()))
}

func (e *EngineTestSuite) TestBulkUpdate_TableDoesNotExist() {
	_, err := e.engine.BulkUpdate(e.T().Context(), Args{TableID: e.store.IdentifierFor("", "Missing"), Rows: personRows(person{1, "A", 30})})
	var configurationErr *ConfigurationError
	e.ErrorAs(err, &configurationErr)
	e.Zero(e.dest.begins)
}

func (e *EngineTestSuite) TestBulkUpdate_TransferFailure() {
	for _, staging := range []StagingPolicy{nil, Ephemeral{}, PhysicalPseudo{}, &PhysicalPseudo{Name: "scratch"}} {
		e.dest.copies = 0
		e.dest.failOnCopy = 2

		batchSize := 1
		_, err := e.engine.BulkUpdate(e.T().Context(), Args{
			TableID:   e.personID,
			Rows:      personRows(person{1, "A", 30}, person{1, "B", 31}, person{1, "C", 32}),
			BatchSize: &batchSize,
			Staging:   staging,
		})

		var transferErr *TransferError
		e.Require().ErrorAs(err, &transferErr)
		e.ErrorIs(err, errInjected)
		e.Equal(1, transferErr.BatchIndex)
		e.Equal(`"main"."Person"`, transferErr.Table)
		e.Equal([]person{{1, "X", 99}}, e.people(e.store.DB()))
		e.Empty(e.stagingTables(e.store.DB()))
	}
}

func (e *EngineTestSuite) TestBulkUpdate_Cancelled() {
	ctx, cancel := context.WithCancel(e.T().Context())
	defer cancel()
	e.dest.afterCopy = cancel

	batchSize := 1
	_, err := e.engine.BulkUpdate(ctx, Args{TableID: e.personID, Rows: personRows(person{1, "A", 30}, person{2, "B", 40}), BatchSize: &batchSize})
	e.ErrorIs(err, context.Canceled)
	e.Equal(1, e.dest.copies)
	e.Equal([]person{{1, "X", 99}}, e.people(e.store.DB()))

	// Already cancelled
	_, err = e.engine.BulkUpdate(ctx, Args{TableID: e.personID, Rows: personRows(person{1, "A", 30})})
	e.ErrorIs(err, context.Canceled)
	e.Equal(1, e.dest.begins)
}

func (e *EngineTestSuite) TestBulkUpdate_Concurrent() {
	e.exec(`WITH RECURSIVE ids(id) AS (SELECT 2 UNION ALL SELECT id + 1 FROM ids WHERE id < 20) INSERT INTO Person (Id, Name, Age) SELECT id, 'old', 0 FROM ids`)

	var left, right []person
	for i := int64(1); i <= 20; i++ {
		if i%2 == 0 {
			left = append(left, person{i, "left", i})
		} else {
			right = append(right, person{i, "right", i})
		}
	}

	var wg sync.WaitGroup
	results := make([]int64, 2)
	errs := make([]error, 2)
	for i, input := range [][]person{left, right} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = e.engine.BulkUpdate(e.T().Context(), Args{TableID: e.personID, Rows: personRows(input...)})
		}()
	}
	wg.Wait()

	e.NoError(errors.Join(errs...))
	e.Equal([]int64{10, 10}, results)

	people := e.people(e.store.DB())
	e.Len(people, 20)
	for _, p := range people {
		if p.ID%2 == 0 {
			e.Equal(person{p.ID, "left", p.ID}, p)
		} else {
			e.Equal(person{p.ID, "right", p.ID}, p)
		}
	}
	e.Empty(e.stagingTables(e.store.DB()))
}

func (e *EngineTestSuite) TestSuppliedTransaction() {
	ctx := e.T().Context()
	{
		// The caller decides whether the changes stick.
		tx, err := e.store.Begin(ctx)
		e.Require().NoError(err)

		affected, err := e.engine.BulkUpdate(ctx, Args{TableID: e.personID, Rows: personRows(person{1, "A", 30}), Tx: tx})
		e.NoError(err)
		e.Equal(int64(1), affected)
		e.Equal([]person{{1, "A", 30}}, e.people(tx))
		e.NoError(tx.Rollback())
		e.Equal([]person{{1, "X", 99}}, e.people(e.store.DB()))
		e.Zero(e.dest.begins)
	}
	{
		// A failure cleans up the staging table but leaves the transaction open.
		tx, err := e.store.Begin(ctx)
		e.Require().NoError(err)
		_, err = tx.ExecContext(ctx, `UPDATE Person SET Age = 50 WHERE Id = 1`)
		e.Require().NoError(err)

		e.dest.copies = 0
		e.dest.failOnCopy = 1
		_, err = e.engine.BulkUpdate(ctx, Args{TableID: e.personID, Rows: personRows(person{1, "A", 30}), Tx: tx, Staging: PhysicalPseudo{}})
		e.ErrorIs(err, errInjected)
		e.Empty(e.stagingTables(tx))

		e.NoError(tx.Commit())
		e.Equal([]person{{1, "X", 50}}, e.people(e.store.DB()))
		e.Zero(e.dest.begins)
	}
}

func (e *EngineTestSuite) TestBulkMerge() {
	affected, err := e.engine.BulkMerge(e.T().Context(), Args{TableID: e.personID, Rows: personRows(person{1, "A", 30}, person{2, "B", 40})})
	e.NoError(err)
	e.Equal(int64(2), affected)
	e.Equal([]person{{1, "A", 30}, {2, "B", 40}}, e.people(e.store.DB()))
}

func (e *EngineTestSuite) TestBulkDelete() {
	e.exec(`INSERT INTO Person (Id, Name, Age) VALUES (2, 'Y', 1), (3, 'Z', 2)`)

	affected, err := e.engine.BulkDelete(e.T().Context(), Args{
		TableID:  e.personID,
		Rows:     RowsFromMaps([]map[string]any{{"Id": 1}, {"Id": 3}, {"Id": 4}}),
		Mappings: []Mapping{{Source: "Id", Destination: "Id"}},
	})
	e.NoError(err)
	e.Equal(int64(2), affected)
	e.Equal([]person{{2, "Y", 1}}, e.people(e.store.DB()))
}

func (e *EngineTestSuite) TestBulkReplace() {
	affected, err := e.engine.BulkReplace(e.T().Context(), Args{TableID: e.personID, Rows: personRows(person{1, "A", 30}, person{2, "B", 40})})
	e.NoError(err)
	e.Equal(int64(2), affected)
	e.Equal([]person{{1, "A", 30}, {2, "B", 40}}, e.people(e.store.DB()))
}

func (e *EngineTestSuite) TestBulkInsert() {
	{
		affected, err := e.engine.BulkInsert(e.T().Context(), Args{TableID: e.personID, Rows: personRows(person{2, "B", 40}, person{3, "C", 50})})
		e.NoError(err)
		e.Equal(int64(2), affected)
		e.Equal([]person{{1, "X", 99}, {2, "B", 40}, {3, "C", 50}}, e.people(e.store.DB()))
	}
	{
		// Constraint violations surface as a merge error and nothing is inserted.
		_, err := e.engine.BulkInsert(e.T().Context(), Args{TableID: e.personID, Rows: personRows(person{4, "D", 60}, person{1, "A", 30})})
		var mergeErr *MergeError
		e.ErrorAs(err, &mergeErr)
		e.Len(e.people(e.store.DB()), 3)
		e.Empty(e.stagingTables(e.store.DB()))
	}
}

func (e *EngineTestSuite) TestSweepStagingTables() {
	e.exec(`CREATE TABLE Person__bulk_0123456789ab_1000 (Id INTEGER)`)
	e.NoError(e.engine.SweepStagingTables(e.T().Context(), ""))
	e.Empty(e.stagingTables(e.store.DB()))
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestNewEngine(t *testing.T) {
	engine := NewEngine(nil, EngineOptions{})
	assert.Equal(t, DefaultMaxBatchSize, engine.maxBatchSize)
	assert.NotNil(t, engine.metrics)

	engine = NewEngine(nil, EngineOptions{MaxBatchSize: 10, MaxColumnsPerStatement: 2})
	assert.Equal(t, 10, engine.maxBatchSize)
	assert.Equal(t, 2, engine.maxColumnsPerStatement)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "configuration_error", errorKind(newConfigurationError("t", "bad")))
	assert.Equal(t, "transfer_error", errorKind(errors.Join(&TransferError{Err: errInjected}, &StagingTableError{Op: StagingDrop})))
	assert.Equal(t, "merge_error", errorKind(errors.Join(&MergeError{}, &TransactionError{Op: TransactionRollback})))
	assert.Equal(t, "staging_table_error", errorKind(&StagingTableError{Op: StagingCreate}))
	assert.Equal(t, "transaction_error", errorKind(&TransactionError{Op: TransactionCommit}))
	assert.Equal(t, "cancelled", errorKind(context.Canceled))
	assert.Equal(t, "cancelled", errorKind(errors.Join(context.Canceled, &StagingTableError{Op: StagingDrop}, &TransactionError{Op: TransactionRollback})))
	assert.Equal(t, "transfer_error", errorKind(errors.Join(&TransferError{Err: context.DeadlineExceeded})))
	assert.Equal(t, "error", errorKind(errInjected))
}

func TestRowsFromMaps(t *testing.T) {
	rows := RowsFromMaps([]map[string]any{{"b": 1, "a": "x"}, {"c": true}})
	assert.Equal(t, []string{"a", "b", "c"}, rows.Fields())
	assert.Equal(t, 2, rows.Len())
	assert.Equal(t, []any{"x", 1, nil}, rows.Values(0))
	assert.Equal(t, []any{nil, nil, true}, rows.Values(1))
}

func TestNewRows(t *testing.T) {
	values := [][]any{{1, "a"}}
	rows, err := NewRows([]string{"id", "name"}, values)
	require.NoError(t, err)

	// Later changes by the caller are not visible.
	values[0][1] = "b"
	assert.Equal(t, []any{1, "a"}, rows.Values(0))

	_, err = NewRows([]string{"id", "name"}, [][]any{{1}})
	assert.ErrorContains(t, err, "row 0 has 1 values, expected 2")
}
