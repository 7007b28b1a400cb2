package mysql

import (
	"bytes"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

var orderColumns = []columns.Column{columns.NewColumn("id", "int"), columns.NewColumn("note", "text")}

func TestStore_IdentifierFor(t *testing.T) {
	store := NewStore(nil, "shop", false)
	assert.Equal(t, "`shop`.`orders`", store.IdentifierFor("", "orders").FullyQualifiedName())
	assert.Equal(t, "`other`.`orders`", store.IdentifierFor("other", "orders").FullyQualifiedName())
}

func TestEncodeValue(t *testing.T) {
	for _, tc := range []struct {
		name     string
		value    any
		expected string
	}{
		{name: "null", value: nil, expected: `\N`},
		{name: "plain string", value: "hello", expected: "hello"},
		{name: "string with separators", value: "a\tb\nc\\d", expected: `a\tb\nc\\d`},
		{name: "literal backslash N", value: `\N`, expected: `\\N`},
		{name: "bytes", value: []byte("x\ty"), expected: `x\ty`},
		{name: "true", value: true, expected: "1"},
		{name: "false", value: false, expected: "0"},
		{name: "int64", value: int64(-42), expected: "-42"},
		{name: "float64", value: 1.5, expected: "1.5"},
		{name: "time", value: time.Date(2024, 3, 4, 5, 6, 7, 8000, time.UTC), expected: "2024-03-04 05:06:07.000008"},
	} {
		actual, err := encodeValue(tc.value)
		assert.NoError(t, err, tc.name)
		assert.Equal(t, tc.expected, actual, tc.name)
	}

	_, err := encodeValue(struct{}{})
	assert.ErrorContains(t, err, "unsupported value type struct {}")
}

func TestWriteRow(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, writeRow(&buf, []any{1, "a b", nil, apd.New(105, -1)}))
	assert.NoError(t, writeRow(&buf, []any{2, "multi\nline", true, map[string]any{"k": 1}}))
	assert.Equal(t, "1\ta b\t\\N\t10.5\n2\tmulti\\nline\t1\t{\"k\":1}\n", buf.String())
}

func TestBuildLoadDataQuery(t *testing.T) {
	store := NewStore(nil, "shop", false)
	assert.Equal(t,
		"LOAD DATA LOCAL INFILE 'Reader::bulk_1' INTO TABLE `shop`.`orders__bulk` CHARACTER SET utf8mb4 FIELDS TERMINATED BY '\\t' ESCAPED BY '\\\\' LINES TERMINATED BY '\\n' (`id`,`note`)",
		buildLoadDataQuery("bulk_1", store.IdentifierFor("", "orders__bulk"), orderColumns),
	)
}

func TestStore_BulkCopy(t *testing.T) {
	rows := [][]any{{1, "a"}, {2, nil}}
	{
		// LOAD DATA
		mockDB, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer mockDB.Close()
		store := NewStore(mockDB, "shop", false)

		mock.ExpectBegin()
		mock.ExpectExec("LOAD DATA LOCAL INFILE 'Reader::bulk_.+' INTO TABLE `shop`.`orders__bulk`").WillReturnResult(sqlmock.NewResult(0, 2))

		tx, err := store.Begin(t.Context())
		assert.NoError(t, err)
		copied, err := store.BulkCopy(t.Context(), tx, store.IdentifierFor("", "orders__bulk").WithTemporary(true), orderColumns, rows, destination.CopyOptions{})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), copied)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
	{
		// Local infile disabled
		mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		assert.NoError(t, err)
		defer mockDB.Close()
		store := NewStore(mockDB, "shop", true)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `shop`.`orders__bulk` (`id`,`note`) VALUES (?,?),(?,?)").
			WithArgs(int64(1), "a", int64(2), nil).WillReturnResult(sqlmock.NewResult(0, 2))

		tx, err := store.Begin(t.Context())
		assert.NoError(t, err)
		copied, err := store.BulkCopy(t.Context(), tx, store.IdentifierFor("", "orders__bulk"), orderColumns, rows, destination.CopyOptions{})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), copied)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestStore_SweepStagingTables(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	defer mockDB.Close()
	store := NewStore(mockDB, "shop", false)

	now := time.Now()
	query, _ := store.Dialect().BuildSweepQuery("shop")
	mock.ExpectQuery(query).WithArgs("shop", "%__bulk%").WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME"}).AddRow("shop", destination.StagingTableName("orders", now)),
	)

	// Nothing has expired yet
	assert.NoError(t, store.SweepStagingTables(t.Context(), "", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
