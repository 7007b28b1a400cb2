package mysql

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/artie-labs/bulksync/clients/mysql/dialect"
	"github.com/artie-labs/bulksync/clients/shared"
	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/db"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/sql"
	"github.com/artie-labs/bulksync/lib/typing/columns"
)

// MySQL binds at most 65535 placeholders per prepared statement.
const maxParams = 65_535

type Store struct {
	db                 db.Store
	database           string
	disableLocalInfile bool
}

func NewStore(store db.Store, database string, disableLocalInfile bool) *Store {
	return &Store{db: store, database: database, disableLocalInfile: disableLocalInfile}
}

func (s *Store) Label() constants.DestinationKind {
	return constants.MySQL
}

func (s *Store) Dialect() sql.Dialect {
	return dialect.MySQLDialect{}
}

// IdentifierFor treats [schema] as the database, falling back to the one in the connection settings.
func (s *Store) IdentifierFor(schema, table string) sql.TableIdentifier {
	if schema == "" {
		schema = s.database
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
	return shared.DescribeTable(ctx, querier, s.Dialect(), tableID)
}

// BulkCopy streams the rows as tab separated values through LOAD DATA LOCAL INFILE.
func (s *Store) BulkCopy(ctx context.Context, tx db.Tx, tableID sql.TableIdentifier, cols []columns.Column, rows [][]any, _ destination.CopyOptions) (int64, error) {
	if s.disableLocalInfile {
		return shared.InsertRows(ctx, tx, s.Dialect(), tableID, cols, rows, shared.QuestionMarkPlaceholder, maxParams)
	}

	var buf bytes.Buffer
	for i, row := range rows {
		if err := writeRow(&buf, row); err != nil {
			return 0, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}

	readerName := "bulk_" + uuid.NewString()
	mysql.RegisterReaderHandler(readerName, func() io.Reader { return bytes.NewReader(buf.Bytes()) })
	defer mysql.DeregisterReaderHandler(readerName)

	result, err := tx.ExecContext(ctx, buildLoadDataQuery(readerName, tableID, cols))
	if err != nil {
		return 0, fmt.Errorf("failed to load data: %w", err)
	}

	loaded, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return loaded, nil
}

func buildLoadDataQuery(readerName string, tableID sql.TableIdentifier, cols []columns.Column) string {
	return fmt.Sprintf(`LOAD DATA LOCAL INFILE 'Reader::%s' INTO TABLE %s CHARACTER SET utf8mb4 FIELDS TERMINATED BY '\t' ESCAPED BY '\\' LINES TERMINATED BY '\n' (%s)`,
		readerName, tableID.FullyQualifiedName(), strings.Join(sql.QuoteColumns(cols, dialect.MySQLDialect{}), ","),
	)
}

var tsvEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`, "\x00", `\0`)

func writeRow(buf *bytes.Buffer, row []any) error {
	values, err := shared.ToDriverValues(row)
	if err != nil {
		return err
	}

	for i, value := range values {
		if i > 0 {
			buf.WriteByte('\t')
		}

		encoded, err := encodeValue(value)
		if err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		buf.WriteString(encoded)
	}
	buf.WriteByte('\n')
	return nil
}

func encodeValue(value any) (string, error) {
	switch castedValue := value.(type) {
	case nil:
		return `\N`, nil
	case string:
		return tsvEscaper.Replace(castedValue), nil
	case []byte:
		return tsvEscaper.Replace(string(castedValue)), nil
	case bool:
		if castedValue {
			return "1", nil
		}
		return "0", nil
	case int64:
		return strconv.FormatInt(castedValue, 10), nil
	case float64:
		return strconv.FormatFloat(castedValue, 'f', -1, 64), nil
	case time.Time:
		return castedValue.UTC().Format("2006-01-02 15:04:05.999999"), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

func (s *Store) SweepStagingTables(ctx context.Context, schema string, now time.Time) error {
	return shared.Sweep(ctx, s.db, s.Dialect(), s.IdentifierFor, s.IdentifierFor(schema, "").Schema(), now)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func LoadStore(ctx context.Context, cfg config.Config) (*Store, error) {
	store, err := db.Open(ctx, "mysql", cfg.MySQL.DSN())
	if err != nil {
		return nil, err
	}

	return NewStore(store, cfg.MySQL.Database, cfg.MySQL.DisableLocalInfile), nil
}
