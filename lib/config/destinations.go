package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/artie-labs/bulksync/lib/config/constants"
	"github.com/artie-labs/bulksync/lib/stringutil"
)

type MSSQL struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

func (m *MSSQL) DSN() string {
	query := url.Values{}
	query.Add("database", m.Database)

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(m.Username, m.Password),
		Host:     fmt.Sprintf("%s:%d", m.Host, m.Port),
		RawQuery: query.Encode(),
	}

	return u.String()
}

func (c Config) ValidateMSSQL() error {
	if c.Output != constants.MSSQL {
		return fmt.Errorf("output is not mssql, output: %v", c.Output)
	}

	if c.MSSQL == nil {
		return fmt.Errorf("mssql config is nil")
	}

	if empty := stringutil.Empty(c.MSSQL.Host, c.MSSQL.Username, c.MSSQL.Password, c.MSSQL.Database); empty {
		return fmt.Errorf("one of mssql settings is empty (host, username, password, database)")
	}

	if c.MSSQL.Port <= 0 {
		return fmt.Errorf("invalid mssql port: %d", c.MSSQL.Port)
	}

	return nil
}

type PostgresDriver string

const (
	PGX PostgresDriver = "pgx"
	PQ  PostgresDriver = "pq"
)

type Postgres struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslMode"`
	// Driver selects the database/sql driver, the bulk copy path differs between the two.
	Driver PostgresDriver `yaml:"driver"`
	// DisableMerge falls back to UPDATE + INSERT for servers older than Postgres 15.
	DisableMerge bool `yaml:"disableMerge"`
}

func (p *Postgres) DSN() string {
	query := url.Values{}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	query.Add("sslmode", sslMode)

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.Username, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: query.Encode(),
	}

	return u.String()
}

func (p *Postgres) DriverName() PostgresDriver {
	if p.Driver == "" {
		return PGX
	}

	return p.Driver
}

func (c Config) ValidatePostgres() error {
	if c.Output != constants.Postgres {
		return fmt.Errorf("output is not postgres, output: %v", c.Output)
	}

	if c.Postgres == nil {
		return fmt.Errorf("postgres config is nil")
	}

	if empty := stringutil.Empty(c.Postgres.Host, c.Postgres.Username, c.Postgres.Database); empty {
		return fmt.Errorf("one of postgres settings is empty (host, username, database)")
	}

	if c.Postgres.Port <= 0 {
		return fmt.Errorf("invalid postgres port: %d", c.Postgres.Port)
	}

	switch c.Postgres.DriverName() {
	case PGX, PQ:
	default:
		return fmt.Errorf("unsupported postgres driver: %q", c.Postgres.Driver)
	}

	return nil
}

type MySQL struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// DisableLocalInfile loads staging tables with multi-row inserts for servers that run with `local_infile=OFF`.
	DisableLocalInfile bool `yaml:"disableLocalInfile"`
}

func (m *MySQL) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = m.Username
	cfg.Passwd = m.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	cfg.DBName = m.Database
	cfg.ParseTime = true
	// Report matched rows rather than changed rows so UPDATE counts line up with the other destinations.
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

func (c Config) ValidateMySQL() error {
	if c.Output != constants.MySQL {
		return fmt.Errorf("output is not mysql, output: %v", c.Output)
	}

	if c.MySQL == nil {
		return fmt.Errorf("mysql config is nil")
	}

	if empty := stringutil.Empty(c.MySQL.Host, c.MySQL.Username, c.MySQL.Database); empty {
		return fmt.Errorf("one of mysql settings is empty (host, username, database)")
	}

	if c.MySQL.Port <= 0 {
		return fmt.Errorf("invalid mysql port: %d", c.MySQL.Port)
	}

	return nil
}

const defaultSQLiteBusyTimeoutMs = 5_000

type SQLite struct {
	Path          string `yaml:"path"`
	BusyTimeoutMs int    `yaml:"busyTimeoutMs"`
}

func (s *SQLite) DSN() string {
	busyTimeoutMs := s.BusyTimeoutMs
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = defaultSQLiteBusyTimeoutMs
	}

	query := url.Values{}
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMs))
	// Writers take the lock when the transaction begins instead of upgrading mid-way.
	query.Add("_txlock", "immediate")
	return fmt.Sprintf("file:%s?%s", s.Path, query.Encode())
}

func (c Config) ValidateSQLite() error {
	if c.Output != constants.SQLite {
		return fmt.Errorf("output is not sqlite, output: %v", c.Output)
	}

	if c.SQLite == nil {
		return fmt.Errorf("sqlite config is nil")
	}

	if c.SQLite.Path == "" {
		return fmt.Errorf("sqlite path is empty")
	}

	return nil
}
