package constants

import "time"

const (
	// StagingTablePrefix is embedded in every staging table name so that stale tables can be found and swept.
	StagingTablePrefix = "__bulk"
	StagingTableTTL    = 6 * time.Hour
)

// ExporterKind is used for the Telemetry package
type ExporterKind string

const (
	Datadog ExporterKind = "datadog"
)

type DestinationKind string

const (
	MSSQL    DestinationKind = "mssql"
	Postgres DestinationKind = "postgres"
	MySQL    DestinationKind = "mysql"
	SQLite   DestinationKind = "sqlite"
)

var validDestinations = []DestinationKind{
	MSSQL,
	Postgres,
	MySQL,
	SQLite,
}

func IsValidDestination(destination DestinationKind) bool {
	for _, validDest := range validDestinations {
		if destination == validDest {
			return true
		}
	}

	return false
}

// Mode is the reconciliation applied once every batch has landed in the staging table.
type Mode string

const (
	// Update only touches destination rows that match a staged row.
	Update Mode = "update"
	// Merge updates matched rows and inserts the rest.
	Merge Mode = "merge"
	// Delete removes destination rows that match a staged row.
	Delete Mode = "delete"
	// Replace deletes matched rows and then inserts every staged row.
	Replace Mode = "replace"
	// Insert appends every staged row.
	Insert Mode = "insert"
)

var validModes = []Mode{Update, Merge, Delete, Replace, Insert}

func IsValidMode(mode Mode) bool {
	for _, validMode := range validModes {
		if mode == validMode {
			return true
		}
	}

	return false
}

type TableAlias string

const (
	TargetAlias  TableAlias = "tgt"
	StagingAlias TableAlias = "stg"
)
