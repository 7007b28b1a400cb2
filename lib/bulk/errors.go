package bulk

import "fmt"

// ConfigurationError is returned for invalid qualifiers, mappings, batch sizes or staging policies.
// It is always detected before anything is written.
type ConfigurationError struct {
	Table   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid bulk operation on %s: %s", e.Table, e.Message)
}

func newConfigurationError(table string, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Table: table, Message: fmt.Sprintf(format, args...)}
}

type StagingOp string

const (
	StagingCreate StagingOp = "create"
	StagingDrop   StagingOp = "drop"
)

type StagingTableError struct {
	Table        string
	StagingTable string
	Op           StagingOp
	Err          error
}

func (e *StagingTableError) Error() string {
	return fmt.Sprintf("failed to %s staging table %s for %s: %v", e.Op, e.StagingTable, e.Table, e.Err)
}

func (e *StagingTableError) Unwrap() error {
	return e.Err
}

// TransferError carries the batch that failed to land in the staging table.
type TransferError struct {
	Table      string
	BatchIndex int
	Rows       int
	Err        error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to transfer batch %d (%d rows) for %s: %v", e.BatchIndex, e.Rows, e.Table, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

type MergeError struct {
	Table string
	Err   error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("failed to apply staged rows to %s: %v", e.Table, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

type TransactionOp string

const (
	TransactionBegin    TransactionOp = "begin"
	TransactionCommit   TransactionOp = "commit"
	TransactionRollback TransactionOp = "rollback"
)

// TransactionError is only returned for transactions the engine opened itself.
type TransactionError struct {
	Table string
	Op    TransactionOp
	Err   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("failed to %s transaction for %s: %v", e.Op, e.Table, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
