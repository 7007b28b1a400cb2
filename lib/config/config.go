package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/artie-labs/bulksync/lib/config/constants"
)

const (
	// defaultMaxBatchSize bounds how many rows are handed to a single bulk copy call when the job does not set one.
	defaultMaxBatchSize = 100_000
	maxBatchSizeEnd     = 10_000_000
)

type Sentry struct {
	DSN string `yaml:"dsn"`
}

type Engine struct {
	// MaxBatchSize is the ceiling used when a job does not specify a batch size.
	MaxBatchSize int `yaml:"maxBatchSize"`
	// MaxColumnsPerStatement splits wide update clauses across several statements, 0 means no limit.
	MaxColumnsPerStatement int `yaml:"maxColumnsPerStatement"`
	// BatchesPerSecond paces bulk copy calls, 0 means unlimited.
	BatchesPerSecond float64 `yaml:"batchesPerSecond"`
}

type Config struct {
	Output constants.DestinationKind `yaml:"outputSource"`

	MSSQL    *MSSQL    `yaml:"mssql,omitempty"`
	Postgres *Postgres `yaml:"postgres,omitempty"`
	MySQL    *MySQL    `yaml:"mysql,omitempty"`
	SQLite   *SQLite   `yaml:"sqlite,omitempty"`

	Engine Engine `yaml:"engine"`
	Job    Job    `yaml:"job"`

	Reporting struct {
		Sentry *Sentry `yaml:"sentry"`
	}

	Telemetry struct {
		Metrics struct {
			Provider constants.ExporterKind `yaml:"provider"`
			Settings map[string]any         `yaml:"settings,omitempty"`
		}
	}
}

func readFileToConfig(pathToConfig string) (*Config, error) {
	file, err := os.Open(pathToConfig)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var config Config
	if err = yaml.Unmarshal(bytes, &config); err != nil {
		return nil, err
	}

	if config.Engine.MaxBatchSize == 0 {
		config.Engine.MaxBatchSize = defaultMaxBatchSize
	}

	if config.Job.Mode == "" {
		config.Job.Mode = constants.Update
	}

	return &config, nil
}

// Validate checks the output source and the job.
// Connections are not opened here, the destination clients do that once the config is known to be sane.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if !constants.IsValidDestination(c.Output) {
		return fmt.Errorf("config is invalid, output: %q is invalid", c.Output)
	}

	switch c.Output {
	case constants.MSSQL:
		if err := c.ValidateMSSQL(); err != nil {
			return err
		}
	case constants.Postgres:
		if err := c.ValidatePostgres(); err != nil {
			return err
		}
	case constants.MySQL:
		if err := c.ValidateMySQL(); err != nil {
			return err
		}
	case constants.SQLite:
		if err := c.ValidateSQLite(); err != nil {
			return err
		}
	}

	if c.Engine.MaxBatchSize <= 0 || c.Engine.MaxBatchSize > maxBatchSizeEnd {
		return fmt.Errorf("config is invalid, max batch size is outside of our range: %d, expected start: 1, end: %d", c.Engine.MaxBatchSize, maxBatchSizeEnd)
	}

	if c.Engine.MaxColumnsPerStatement < 0 {
		return fmt.Errorf("config is invalid, max columns per statement cannot be negative: %d", c.Engine.MaxColumnsPerStatement)
	}

	if c.Engine.BatchesPerSecond < 0 {
		return fmt.Errorf("config is invalid, batches per second cannot be negative: %v", c.Engine.BatchesPerSecond)
	}

	if err := c.Job.Validate(); err != nil {
		return fmt.Errorf("job is invalid: %w", err)
	}

	return nil
}
