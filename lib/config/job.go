package config

import (
	"fmt"
	"strings"

	"github.com/artie-labs/bulksync/lib/config/constants"
)

type Mapping struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

type Staging struct {
	// Physical creates a regular table that is dropped by the engine instead of a session temporary table.
	Physical bool `yaml:"physical"`
	// Name overrides the staging table prefix when [Physical] is set.
	Name string `yaml:"name"`
}

type CopyOptions struct {
	KeepIdentity     bool `yaml:"keepIdentity"`
	KeepNulls        bool `yaml:"keepNulls"`
	CheckConstraints bool `yaml:"checkConstraints"`
	FireTriggers     bool `yaml:"fireTriggers"`
	TableLock        bool `yaml:"tableLock"`
	TimeoutSeconds   int  `yaml:"timeoutSeconds"`
}

type AWS struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	SessionToken    string `yaml:"sessionToken"`
	RoleARN         string `yaml:"roleARN"`
}

type GCP struct {
	ProjectID string `yaml:"projectID"`
	// PathToCredentials is _optional_ if you have GOOGLE_APPLICATION_CREDENTIALS set as an env var
	PathToCredentials string `yaml:"pathToCredentials"`
}

type Input struct {
	// Paths are newline delimited JSON files, either local or prefixed with s3:// or gs://.
	Paths []string `yaml:"paths"`
	AWS   *AWS     `yaml:"aws,omitempty"`
	GCP   *GCP     `yaml:"gcp,omitempty"`
}

type Job struct {
	Schema     string         `yaml:"schema"`
	Table      string         `yaml:"table"`
	Mode       constants.Mode `yaml:"mode"`
	Qualifiers []string       `yaml:"qualifiers"`
	Mappings   []Mapping      `yaml:"mappings"`
	BatchSize  *int           `yaml:"batchSize"`
	Staging    Staging        `yaml:"staging"`
	Options    CopyOptions    `yaml:"options"`
	Input      Input          `yaml:"input"`

	SweepStagingTables bool `yaml:"sweepStagingTables"`
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.Table) == "" {
		return fmt.Errorf("table is empty")
	}

	if !constants.IsValidMode(j.Mode) {
		return fmt.Errorf("mode %q is invalid", j.Mode)
	}

	if j.BatchSize != nil && *j.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got: %d", *j.BatchSize)
	}

	for i, mapping := range j.Mappings {
		if mapping.Source == "" || mapping.Destination == "" {
			return fmt.Errorf("mapping %d is missing a source or destination", i)
		}
	}

	if j.Options.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout cannot be negative: %d", j.Options.TimeoutSeconds)
	}

	if len(j.Input.Paths) == 0 {
		return fmt.Errorf("no input paths")
	}

	for _, path := range j.Input.Paths {
		if strings.HasPrefix(path, "s3://") && j.Input.AWS == nil {
			return fmt.Errorf("input %q requires aws settings", path)
		}
	}

	return nil
}
