package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/artie-labs/bulksync/lib/bulk"
	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/destination"
	"github.com/artie-labs/bulksync/lib/rowsource"
	"github.com/artie-labs/bulksync/lib/telemetry/metrics/base"
)

func engineOptions(cfg config.Engine, metricsClient base.Client) bulk.EngineOptions {
	opts := bulk.EngineOptions{
		MaxBatchSize:           cfg.MaxBatchSize,
		MaxColumnsPerStatement: cfg.MaxColumnsPerStatement,
		Metrics:                metricsClient,
	}

	if cfg.BatchesPerSecond > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.BatchesPerSecond), 1)
	}

	return opts
}

func buildArgs(dest destination.Destination, job config.Job, rows bulk.RowSource) bulk.Args {
	args := bulk.Args{
		TableID:    dest.IdentifierFor(job.Schema, job.Table),
		Rows:       rows,
		Qualifiers: job.Qualifiers,
		BatchSize:  job.BatchSize,
		Options: bulk.CopyOptions{
			KeepIdentity:     job.Options.KeepIdentity,
			KeepNulls:        job.Options.KeepNulls,
			CheckConstraints: job.Options.CheckConstraints,
			FireTriggers:     job.Options.FireTriggers,
			TableLock:        job.Options.TableLock,
			Timeout:          time.Duration(job.Options.TimeoutSeconds) * time.Second,
		},
		Staging: bulk.Ephemeral{},
	}

	for _, mapping := range job.Mappings {
		args.Mappings = append(args.Mappings, bulk.Mapping{Source: mapping.Source, Destination: mapping.Destination})
	}

	if job.Staging.Physical {
		args.Staging = bulk.PhysicalPseudo{Name: job.Staging.Name}
	}

	return args
}

// Sweep drops expired staging tables from the job's schema.
func Sweep(ctx context.Context, cfg config.Config, dest destination.Destination) error {
	engine := bulk.NewEngine(dest, bulk.EngineOptions{})
	if err := engine.SweepStagingTables(ctx, cfg.Job.Schema); err != nil {
		return fmt.Errorf("failed to sweep staging tables: %w", err)
	}

	return nil
}

// Run loads the job's input and applies it to the destination table, returning the number of rows affected.
func Run(ctx context.Context, cfg config.Config, dest destination.Destination, metricsClient base.Client) (int64, error) {
	job := cfg.Job
	if job.SweepStagingTables {
		if err := Sweep(ctx, cfg, dest); err != nil {
			slog.Warn("Failed to sweep staging tables, continuing", slog.Any("err", err))
		}
	}

	loader, err := rowsource.NewLoader(ctx, job.Input)
	if err != nil {
		return 0, fmt.Errorf("failed to create input loader: %w", err)
	}
	defer loader.Close()

	start := time.Now()
	rows, err := rowsource.LoadAll(ctx, loader, job.Input.Paths, 0)
	if err != nil {
		return 0, err
	}

	slog.Info("Loaded input", slog.Int("rows", rows.Len()), slog.Int("files", len(job.Input.Paths)), slog.Duration("duration", time.Since(start)))
	metricsClient.Count("bulk.rows.loaded", int64(rows.Len()), map[string]string{"table": job.Table})

	engine := bulk.NewEngine(dest, engineOptions(cfg.Engine, metricsClient))
	return engine.Run(ctx, job.Mode, buildArgs(dest, job, rows))
}
