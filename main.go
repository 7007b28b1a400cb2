package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/destination/utils"
	"github.com/artie-labs/bulksync/lib/logger"
	"github.com/artie-labs/bulksync/lib/telemetry/metrics"
	"github.com/artie-labs/bulksync/processes/job"
)

func main() {
	settings, err := config.LoadSettings(os.Args[1:], true)
	if err != nil {
		logger.Fatal("Failed to load settings", slog.Any("err", err))
	}

	log, _ := logger.NewLogger(settings)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsClient := metrics.LoadExporter(settings.Config)
	dest, err := utils.Load(ctx, settings.Config)
	if err != nil {
		logger.Fatal("Failed to connect to destination", slog.Any("err", err), slog.Any("output", settings.Config.Output))
	}
	defer dest.Close()

	slog.Info("Config is loaded",
		slog.Any("output", settings.Config.Output),
		slog.String("table", settings.Config.Job.Table),
		slog.Any("mode", settings.Config.Job.Mode),
		slog.Int("max_batch_size", settings.Config.Engine.MaxBatchSize),
	)

	if settings.SweepOnly {
		if err = job.Sweep(ctx, settings.Config, dest); err != nil {
			logger.Fatal("Failed to sweep staging tables", slog.Any("err", err))
		}
		return
	}

	affected, err := job.Run(ctx, settings.Config, dest, metricsClient)
	if err != nil {
		logger.Fatal("Bulk operation failed", slog.Any("err", err), slog.String("table", settings.Config.Job.Table))
	}

	slog.Info("Bulk operation finished", slog.String("table", settings.Config.Job.Table), slog.Int64("affected", affected))
}
