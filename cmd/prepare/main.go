package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"agriprep/internal/app"
	"agriprep/internal/config"
	"agriprep/internal/infrastructure"
	"agriprep/internal/pipeline"
)

// prepare runs the full preparation pipeline once and exits. It is the
// headless counterpart of the server's POST /api/pipeline/run.
func main() {
	sourceMode := flag.String("source", "auto", "source mode: file, http, or auto")
	xlsx := flag.Bool("xlsx", false, "also write the Excel workbook")
	parquet := flag.Bool("parquet", false, "also write the fact table as Parquet")
	sqlite := flag.Bool("sqlite", false, "also write the SQLite warehouse")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *xlsx {
		cfg.Export.XLSX = true
	}
	if *parquet {
		cfg.Export.Parquet = true
	}
	if *sqlite {
		cfg.Export.SQLite = true
	}

	runner := pipeline.NewRunner(logger, app.BuildDependencies(logger, cfg))

	ctx := context.Background()
	var cancel context.CancelFunc
	if cfg.Server.RunTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.RunTimeout)
		defer cancel()
	}

	run := pipeline.NewRun(uuid.New().String(), *sourceMode, runner.Steps(*sourceMode))
	runner.Execute(ctx, run)

	snapshot := run.Snapshot()
	logger.Info("run finished",
		slog.String("run_id", snapshot.ID),
		slog.String("status", string(snapshot.Status)))

	if snapshot.Status != pipeline.RunStatusCompleted {
		if snapshot.Error != "" {
			logger.Error("preparation failed", slog.String("error", snapshot.Error))
		}
		os.Exit(1)
	}
}
