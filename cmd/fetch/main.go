package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"agriprep/internal/config"
	"agriprep/internal/infrastructure"
	"agriprep/internal/source"
)

// fetch downloads the dataset into the data directory and exits. The HTTP
// provider persists the payload, so later runs can use the file provider
// without touching the network.
func main() {
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

	provider := source.NewHTTPSource(logger, source.HTTPOptions{
		URLs:              cfg.Source.URLs,
		DataDir:           cfg.Paths.DataDir,
		RequestTimeout:    cfg.Source.RequestTimeout,
		RequestsPerSecond: cfg.Source.RequestsPerSecond,
		MaxBodyBytes:      cfg.Source.MaxBodyBytes,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RunTimeout)
	defer cancel()

	table, err := provider.Fetch(ctx)
	if err != nil {
		logger.Error("download failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("dataset downloaded",
		slog.String("provenance", table.Provenance),
		slog.Int("rows", len(table.Rows)),
		slog.String("data_dir", cfg.Paths.DataDir))
}
