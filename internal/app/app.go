package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agriprep/internal/cleaning"
	"agriprep/internal/config"
	"agriprep/internal/export"
	"agriprep/internal/infrastructure"
	"agriprep/internal/pipeline"
	"agriprep/internal/source"
	"agriprep/internal/star"
	"agriprep/internal/summary"
	transporthttp "agriprep/internal/transport/http"
	ws "agriprep/internal/websocket"
)

const (
	// Version identifies the running build.
	Version = "1.0.0"
	// AppName is the human-readable service name.
	AppName = "agriprep"
)

// Application wires every component together: configuration, logging,
// observability, the WebSocket hub, the pipeline manager, and the HTTP
// server.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Hub           *ws.Hub
	Manager       *pipeline.Manager
	Server        *http.Server
}

// NewApplication loads configuration and builds the full dependency graph.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Logging, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize observability: %w", err)
	}

	hub := ws.NewHub(logger)
	hub.Start()

	tracer, err := pipeline.NewTracer()
	if err != nil {
		return nil, fmt.Errorf("initialize pipeline tracer: %w", err)
	}

	runner := pipeline.NewRunner(logger, BuildDependencies(logger, cfg),
		pipeline.WithPublisher(ws.NewRunEventAdapter(hub)),
		pipeline.WithTracer(tracer),
	)
	manager := pipeline.NewManager(logger, runner, cfg.Server.RunTimeout)

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Logger:   logger,
		Manager:  manager,
		Hub:      hub,
		Registry: otelProviders.Registry,
		Config:   cfg,
		Version:  Version,
	})

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Hub:           hub,
		Manager:       manager,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}

	return app, nil
}

// BuildDependencies assembles the pipeline components from configuration.
// The CSV sink always runs; the workbook, parquet, and warehouse sinks are
// opt-in through the export section.
func BuildDependencies(logger *slog.Logger, cfg *config.Config) pipeline.Dependencies {
	sinks := []export.Sink{export.NewCSVSink(logger, cfg.Paths.OutputDir)}
	if cfg.Export.XLSX {
		sinks = append(sinks, export.NewXLSXSink(logger, cfg.Paths.OutputDir))
	}
	if cfg.Export.Parquet {
		sinks = append(sinks, export.NewParquetSink(logger, cfg.Paths.OutputDir))
	}
	if cfg.Export.SQLite {
		sinks = append(sinks, export.NewSQLiteSink(logger, cfg.Paths.OutputDir))
	}

	return pipeline.Dependencies{
		File: source.NewFileSource(logger, cfg.Paths.DataDir, cfg.Source.FilePatterns),
		HTTP: source.NewHTTPSource(logger, source.HTTPOptions{
			URLs:              cfg.Source.URLs,
			DataDir:           cfg.Paths.DataDir,
			RequestTimeout:    cfg.Source.RequestTimeout,
			RequestsPerSecond: cfg.Source.RequestsPerSecond,
			MaxBodyBytes:      cfg.Source.MaxBodyBytes,
		}),
		Cleaner: cleaning.New(logger, cleaning.Config{
			MissingRatioThreshold: cfg.Cleaning.MissingRatioThreshold,
			IQRMultiplier:         cfg.Cleaning.IQRMultiplier,
		}),
		Builder:    star.NewBuilder(logger),
		Aggregator: summary.New(logger),
		Exporter:   export.NewExporter(logger, cfg.Paths.OutputDir, sinks...),
	}
}

// Start begins serving HTTP. The server runs in a goroutine; a listen
// failure cancels the supplied context so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) {
	a.Logger.InfoContext(ctx, "http server listening",
		slog.String("addr", a.Server.Addr),
		slog.String("data_dir", a.Config.Paths.DataDir),
		slog.String("output_dir", a.Config.Paths.OutputDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()
}

// Stop shuts the application down: HTTP server first so no new runs start,
// then the WebSocket hub and the observability providers.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "observability shutdown error", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run starts the application and blocks until an interrupt or a fatal
// server error, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.Start(ctx, cancel)

	select {
	case sig := <-sigChan:
		a.Logger.Info("received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	// Detach from the cancelled context so shutdown still gets its timeout.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
