package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agriprep/internal/config"
	custommw "agriprep/internal/middleware"
	ws "agriprep/internal/websocket"
)

// RouterConfig bundles everything the router serves.
type RouterConfig struct {
	Logger   *slog.Logger
	Manager  RunManager
	Hub      *ws.Hub
	Registry *prometheus.Registry
	Config   *config.Config
	Version  string
}

// NewRouter assembles the full route tree.
func NewRouter(rc RouterConfig) chi.Router {
	logger := rc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)

	outputDir := rc.Config.Paths.OutputDir

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", NewHealthHandler(logger, rc.Hub, rc.Version).Routes())
		r.Mount("/pipeline", NewPipelineHandler(rc.Manager, logger).Routes())
		r.Mount("/model", NewModelHandler(outputDir, logger).Routes())
		r.Mount("/artifacts", NewArtifactsHandler(outputDir, logger).Routes())
	})

	if rc.Hub != nil {
		r.Get("/ws", NewWSHandler(rc.Hub, rc.Config.WebSocket, logger).ServeHTTP)
	}

	if rc.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rc.Registry, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"status_code":404,"error_code":"NOT_FOUND","message":"route not found"}}`))
	})

	return r
}
