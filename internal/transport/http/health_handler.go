package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HubStats reports WebSocket hub counters for the health payload.
type HubStats interface {
	Stats() map[string]interface{}
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	logger    *slog.Logger
	hub       HubStats
	startedAt time.Time
	version   string
}

// NewHealthHandler creates a health handler. hub may be nil for processes
// without a WebSocket layer.
func NewHealthHandler(logger *slog.Logger, hub HubStats, version string) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		logger:    logger.With(slog.String("component", "health_handler")),
		hub:       hub,
		startedAt: time.Now(),
		version:   version,
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if h.hub != nil {
		payload["websocket"] = h.hub.Stats()
	}
	render.JSON(w, r, payload)
}
