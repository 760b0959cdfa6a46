package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"agriprep/internal/config"
	ws "agriprep/internal/websocket"
)

// WSHandler upgrades connections and hands them to the hub.
type WSHandler struct {
	hub      *ws.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates the WebSocket upgrade handler.
func NewWSHandler(hub *ws.Hub, cfg config.WebSocketConfig, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		hub:    hub,
		logger: logger.With(slog.String("component", "ws_handler")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// The UI and the API are served from the same origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}
	ws.ServeWS(h.hub, conn, h.logger)
}
