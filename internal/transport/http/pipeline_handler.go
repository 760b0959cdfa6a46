package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "agriprep/internal/errors"
	"agriprep/internal/pipeline"
	v1 "agriprep/pkg/contracts/api/v1"
)

// RunManager is the slice of the pipeline manager the handler needs.
type RunManager interface {
	Start(sourceMode string) (string, error)
	Get(id string) (pipeline.RunSnapshot, bool)
	List() []pipeline.RunSnapshot
}

// PipelineHandler exposes pipeline runs over HTTP.
type PipelineHandler struct {
	manager RunManager
	logger  *slog.Logger
}

// NewPipelineHandler creates a pipeline handler.
func NewPipelineHandler(manager RunManager, logger *slog.Logger) *PipelineHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineHandler{
		manager: manager,
		logger:  logger.With(slog.String("component", "pipeline_handler")),
	}
}

// Routes returns the pipeline routes.
func (h *PipelineHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/run", h.StartRun)
	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{id}", h.GetRun)

	return r
}

// StartRun handles POST /api/pipeline/run: it accepts the run and returns
// immediately, progress flows over the WebSocket.
func (h *PipelineHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	req := &v1.RunRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	id, err := h.manager.Start(req.Source)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.NewWithDetails(http.StatusConflict, "RUN_IN_PROGRESS",
					"a pipeline run is already in progress", nil)))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to start run",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	h.logger.InfoContext(r.Context(), "run accepted",
		slog.String("run_id", id),
		slog.String("source", req.Source))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, v1.RunResponse{RunID: id, Status: string(pipeline.RunStatusPending)})
}

// GetRun handles GET /api/pipeline/runs/{id}.
func (h *PipelineHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, ok := h.manager.Get(id)
	if !ok {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrRunNotFound))
		return
	}

	render.JSON(w, r, snap)
}

// ListRuns handles GET /api/pipeline/runs.
func (h *PipelineHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.manager.List())
}
