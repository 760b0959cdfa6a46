package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "agriprep/internal/errors"
	"agriprep/internal/export"
)

// ModelHandler serves the data model document the export stage writes.
type ModelHandler struct {
	outputDir string
	logger    *slog.Logger
}

// NewModelHandler creates a model-document handler over the output
// directory.
func NewModelHandler(outputDir string, logger *slog.Logger) *ModelHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelHandler{
		outputDir: outputDir,
		logger:    logger.With(slog.String("component", "model_handler")),
	}
}

// Routes returns the model routes.
func (h *ModelHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetModel)
	return r
}

// GetModel handles GET /api/model. Before the first successful run there is
// no document yet, which is a 404 rather than an error.
func (h *ModelHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	doc, err := export.ReadModelDoc(h.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrModelDocNotFound))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to read model document",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	render.JSON(w, r, doc)
}
