package http

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "agriprep/internal/errors"
	v1 "agriprep/pkg/contracts/api/v1"
)

// ArtifactsHandler lists and serves the exported data files.
type ArtifactsHandler struct {
	outputDir string
	logger    *slog.Logger
}

// NewArtifactsHandler creates an artifacts handler over the output
// directory.
func NewArtifactsHandler(outputDir string, logger *slog.Logger) *ArtifactsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactsHandler{
		outputDir: outputDir,
		logger:    logger.With(slog.String("component", "artifacts_handler")),
	}
}

// Routes returns the artifact routes.
func (h *ArtifactsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListArtifacts)
	r.Get("/download/{name}", h.DownloadArtifact)
	return r
}

// ListArtifacts handles GET /api/artifacts.
func (h *ArtifactsHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			render.JSON(w, r, v1.ArtifactListResponse{OutputDir: h.outputDir})
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to list artifacts",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrFileSystem))
		return
	}

	resp := v1.ArtifactListResponse{OutputDir: h.outputDir}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		resp.Artifacts = append(resp.Artifacts, v1.ArtifactInfo{
			Name:     entry.Name(),
			SizeByte: info.Size(),
			Modified: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(resp.Artifacts, func(i, j int) bool {
		return resp.Artifacts[i].Name < resp.Artifacts[j].Name
	})

	render.JSON(w, r, resp)
}

// DownloadArtifact handles GET /api/artifacts/download/{name}. The name is
// restricted to a bare file name so the handler can never walk out of the
// output directory.
func (h *ArtifactsHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInvalidRequest))
		return
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.NotFoundError(name)))
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	http.ServeFile(w, r, path)
}
