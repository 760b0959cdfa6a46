// Package v1 defines the request and response contracts of the HTTP API.
package v1

import (
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RunRequest asks the server to execute a preparation pipeline run.
// Source selects where the table comes from: "auto" tries the local data
// directory first and falls back to the configured download URLs.
type RunRequest struct {
	Source string `json:"source,omitempty" validate:"omitempty,oneof=auto file http"`
}

// Bind implements render.Binder: defaults then validation.
func (r *RunRequest) Bind(req *http.Request) error {
	if r.Source == "" {
		r.Source = "auto"
	}
	return validate.Struct(r)
}

// RunResponse acknowledges an accepted pipeline run.
type RunResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// ArtifactInfo describes one file written by the export stage.
type ArtifactInfo struct {
	Name     string `json:"name"`
	SizeByte int64  `json:"size_bytes"`
	Modified string `json:"modified"`
}

// ArtifactListResponse is the payload of GET /api/artifacts.
type ArtifactListResponse struct {
	OutputDir string         `json:"output_dir"`
	Artifacts []ArtifactInfo `json:"artifacts"`
}
