package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriprep/internal/config"
	"agriprep/internal/export"
	v1 "agriprep/pkg/contracts/api/v1"
	"agriprep/pkg/contracts/domain"
)

func TestModelHandler_GetModel(t *testing.T) {
	t.Run("document exists", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, export.WriteModelDoc(dir, &domain.ModelDoc{
			GeneratedAt: time.Now().UTC(),
			Source:      "test://fixture",
			Tables: []domain.TableInfo{
				{Name: "fact_agriculture", RowCount: 10, Columns: []string{"State_ID"}},
			},
		}))

		handler := NewModelHandler(dir, nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var doc domain.ModelDoc
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "test://fixture", doc.Source)
		require.Len(t, doc.Tables, 1)
		assert.Equal(t, 10, doc.Tables[0].RowCount)
	})

	t.Run("no document yet", func(t *testing.T) {
		handler := NewModelHandler(t.TempDir(), nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "MODEL_DOC_NOT_FOUND")
	})
}

func TestArtifactsHandler_ListArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fact_agriculture.csv"), []byte("a,b\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dim_states.csv"), []byte("c,d\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	handler := NewArtifactsHandler(dir, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp v1.ArtifactListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Artifacts, 2, "directories are not listed")
	assert.Equal(t, "dim_states.csv", resp.Artifacts[0].Name)
	assert.Equal(t, "fact_agriculture.csv", resp.Artifacts[1].Name)
	assert.Equal(t, int64(4), resp.Artifacts[0].SizeByte)
}

func TestArtifactsHandler_DownloadArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state_summary.csv"), []byte("x,y\n1,2\n"), 0644))

	handler := NewArtifactsHandler(dir, nil)

	t.Run("existing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/state_summary.csv", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "state_summary.csv")
		assert.Equal(t, "x,y\n1,2\n", rec.Body.String())
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/nope.csv", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("dotfile is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/.env", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthHandler_GetHealth(t *testing.T) {
	handler := NewHealthHandler(nil, stubHub{}, "1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "1.0.0", payload["version"])
	assert.Contains(t, payload, "websocket")
}

type stubHub struct{}

func (stubHub) Stats() map[string]interface{} {
	return map[string]interface{}{"active_clients": 0}
}

func TestNewRouter_Routes(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()

	router := NewRouter(RouterConfig{
		Manager:  &fakeManager{startID: "run-1"},
		Registry: prometheus.NewRegistry(),
		Config:   cfg,
		Version:  "test",
	})

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/pipeline/runs", http.StatusOK},
		{http.MethodGet, "/api/model", http.StatusNotFound},
		{http.MethodGet, "/api/artifacts", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}
