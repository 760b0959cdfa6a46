package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	"agriprep/internal/dataset"
	apperrors "agriprep/internal/errors"
)

// HTTPSource downloads the dataset from an ordered list of candidate URLs,
// pacing attempts with a rate limiter. The payload is persisted into the
// data directory before parsing, so subsequent runs can use the file
// provider instead of the network.
type HTTPSource struct {
	urls         []string
	client       *http.Client
	limiter      *rate.Limiter
	dataDir      string
	maxBodyBytes int64
	logger       *slog.Logger
}

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	URLs              []string
	DataDir           string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	MaxBodyBytes      int64
	Client            *http.Client
}

// NewHTTPSource creates a download provider.
func NewHTTPSource(logger *slog.Logger, opts HTTPOptions) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 256 << 20
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.RequestTimeout}
	}
	return &HTTPSource{
		urls:         opts.URLs,
		client:       client,
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		dataDir:      opts.DataDir,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       logger.With(slog.String("component", "source.http")),
	}
}

// Name implements Provider.
func (s *HTTPSource) Name() string { return "http" }

// Fetch tries each candidate URL in order. Every attempt and its outcome is
// logged; the aggregate error lists every failure.
func (s *HTTPSource) Fetch(ctx context.Context) (*dataset.Table, error) {
	if len(s.urls) == 0 {
		return nil, apperrors.NewConfigError("no download URLs configured", nil)
	}

	var attempts *multierror.Error
	for _, url := range s.urls {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		table, err := s.fetchOne(ctx, url)
		if err == nil {
			return table, nil
		}
		s.logger.WarnContext(ctx, "download attempt failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		attempts = multierror.Append(attempts, fmt.Errorf("%s: %w", url, err))
	}
	return nil, apperrors.NewNetworkError("every download candidate failed", attempts.ErrorOrNil())
}

func (s *HTTPSource) fetchOne(ctx context.Context, url string) (*dataset.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("candidate served HTML, not data (content-type %q)", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > s.maxBodyBytes {
		return nil, fmt.Errorf("payload exceeds %d bytes", s.maxBodyBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	path, err := s.persist(url, body)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "dataset downloaded",
		slog.String("url", url),
		slog.String("path", path),
		slog.Int("size_bytes", len(body)))

	table, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	table.Provenance = url
	return table, nil
}

// persist writes the payload into the data directory under the URL's base
// name.
func (s *HTTPSource) persist(url string, body []byte) (string, error) {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return "", apperrors.NewStorageError("create data directory", err)
	}
	name := filepath.Base(url)
	if name == "" || name == "." || name == "/" {
		name = "dataset.csv"
	}
	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", apperrors.NewStorageError("persist downloaded dataset", err)
	}
	return path, nil
}
