// Package source implements the Source Table Provider: the explicit
// abstraction the pipeline depends on for its single input. There is no
// silent fallback to synthetic data; every provider either yields a real
// table or a recorded failure, and only the failure of every provider in
// the chain is fatal to a run.
package source

import (
	"context"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"agriprep/internal/dataset"
	apperrors "agriprep/internal/errors"
)

// Provider supplies a raw source table.
type Provider interface {
	// Name identifies the provider in logs and error chains.
	Name() string
	// Fetch acquires the table or reports why it could not.
	Fetch(ctx context.Context) (*dataset.Table, error)
}

// MultiSource tries an ordered chain of providers, first success wins. All
// failures are aggregated into a single fatal SourceUnavailableError, the
// only condition that aborts the whole pipeline.
type MultiSource struct {
	providers []Provider
	logger    *slog.Logger
}

// NewMultiSource creates a provider chain.
func NewMultiSource(logger *slog.Logger, providers ...Provider) *MultiSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSource{
		providers: providers,
		logger:    logger.With(slog.String("component", "source")),
	}
}

// Name implements Provider.
func (m *MultiSource) Name() string { return "chain" }

// Fetch implements Provider over the chain.
func (m *MultiSource) Fetch(ctx context.Context) (*dataset.Table, error) {
	var attempts *multierror.Error
	for _, provider := range m.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := provider.Fetch(ctx)
		if err == nil {
			m.logger.InfoContext(ctx, "source table acquired",
				slog.String("provider", provider.Name()),
				slog.String("provenance", table.Provenance),
				slog.Int("rows", table.Len()))
			return table, nil
		}
		m.logger.WarnContext(ctx, "source provider failed, trying next",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()))
		attempts = multierror.Append(attempts, err)
	}
	return nil, apperrors.NewSourceUnavailableError(
		"no provider could supply a source table", attempts.ErrorOrNil())
}
