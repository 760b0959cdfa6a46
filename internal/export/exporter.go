package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"agriprep/pkg/contracts/domain"
)

// Bundle is what every sink receives: the typed artifacts plus their
// rendered tabular form, so row-oriented sinks don't re-flatten.
type Bundle struct {
	Artifacts *Artifacts
	Tables    []RenderedTable
}

// Sink serializes one run's artifacts to some storage format.
type Sink interface {
	Name() string
	Write(ctx context.Context, bundle *Bundle) error
}

// Exporter fans a run's artifacts out to the configured sinks and writes
// the model document. Sink failures are collected, not short-circuited: a
// broken warehouse must not cost the CSV artifacts.
type Exporter struct {
	outputDir string
	sinks     []Sink
	logger    *slog.Logger
	now       func() time.Time
}

// NewExporter creates an exporter over the given sinks.
func NewExporter(logger *slog.Logger, outputDir string, sinks ...Sink) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		outputDir: outputDir,
		sinks:     sinks,
		logger:    logger.With(slog.String("component", "export")),
		now:       time.Now,
	}
}

// WithClock overrides the model document timestamp clock.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Export renders the artifacts, runs every sink, and writes the model
// document last so it reflects what was actually produced. The returned
// model document is non-nil even when some sinks failed.
func (e *Exporter) Export(ctx context.Context, artifacts *Artifacts) (*domain.ModelDoc, error) {
	bundle := &Bundle{
		Artifacts: artifacts,
		Tables:    Render(artifacts),
	}
	doc := BuildModelDoc(artifacts, bundle.Tables, e.now().UTC())

	var errs *multierror.Error
	for _, sink := range e.sinks {
		if err := sink.Write(ctx, bundle); err != nil {
			e.logger.ErrorContext(ctx, "sink failed",
				slog.String("sink", sink.Name()),
				slog.String("error", err.Error()))
			errs = multierror.Append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
			continue
		}
		e.logger.InfoContext(ctx, "sink completed", slog.String("sink", sink.Name()))
	}

	if err := WriteModelDoc(e.outputDir, doc); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("model doc: %w", err))
	}

	return doc, errs.ErrorOrNil()
}
