package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"agriprep/internal/cleaning"
	"agriprep/internal/export"
	"agriprep/internal/source"
	"agriprep/internal/star"
	"agriprep/internal/summary"
	"agriprep/pkg/contracts/domain"
)

// Well-known step identifiers, in execution order.
const (
	StepIDFetch      = "fetch"
	StepIDClean      = "clean"
	StepIDDimensions = "dimensions"
	StepIDFact       = "fact"
	StepIDSummaries  = "summaries"
	StepIDExport     = "export"
)

// FetchStep acquires the raw table from the configured provider chain.
type FetchStep struct {
	logger   *slog.Logger
	provider source.Provider
}

// NewFetchStep creates the acquisition step.
func NewFetchStep(logger *slog.Logger, provider source.Provider) *FetchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchStep{
		logger:   logger.With(slog.String("step", StepIDFetch)),
		provider: provider,
	}
}

func (s *FetchStep) ID() string   { return StepIDFetch }
func (s *FetchStep) Name() string { return "Acquire Source Data" }

// Execute fetches the raw table and stores it on the run.
func (s *FetchStep) Execute(ctx context.Context, run *Run) error {
	table, err := s.provider.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch source table: %w", err)
	}

	run.Raw = table
	s.logger.InfoContext(ctx, "source table acquired",
		slog.String("provenance", table.Provenance),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)))
	return nil
}

// CleanStep turns the raw table into the typed, cleaned source table.
type CleanStep struct {
	logger  *slog.Logger
	cleaner *cleaning.Cleaner
}

// NewCleanStep creates the cleaning step.
func NewCleanStep(logger *slog.Logger, cleaner *cleaning.Cleaner) *CleanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanStep{
		logger:  logger.With(slog.String("step", StepIDClean)),
		cleaner: cleaner,
	}
}

func (s *CleanStep) ID() string   { return StepIDClean }
func (s *CleanStep) Name() string { return "Clean Dataset" }

// Execute cleans the raw table.
func (s *CleanStep) Execute(ctx context.Context, run *Run) error {
	if run.Raw == nil {
		return fmt.Errorf("no raw table to clean")
	}

	cleaned, report, err := s.cleaner.Clean(ctx, run.Raw)
	if err != nil {
		return fmt.Errorf("clean table: %w", err)
	}

	run.Source = cleaned
	run.CleaningRp = report
	s.logger.InfoContext(ctx, "dataset cleaned",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("duplicates_removed", report.DuplicatesRemoved))
	return nil
}

// DimensionsStep builds the four dimension tables from the cleaned source.
type DimensionsStep struct {
	logger  *slog.Logger
	builder *star.Builder
}

// NewDimensionsStep creates the dimension-build step.
func NewDimensionsStep(logger *slog.Logger, builder *star.Builder) *DimensionsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DimensionsStep{
		logger:  logger.With(slog.String("step", StepIDDimensions)),
		builder: builder,
	}
}

func (s *DimensionsStep) ID() string   { return StepIDDimensions }
func (s *DimensionsStep) Name() string { return "Build Dimensions" }

// Execute builds the dimensions and starts the star report the fact step
// continues filling.
func (s *DimensionsStep) Execute(ctx context.Context, run *Run) error {
	if run.Source == nil {
		return fmt.Errorf("no cleaned table to build dimensions from")
	}

	report := domain.NewStarReport()
	dims, err := s.builder.BuildDimensions(ctx, run.Source, report)
	if err != nil {
		return fmt.Errorf("build dimensions: %w", err)
	}

	run.Dimensions = dims
	run.StarRp = report
	s.logger.InfoContext(ctx, "dimensions built",
		slog.Int("states", len(dims.States.Entries)),
		slog.Int("crops", len(dims.Crops.Entries)),
		slog.Int("seasons", len(dims.Seasons.Entries)),
		slog.Int("years", len(dims.Dates.Entries)))
	return nil
}

// FactStep joins the cleaned source against the dimensions.
type FactStep struct {
	logger  *slog.Logger
	builder *star.Builder
}

// NewFactStep creates the fact-build step.
func NewFactStep(logger *slog.Logger, builder *star.Builder) *FactStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FactStep{
		logger:  logger.With(slog.String("step", StepIDFact)),
		builder: builder,
	}
}

func (s *FactStep) ID() string   { return StepIDFact }
func (s *FactStep) Name() string { return "Build Fact Table" }

// Execute builds the fact table.
func (s *FactStep) Execute(ctx context.Context, run *Run) error {
	if run.Source == nil || run.Dimensions == nil || run.StarRp == nil {
		return fmt.Errorf("dimensions must be built before the fact table")
	}

	fact, err := s.builder.BuildFact(ctx, run.Source, run.Dimensions, run.StarRp)
	if err != nil {
		return fmt.Errorf("build fact table: %w", err)
	}

	run.Fact = fact
	s.logger.InfoContext(ctx, "fact table built",
		slog.Int("rows", len(fact.Rows)),
		slog.Int("join_mismatches", run.StarRp.TotalMismatches()))
	return nil
}

// SummariesStep computes the state, crop, and yearly aggregates. It only
// needs the cleaned source, so the runner executes it alongside the
// star-schema steps.
type SummariesStep struct {
	logger     *slog.Logger
	aggregator *summary.Aggregator
}

// NewSummariesStep creates the aggregation step.
func NewSummariesStep(logger *slog.Logger, aggregator *summary.Aggregator) *SummariesStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummariesStep{
		logger:     logger.With(slog.String("step", StepIDSummaries)),
		aggregator: aggregator,
	}
}

func (s *SummariesStep) ID() string   { return StepIDSummaries }
func (s *SummariesStep) Name() string { return "Compute Summaries" }

// Execute aggregates the cleaned source.
func (s *SummariesStep) Execute(ctx context.Context, run *Run) error {
	if run.Source == nil {
		return fmt.Errorf("no cleaned table to summarize")
	}

	result, report, err := s.aggregator.Aggregate(ctx, run.Source)
	if err != nil {
		return fmt.Errorf("compute summaries: %w", err)
	}

	run.Summaries = result
	run.SummaryRp = report
	s.logger.InfoContext(ctx, "summaries computed",
		slog.Int("state_groups", report.StateGroups),
		slog.Int("crop_groups", report.CropGroups),
		slog.Int("year_groups", report.YearGroups))
	return nil
}

// ExportStep writes every artifact through the configured sinks and the
// model document last.
type ExportStep struct {
	logger   *slog.Logger
	exporter *export.Exporter
}

// NewExportStep creates the export step.
func NewExportStep(logger *slog.Logger, exporter *export.Exporter) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStep{
		logger:   logger.With(slog.String("step", StepIDExport)),
		exporter: exporter,
	}
}

func (s *ExportStep) ID() string   { return StepIDExport }
func (s *ExportStep) Name() string { return "Export Artifacts" }

// Execute writes the artifacts. The model document survives partial sink
// failures, so it is stored on the run before the error is reported.
func (s *ExportStep) Execute(ctx context.Context, run *Run) error {
	if run.Fact == nil || run.Summaries == nil {
		return fmt.Errorf("fact table and summaries must exist before export")
	}

	doc, err := s.exporter.Export(ctx, &export.Artifacts{
		Source:     run.Source,
		Dimensions: run.Dimensions,
		Fact:       run.Fact,
		Summaries:  run.Summaries,
		Cleaning:   run.CleaningRp,
		Star:       run.StarRp,
		SummaryRp:  run.SummaryRp,
	})
	if doc != nil {
		run.StoreDoc(doc)
	}
	if err != nil {
		return fmt.Errorf("export artifacts: %w", err)
	}

	s.logger.InfoContext(ctx, "artifacts exported",
		slog.Int("tables", len(doc.Tables)))
	return nil
}
