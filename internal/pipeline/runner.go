package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"agriprep/internal/cleaning"
	"agriprep/internal/export"
	"agriprep/internal/source"
	"agriprep/internal/star"
	"agriprep/internal/summary"
	"agriprep/pkg/contracts/events"
)

// Dependencies are the stage implementations a Runner wires into steps.
type Dependencies struct {
	File       source.Provider
	HTTP       source.Provider
	Cleaner    *cleaning.Cleaner
	Builder    *star.Builder
	Aggregator *summary.Aggregator
	Exporter   *export.Exporter
}

// Runner executes preparation runs. The star-schema branch and the summary
// branch both depend only on the cleaned table, so they run concurrently;
// export waits for both.
type Runner struct {
	logger    *slog.Logger
	deps      Dependencies
	publisher Publisher
	tracer    *Tracer
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithPublisher installs a progress publisher.
func WithPublisher(p Publisher) RunnerOption {
	return func(r *Runner) {
		if p != nil {
			r.publisher = p
		}
	}
}

// WithTracer installs OpenTelemetry instrumentation.
func WithTracer(t *Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = t }
}

// NewRunner creates a runner over the given stage implementations.
func NewRunner(logger *slog.Logger, deps Dependencies, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		logger:    logger.With(slog.String("component", "pipeline")),
		deps:      deps,
		publisher: NopPublisher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Steps builds the step list for one run. sourceMode selects acquisition:
// "file" reads only the data directory, "http" only the download mirrors,
// and "auto" tries the data directory first.
func (r *Runner) Steps(sourceMode string) []Step {
	var provider source.Provider
	switch sourceMode {
	case "file":
		provider = r.deps.File
	case "http":
		provider = r.deps.HTTP
	default:
		var chain []source.Provider
		for _, p := range []source.Provider{r.deps.File, r.deps.HTTP} {
			if p != nil {
				chain = append(chain, p)
			}
		}
		provider = source.NewMultiSource(r.logger, chain...)
	}

	return []Step{
		NewFetchStep(r.logger, provider),
		NewCleanStep(r.logger, r.deps.Cleaner),
		NewDimensionsStep(r.logger, r.deps.Builder),
		NewFactStep(r.logger, r.deps.Builder),
		NewSummariesStep(r.logger, r.deps.Aggregator),
		NewExportStep(r.logger, r.deps.Exporter),
	}
}

// Execute drives a run to a terminal status. It never returns an error:
// failures end up on the run itself.
func (r *Runner) Execute(ctx context.Context, run *Run) {
	ctx, span := r.tracer.StartRun(ctx, run.ID, run.SourceMode)

	run.Start()
	r.publishRunStatus(run)
	r.logger.InfoContext(ctx, "run started",
		slog.String("run_id", run.ID),
		slog.String("source_mode", run.SourceMode))

	err := r.execute(ctx, run)
	switch {
	case err == nil:
		run.Complete()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		run.Cancel()
	default:
		run.Fail(err)
	}

	factRows := 0
	if run.StarRp != nil {
		factRows = run.StarRp.FactRows
	}
	r.tracer.EndRun(ctx, span, run.CurrentStatus(), run.Duration(), factRows)
	r.publishRunStatus(run)
	r.logger.InfoContext(ctx, "run finished",
		slog.String("run_id", run.ID),
		slog.String("status", string(run.CurrentStatus())),
		slog.Duration("duration", run.Duration()))
}

func (r *Runner) execute(ctx context.Context, run *Run) error {
	if err := r.runStep(ctx, run, StepIDFetch); err != nil {
		r.skipRemaining(run, "source acquisition failed",
			StepIDClean, StepIDDimensions, StepIDFact, StepIDSummaries, StepIDExport)
		return err
	}
	if err := r.runStep(ctx, run, StepIDClean); err != nil {
		r.skipRemaining(run, "cleaning failed",
			StepIDDimensions, StepIDFact, StepIDSummaries, StepIDExport)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.runStep(gctx, run, StepIDDimensions); err != nil {
			r.skipRemaining(run, "dimensions failed", StepIDFact)
			return err
		}
		return r.runStep(gctx, run, StepIDFact)
	})
	g.Go(func() error {
		return r.runStep(gctx, run, StepIDSummaries)
	})
	if err := g.Wait(); err != nil {
		r.skipRemaining(run, "star schema or summaries failed", StepIDExport)
		return err
	}

	return r.runStep(ctx, run, StepIDExport)
}

func (r *Runner) runStep(ctx context.Context, run *Run, id string) error {
	step := run.executable(id)
	state := run.Step(id)
	if step == nil || state == nil {
		return fmt.Errorf("unknown step %q", id)
	}
	if err := ctx.Err(); err != nil {
		state.Skip("run cancelled")
		r.publishStep(run, state)
		return err
	}

	sctx, span := r.tracer.StartStep(ctx, run.ID, id)
	state.Start()
	r.publishStep(run, state)

	err := step.Execute(sctx, run)
	if err != nil {
		state.Fail(err)
		r.logger.ErrorContext(ctx, "step failed",
			slog.String("run_id", run.ID),
			slog.String("step", id),
			slog.String("error", err.Error()))
	} else {
		state.Complete("")
	}

	r.tracer.EndStep(span, state)
	r.publishStep(run, state)
	if err != nil {
		return fmt.Errorf("step %s: %w", id, err)
	}
	return nil
}

// skipRemaining marks steps that can no longer run. Already-terminal steps
// are left alone so a concurrent branch keeps its own outcome.
func (r *Runner) skipRemaining(run *Run, reason string, ids ...string) {
	for _, id := range ids {
		state := run.Step(id)
		if state == nil {
			continue
		}
		snap := state.Snapshot()
		if snap.Status != StepStatusPending {
			continue
		}
		state.Skip(reason)
		r.publishStep(run, state)
	}
}

func (r *Runner) publishRunStatus(run *Run) {
	snap := run.Snapshot()
	update := events.RunUpdate{
		RunID:   snap.ID,
		Status:  string(snap.Status),
		Started: snap.StartTime,
		Error:   snap.Error,
	}
	if snap.EndTime != nil {
		update.Finished = *snap.EndTime
	}
	r.publisher.PublishRunUpdate(update)
}

func (r *Runner) publishStep(run *Run, state *StepState) {
	snap := state.Snapshot()
	r.publisher.PublishStepUpdate(events.StepUpdate{
		RunID:    run.ID,
		StepID:   snap.ID,
		StepName: snap.Name,
		Status:   string(snap.Status),
		Progress: snap.Progress,
		Message:  snap.Message,
		Error:    snap.Error,
	})
}
