package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "agriprep.pipeline"

// Tracer instruments runs and steps with OpenTelemetry spans and metrics.
// A nil *Tracer is valid and records nothing.
type Tracer struct {
	tracer trace.Tracer

	runsTotal   metric.Int64Counter
	runDuration metric.Float64Histogram
	activeRuns  metric.Int64UpDownCounter
	factRows    metric.Int64Counter
}

// NewTracer creates pipeline instrumentation on the global providers.
func NewTracer() (*Tracer, error) {
	meter := otel.Meter(tracerName)

	runsTotal, err := meter.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Completed pipeline runs by status"))
	if err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}
	runDuration, err := meter.Float64Histogram("pipeline_run_duration_seconds",
		metric.WithDescription("Wall-clock duration of pipeline runs"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	activeRuns, err := meter.Int64UpDownCounter("pipeline_active_runs",
		metric.WithDescription("Pipeline runs currently executing"))
	if err != nil {
		return nil, fmt.Errorf("create active gauge: %w", err)
	}
	factRows, err := meter.Int64Counter("pipeline_fact_rows_total",
		metric.WithDescription("Fact rows produced across runs"))
	if err != nil {
		return nil, fmt.Errorf("create rows counter: %w", err)
	}

	return &Tracer{
		tracer:      otel.Tracer(tracerName),
		runsTotal:   runsTotal,
		runDuration: runDuration,
		activeRuns:  activeRuns,
		factRows:    factRows,
	}, nil
}

// StartRun opens the run span and bumps the active-run gauge.
func (t *Tracer) StartRun(ctx context.Context, runID, sourceMode string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.source_mode", sourceMode),
		),
	)
	t.activeRuns.Add(ctx, 1)
	return ctx, span
}

// EndRun records the outcome of a run and closes its span.
func (t *Tracer) EndRun(ctx context.Context, span trace.Span, status RunStatus, duration time.Duration, factRows int) {
	if t == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("status", string(status)))
	t.runsTotal.Add(ctx, 1, attrs)
	t.runDuration.Record(ctx, duration.Seconds(), attrs)
	t.activeRuns.Add(ctx, -1)
	if factRows > 0 {
		t.factRows.Add(ctx, int64(factRows))
	}

	span.SetAttributes(
		attribute.String("run.status", string(status)),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
		attribute.Int("run.fact_rows", factRows),
	)
	if status == RunStatusCompleted {
		span.SetStatus(codes.Ok, "run completed")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("run finished with status %s", status))
	}
	span.End()
}

// StartStep opens a span for one step.
func (t *Tracer) StartStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return t.tracer.Start(ctx, "pipeline.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// EndStep records the step outcome and closes its span.
func (t *Tracer) EndStep(span trace.Span, state *StepState) {
	if t == nil {
		return
	}

	snap := state.Snapshot()
	span.SetAttributes(
		attribute.String("step.status", string(snap.Status)),
		attribute.Float64("step.duration_seconds", state.Duration().Seconds()),
	)
	if snap.Status == StepStatusFailed {
		span.SetStatus(codes.Error, snap.Error)
	} else {
		span.SetStatus(codes.Ok, "step finished")
	}
	span.End()
}
