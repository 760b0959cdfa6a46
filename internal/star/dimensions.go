package star

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "agriprep/internal/errors"
	"agriprep/pkg/contracts/domain"
)

// Builder constructs dimensions and the fact table from a cleaned source
// table. The clock is injected so the year dimension's IsCurrentYear flag
// is testable.
type Builder struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the build-time clock.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a star-schema builder.
func NewBuilder(logger *slog.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Builder{
		logger: logger.With(slog.String("component", "star")),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildDimension extracts the ordered, deduplicated dimension for one axis.
// Surrogate identifiers are assigned 1..n by order of first appearance in
// the source table, not sorted. When the axis column is absent from the
// source the dimension is empty and the returned error is a recoverable
// MissingColumnError; callers join against the empty dimension rather than
// aborting.
func (b *Builder) BuildDimension(source *domain.SourceTable, axis domain.Axis) (*domain.Dimension, error) {
	column := axis.Column()
	if !source.HasColumn(column) {
		return domain.NewDimension(axis, nil), apperrors.NewMissingColumnError(column)
	}

	seen := make(map[string]bool)
	var entries []domain.DimensionEntry
	currentYear := b.now().Year()

	for _, record := range source.Records {
		key := naturalKey(record, axis)
		if seen[key] {
			continue
		}
		seen[key] = true

		entry := domain.DimensionEntry{
			SurrogateID: len(entries) + 1,
			NaturalKey:  key,
		}
		if axis == domain.AxisYear {
			entry.Decade = fmt.Sprintf("%ds", record.Year/10*10)
			entry.IsCurrentYear = record.Year == currentYear
		}
		entries = append(entries, entry)
	}

	return domain.NewDimension(axis, entries), nil
}

// BuildDimensions builds all four dimensions concurrently and records
// missing axis columns in the report. The four builds are independent; the
// fact join must not start until every one has finished, which the errgroup
// Wait guarantees.
func (b *Builder) BuildDimensions(ctx context.Context, source *domain.SourceTable, report *domain.StarReport) (*domain.Dimensions, error) {
	dims := &domain.Dimensions{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, axis := range domain.AllAxes {
		axis := axis
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dim, err := b.BuildDimension(source, axis)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if !apperrors.IsMissingColumn(err) {
					return err
				}
				report.MissingColumns = append(report.MissingColumns, axis.Column())
				b.logger.Warn("dimension column absent, building empty dimension",
					slog.String("axis", string(axis)),
					slog.String("column", axis.Column()))
			}
			switch axis {
			case domain.AxisState:
				dims.States = dim
			case domain.AxisCrop:
				dims.Crops = dim
			case domain.AxisSeason:
				dims.Seasons = dim
			case domain.AxisYear:
				dims.Dates = dim
			}
			report.DimensionSizes[axis.TableName()] = dim.Len()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dims, nil
}

// naturalKey renders the axis value of a record as the dimension's natural
// key. Years join on their decimal string form.
func naturalKey(record domain.SourceRecord, axis domain.Axis) string {
	switch axis {
	case domain.AxisState:
		return record.State
	case domain.AxisCrop:
		return record.Crop
	case domain.AxisSeason:
		return string(record.Season)
	case domain.AxisYear:
		return strconv.Itoa(record.Year)
	default:
		return ""
	}
}
