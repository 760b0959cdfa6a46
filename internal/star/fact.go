package star

import (
	"context"
	"log/slog"

	"agriprep/pkg/contracts/domain"
)

// BuildFact left-joins the source table against the four dimensions,
// producing exactly one fact row per source row. A row whose natural key
// has no dimension entry keeps a nil surrogate identifier for that axis and
// is counted as a join mismatch; it is never dropped or duplicated. Yield
// is a pass-through from cleaning, never re-derived here.
func (b *Builder) BuildFact(ctx context.Context, source *domain.SourceTable, dims *domain.Dimensions, report *domain.StarReport) (*domain.FactTable, error) {
	fact := &domain.FactTable{
		Rows:           make([]domain.FactRow, 0, source.Len()),
		HasTemperature: source.HasColumn(domain.ColTemperature),
		HasRainfall:    source.HasColumn(domain.ColRainfall),
	}

	for _, record := range source.Records {
		row := domain.FactRow{
			District:    record.District,
			Area:        record.Area,
			Production:  record.Production,
			Yield:       record.Yield,
			Temperature: record.Temperature,
			Rainfall:    record.Rainfall,
		}
		row.StateID = b.lookup(record, dims.States, report)
		row.CropID = b.lookup(record, dims.Crops, report)
		row.SeasonID = b.lookup(record, dims.Seasons, report)
		row.DateID = b.lookup(record, dims.Dates, report)
		fact.Rows = append(fact.Rows, row)
	}

	report.FactRows = fact.Len()
	if mismatches := report.TotalMismatches(); mismatches > 0 {
		b.logger.Warn("fact build finished with unmatched join keys",
			slog.Int("fact_rows", fact.Len()),
			slog.Int("mismatches", mismatches))
	} else {
		b.logger.InfoContext(ctx, "fact build finished",
			slog.Int("fact_rows", fact.Len()))
	}

	return fact, nil
}

// lookup resolves a record's natural key in one dimension; a miss returns
// nil and bumps the axis's mismatch counter.
func (b *Builder) lookup(record domain.SourceRecord, dim *domain.Dimension, report *domain.StarReport) *int {
	if dim == nil {
		return nil
	}
	id, ok := dim.Lookup(naturalKey(record, dim.Axis))
	if !ok {
		report.JoinMismatches[string(dim.Axis)]++
		return nil
	}
	return &id
}
