package star

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriprep/pkg/contracts/domain"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC)
	}
}

func testSource() *domain.SourceTable {
	yield := func(p, a float64) *float64 { return domain.ComputeYield(p, a) }
	return &domain.SourceTable{
		Columns: domain.RequiredColumns,
		Records: []domain.SourceRecord{
			{State: "Punjab", District: "Amritsar", Year: 2020, Season: domain.SeasonKharif, Crop: "Rice", Area: 10, Production: 100, Yield: yield(100, 10)},
			{State: "Punjab", District: "Ludhiana", Year: 2021, Season: domain.SeasonRabi, Crop: "Wheat", Area: 20, Production: 200, Yield: yield(200, 20)},
			{State: "Kerala", District: "Idukki", Year: 2020, Season: domain.SeasonKharif, Crop: "Rice", Area: 30, Production: 150, Yield: yield(150, 30)},
			{State: "Assam", District: "Jorhat", Year: 2022, Season: domain.SeasonSummer, Crop: "Tea", Area: 5, Production: 50, Yield: yield(50, 5)},
		},
	}
}

func TestBuildDimension_FirstSeenOrder(t *testing.T) {
	builder := NewBuilder(nil, WithClock(fixedClock(2022)))

	dim, err := builder.BuildDimension(testSource(), domain.AxisState)
	require.NoError(t, err)

	require.Equal(t, 3, dim.Len())
	assert.Equal(t, "Punjab", dim.Entries[0].NaturalKey)
	assert.Equal(t, "Kerala", dim.Entries[1].NaturalKey)
	assert.Equal(t, "Assam", dim.Entries[2].NaturalKey)
	for i, entry := range dim.Entries {
		assert.Equal(t, i+1, entry.SurrogateID, "surrogate IDs must be dense and 1-based")
	}
}

func TestBuildDimension_UniqueNaturalKeys(t *testing.T) {
	builder := NewBuilder(nil)

	for _, axis := range domain.AllAxes {
		dim, err := builder.BuildDimension(testSource(), axis)
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, entry := range dim.Entries {
			assert.False(t, seen[entry.NaturalKey], "duplicate natural key %q in %s", entry.NaturalKey, axis)
			seen[entry.NaturalKey] = true
		}
	}
}

func TestBuildDimension_YearDerivations(t *testing.T) {
	builder := NewBuilder(nil, WithClock(fixedClock(2022)))

	dim, err := builder.BuildDimension(testSource(), domain.AxisYear)
	require.NoError(t, err)
	require.Equal(t, 3, dim.Len())

	byYear := make(map[string]domain.DimensionEntry)
	for _, entry := range dim.Entries {
		byYear[entry.NaturalKey] = entry
	}

	assert.Equal(t, "2020s", byYear["2020"].Decade)
	assert.Equal(t, "2020s", byYear["2021"].Decade)
	assert.False(t, byYear["2020"].IsCurrentYear)
	assert.True(t, byYear["2022"].IsCurrentYear)
}

func TestBuildDimension_MissingColumn(t *testing.T) {
	builder := NewBuilder(nil)
	source := &domain.SourceTable{
		Columns: []string{domain.ColState, domain.ColArea, domain.ColProduction},
		Records: testSource().Records,
	}

	dim, err := builder.BuildDimension(source, domain.AxisCrop)
	require.Error(t, err)
	assert.Equal(t, 0, dim.Len(), "missing column yields an empty dimension, not a failure")
}

func TestBuildDimensions_ReportsMissingColumns(t *testing.T) {
	builder := NewBuilder(nil)
	source := &domain.SourceTable{
		Columns: []string{domain.ColState, domain.ColYear, domain.ColArea, domain.ColProduction},
		Records: testSource().Records,
	}
	report := domain.NewStarReport()

	dims, err := builder.BuildDimensions(context.Background(), source, report)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{domain.ColCrop, domain.ColSeason}, report.MissingColumns)
	assert.Equal(t, 0, dims.Crops.Len())
	assert.Equal(t, 0, dims.Seasons.Len())
	assert.Equal(t, 3, dims.States.Len())
}

func TestBuildDimensions_CancelledContext(t *testing.T) {
	builder := NewBuilder(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dims, err := builder.BuildDimensions(ctx, testSource(), domain.NewStarReport())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, dims)
}

func TestBuildFact_RowCountInvariant(t *testing.T) {
	builder := NewBuilder(nil)
	source := testSource()
	report := domain.NewStarReport()

	dims, err := builder.BuildDimensions(context.Background(), source, report)
	require.NoError(t, err)

	fact, err := builder.BuildFact(context.Background(), source, dims, report)
	require.NoError(t, err)

	assert.Equal(t, source.Len(), fact.Len(), "left join must keep every source row")
	assert.Equal(t, 0, report.TotalMismatches())
}

func TestBuildFact_UnmatchedKeysKeepRow(t *testing.T) {
	builder := NewBuilder(nil)
	source := testSource()
	report := domain.NewStarReport()

	dims, err := builder.BuildDimensions(context.Background(), source, report)
	require.NoError(t, err)

	// A row whose state was never seen by the dimension build.
	source.Records = append(source.Records, domain.SourceRecord{
		State: "Atlantis", District: "Nowhere", Year: 2020,
		Season: domain.SeasonKharif, Crop: "Rice", Area: 1, Production: 2,
	})

	fact, err := builder.BuildFact(context.Background(), source, dims, report)
	require.NoError(t, err)

	require.Equal(t, source.Len(), fact.Len())
	last := fact.Rows[len(fact.Rows)-1]
	assert.Nil(t, last.StateID)
	require.NotNil(t, last.CropID)
	assert.Equal(t, 1, report.JoinMismatches[string(domain.AxisState)])
}

func TestBuildFact_RoundTripRecoversNaturalKeys(t *testing.T) {
	builder := NewBuilder(nil)
	source := testSource()
	report := domain.NewStarReport()

	dims, err := builder.BuildDimensions(context.Background(), source, report)
	require.NoError(t, err)
	fact, err := builder.BuildFact(context.Background(), source, dims, report)
	require.NoError(t, err)

	for i, row := range fact.Rows {
		record := source.Records[i]
		require.NotNil(t, row.StateID)
		assert.Equal(t, record.State, dims.States.Entries[*row.StateID-1].NaturalKey)
		require.NotNil(t, row.CropID)
		assert.Equal(t, record.Crop, dims.Crops.Entries[*row.CropID-1].NaturalKey)
		require.NotNil(t, row.SeasonID)
		assert.Equal(t, string(record.Season), dims.Seasons.Entries[*row.SeasonID-1].NaturalKey)
		require.NotNil(t, row.DateID)
		assert.Equal(t, strconv.Itoa(record.Year), dims.Dates.Entries[*row.DateID-1].NaturalKey)
	}
}

func TestBuild_Idempotence(t *testing.T) {
	builder := NewBuilder(nil, WithClock(fixedClock(2022)))
	source := testSource()

	report1 := domain.NewStarReport()
	dims1, err := builder.BuildDimensions(context.Background(), source, report1)
	require.NoError(t, err)
	fact1, err := builder.BuildFact(context.Background(), source, dims1, report1)
	require.NoError(t, err)

	report2 := domain.NewStarReport()
	dims2, err := builder.BuildDimensions(context.Background(), source, report2)
	require.NoError(t, err)
	fact2, err := builder.BuildFact(context.Background(), source, dims2, report2)
	require.NoError(t, err)

	assert.Equal(t, dims1.States.Entries, dims2.States.Entries)
	assert.Equal(t, dims1.Crops.Entries, dims2.Crops.Entries)
	assert.Equal(t, dims1.Seasons.Entries, dims2.Seasons.Entries)
	assert.Equal(t, dims1.Dates.Entries, dims2.Dates.Entries)
	assert.Equal(t, fact1.Rows, fact2.Rows)
}

func TestBuildFact_YieldPassThrough(t *testing.T) {
	builder := NewBuilder(nil)
	source := testSource()
	source.Records[0].Area = 0
	source.Records[0].Yield = nil
	report := domain.NewStarReport()

	dims, err := builder.BuildDimensions(context.Background(), source, report)
	require.NoError(t, err)
	fact, err := builder.BuildFact(context.Background(), source, dims, report)
	require.NoError(t, err)

	assert.Nil(t, fact.Rows[0].Yield, "a nil yield must stay nil through the fact build")
	require.NotNil(t, fact.Rows[1].Yield)
	assert.InDelta(t, 10.0, *fact.Rows[1].Yield, 1e-6)
}
