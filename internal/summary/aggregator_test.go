package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriprep/pkg/contracts/domain"
)

func record(state, crop string, year int, area, production float64) domain.SourceRecord {
	return domain.SourceRecord{
		State:      state,
		District:   "D",
		Year:       year,
		Season:     domain.SeasonKharif,
		Crop:       crop,
		Area:       area,
		Production: production,
		Yield:      domain.ComputeYield(production, area),
	}
}

func sourceOf(records ...domain.SourceRecord) *domain.SourceTable {
	return &domain.SourceTable{Columns: domain.RequiredColumns, Records: records}
}

func TestByState_ReferenceExample(t *testing.T) {
	// States [A,A,B], areas [10,20,30], productions [100,200,150].
	source := sourceOf(
		record("A", "Rice", 2020, 10, 100),
		record("A", "Wheat", 2020, 20, 200),
		record("B", "Rice", 2020, 30, 150),
	)

	report := &domain.SummaryReport{}
	states := New(nil).ByState(source, report)
	require.Len(t, states, 2)

	a := states[0]
	assert.Equal(t, "A", a.State)
	assert.InDelta(t, 30, a.TotalArea, 1e-9)
	assert.InDelta(t, 15, a.MeanArea, 1e-9)
	assert.InDelta(t, 300, a.TotalProduction, 1e-9)
	assert.InDelta(t, 150, a.MeanProduction, 1e-9)
	assert.Equal(t, 2, a.CropCount)

	b := states[1]
	assert.Equal(t, "B", b.State)
	assert.InDelta(t, 30, b.TotalArea, 1e-9)
	assert.InDelta(t, 150, b.TotalProduction, 1e-9)
	assert.Equal(t, 1, b.CropCount)
}

func TestByState_SingletonStdYieldIsNil(t *testing.T) {
	source := sourceOf(
		record("A", "Rice", 2020, 10, 100),
		record("A", "Rice", 2020, 20, 100),
		record("B", "Rice", 2020, 30, 150),
	)

	report := &domain.SummaryReport{}
	states := New(nil).ByState(source, report)
	require.Len(t, states, 2)

	require.NotNil(t, states[0].StdYield, "two-member group has a standard deviation")
	assert.Nil(t, states[1].StdYield, "singleton group's standard deviation is undefined")
}

func TestByState_NilYieldsExcludedFromMean(t *testing.T) {
	zeroArea := record("A", "Rice", 2020, 0, 100)
	require.Nil(t, zeroArea.Yield)
	source := sourceOf(
		zeroArea,
		record("A", "Rice", 2020, 10, 100),
	)

	report := &domain.SummaryReport{}
	states := New(nil).ByState(source, report)
	require.Len(t, states, 1)

	require.NotNil(t, states[0].MeanYield)
	assert.InDelta(t, 10.0, *states[0].MeanYield, 1e-9)
}

func TestByState_AllYieldsNil(t *testing.T) {
	source := sourceOf(record("A", "Rice", 2020, 0, 100))

	report := &domain.SummaryReport{}
	states := New(nil).ByState(source, report)
	require.Len(t, states, 1)
	assert.Nil(t, states[0].MeanYield)
	assert.Nil(t, states[0].StdYield)
}

func TestByCrop(t *testing.T) {
	source := sourceOf(
		record("A", "Rice", 2020, 10, 100),
		record("B", "Rice", 2020, 20, 400),
		record("A", "Wheat", 2020, 10, 50),
	)

	report := &domain.SummaryReport{}
	crops := New(nil).ByCrop(source, report)
	require.Len(t, crops, 2)

	rice := crops[0]
	assert.Equal(t, "Rice", rice.Crop)
	assert.InDelta(t, 30, rice.TotalArea, 1e-9)
	assert.Equal(t, 2, rice.StateCount)
	require.NotNil(t, rice.MaxYield)
	assert.InDelta(t, 20.0, *rice.MaxYield, 1e-9)

	wheat := crops[1]
	assert.Equal(t, "Wheat", wheat.Crop)
	assert.Equal(t, 1, wheat.StateCount)
}

func TestByYear_SortedAscending(t *testing.T) {
	source := sourceOf(
		record("A", "Rice", 2022, 10, 100),
		record("A", "Rice", 2020, 20, 200),
		record("A", "Rice", 2021, 30, 300),
	)

	report := &domain.SummaryReport{}
	years := New(nil).ByYear(source, report)
	require.Len(t, years, 3)
	assert.Equal(t, 2020, years[0].Year)
	assert.Equal(t, 2021, years[1].Year)
	assert.Equal(t, 2022, years[2].Year)
	assert.InDelta(t, 20, years[0].TotalArea, 1e-9)
}

func TestBlankKeyFormsOwnGroup(t *testing.T) {
	source := sourceOf(
		record("", "Rice", 2020, 10, 100),
		record("A", "Rice", 2020, 20, 200),
	)

	report := &domain.SummaryReport{}
	states := New(nil).ByState(source, report)
	require.Len(t, states, 2)

	assert.Equal(t, BlankKeyLabel, states[0].State)
	assert.Equal(t, 1, report.BlankKeyRows)
}

func TestAggregate_RoundingToThreeDecimals(t *testing.T) {
	source := sourceOf(
		record("A", "Rice", 2020, 3, 10), // yield 3.3333...
	)

	result, _, err := New(nil).Aggregate(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, result.States, 1)
	require.NotNil(t, result.States[0].MeanYield)
	assert.Equal(t, 3.333, *result.States[0].MeanYield)
}

func TestAggregate_ReportCounts(t *testing.T) {
	source := sourceOf(
		record("A", "Rice", 2020, 10, 100),
		record("B", "Wheat", 2021, 20, 200),
	)

	result, report, err := New(nil).Aggregate(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, len(result.States), report.StateGroups)
	assert.Equal(t, len(result.Crops), report.CropGroups)
	assert.Equal(t, len(result.Years), report.YearGroups)
	assert.Equal(t, 0, report.EmptyGroupsOmitted)
}

func TestSampleStd(t *testing.T) {
	sd := sampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NotNil(t, sd)
	assert.InDelta(t, 2.138, *sd, 1e-3)

	assert.Nil(t, sampleStd([]float64{5}))
	assert.Nil(t, sampleStd(nil))
}
