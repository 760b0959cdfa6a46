package cleaning

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriprep/internal/dataset"
	"agriprep/pkg/contracts/domain"
)

func newRawTable(rows ...[]string) *dataset.Table {
	t := dataset.NewTable(
		domain.ColState, domain.ColDistrict, domain.ColYear, domain.ColSeason,
		domain.ColCrop, domain.ColArea, domain.ColProduction,
	)
	for _, row := range rows {
		t.AppendRow(row...)
	}
	return t
}

func TestClean_CategoricalMissingFilledWithMode(t *testing.T) {
	// 2 of 10 crops missing, mode is Rice.
	var rows [][]string
	for i := 0; i < 6; i++ {
		rows = append(rows, []string{"Punjab", fmt.Sprintf("District%d", i), "2020", "Kharif", "Rice", "10", "100"})
	}
	rows = append(rows,
		[]string{"Punjab", "D6", "2020", "Kharif", "Wheat", "10", "100"},
		[]string{"Punjab", "D7", "2020", "Kharif", "Wheat", "10", "100"},
		[]string{"Punjab", "D8", "2020", "Kharif", "", "10", "100"},
		[]string{"Punjab", "D9", "2020", "Kharif", "NaN", "10", "100"},
	)

	source, report, err := New(nil, DefaultConfig()).Clean(context.Background(), newRawTable(rows...))
	require.NoError(t, err)

	assert.Equal(t, 2, report.CategoricalFills[domain.ColCrop])
	filled := 0
	for _, r := range source.Records {
		if r.District == "D8" || r.District == "D9" {
			assert.Equal(t, "Rice", r.Crop)
			filled++
		}
	}
	assert.Equal(t, 2, filled)
}

func TestClean_NumericMissingPolicy(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		missing     int
		wantDropped int
		wantFilled  int
	}{
		{name: "25% missing drops rows", total: 8, missing: 2, wantDropped: 2},
		{name: "exactly 20% missing fills with median", total: 10, missing: 2, wantFilled: 2},
		{name: "10% missing fills with median", total: 10, missing: 1, wantFilled: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows [][]string
			for i := 0; i < tt.total; i++ {
				area := "10"
				if i < tt.missing {
					area = ""
				}
				rows = append(rows, []string{"Punjab", fmt.Sprintf("D%d", i), "2020", "Rabi", "Wheat", area, "100"})
			}

			source, report, err := New(nil, DefaultConfig()).Clean(context.Background(), newRawTable(rows...))
			require.NoError(t, err)

			assert.Equal(t, tt.wantDropped, report.RowsDropped[domain.ColArea])
			assert.Equal(t, tt.wantFilled, report.NumericFills[domain.ColArea])
			assert.Equal(t, tt.total-tt.wantDropped, source.Len())
			if tt.wantFilled > 0 {
				// Median of the present values is 10.
				for _, r := range source.Records {
					assert.InDelta(t, 10.0, r.Area, 1e-9)
				}
			}
		})
	}
}

func TestClean_OutliersDetectedNotRemoved(t *testing.T) {
	var rows [][]string
	for i := 0; i < 9; i++ {
		rows = append(rows, []string{"Punjab", fmt.Sprintf("D%d", i), "2020", "Rabi", "Wheat", "10", fmt.Sprintf("%d", 100+i)})
	}
	// Production far beyond the 1.5×IQR upper bound.
	rows = append(rows, []string{"Punjab", "D9", "2020", "Rabi", "Wheat", "10", "100000"})

	source, report, err := New(nil, DefaultConfig()).Clean(context.Background(), newRawTable(rows...))
	require.NoError(t, err)

	assert.Equal(t, 10, source.Len(), "outlier detection must not drop rows")
	assert.GreaterOrEqual(t, report.Outliers[domain.ColProduction], 1)
}

func TestClean_DuplicatesRemoved(t *testing.T) {
	row := []string{"Punjab", "Amritsar", "2020", "Rabi", "Wheat", "10", "100"}
	table := newRawTable(row, row, []string{"Punjab", "Ludhiana", "2020", "Rabi", "Wheat", "10", "100"})

	source, report, err := New(nil, DefaultConfig()).Clean(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 2, source.Len())
}

func TestClean_NegativesConvertedToAbsolute(t *testing.T) {
	table := newRawTable(
		[]string{"Punjab", "Amritsar", "2020", "Rabi", "Wheat", "-10", "-100"},
	)

	source, report, err := New(nil, DefaultConfig()).Clean(context.Background(), table)
	require.NoError(t, err)
	require.Equal(t, 1, source.Len())

	assert.InDelta(t, 10, source.Records[0].Area, 1e-9)
	assert.InDelta(t, 100, source.Records[0].Production, 1e-9)
	assert.Equal(t, 1, report.NegativesFixed[domain.ColArea])
	assert.Equal(t, 1, report.NegativesFixed[domain.ColProduction])
}

func TestClean_TextNormalization(t *testing.T) {
	table := newRawTable(
		[]string{"  punjab  ", "amritsar", "2020", "kharif", "sugar cane", "10", "100"},
		[]string{"PUNJAB", "ludhiana", "2020", "whole year", "corn", "10", "100"},
		[]string{"Punjab", "patiala", "2020", "monsoon-ish", "paddy", "10", "100"},
	)

	source, _, err := New(nil, DefaultConfig()).Clean(context.Background(), table)
	require.NoError(t, err)
	require.Equal(t, 3, source.Len())

	assert.Equal(t, "Punjab", source.Records[0].State)
	assert.Equal(t, "Sugarcane", source.Records[0].Crop)
	assert.Equal(t, domain.SeasonKharif, source.Records[0].Season)
	assert.Equal(t, "Punjab", source.Records[1].State)
	assert.Equal(t, "Maize", source.Records[1].Crop)
	assert.Equal(t, domain.SeasonWholeYear, source.Records[1].Season)
	assert.Equal(t, "Rice", source.Records[2].Crop)
	assert.Equal(t, domain.SeasonUnknown, source.Records[2].Season)
}

func TestClean_YieldDerivation(t *testing.T) {
	table := newRawTable(
		[]string{"Punjab", "Amritsar", "2020", "Rabi", "Wheat", "10", "100"},
		[]string{"Punjab", "Ludhiana", "2020", "Rabi", "Wheat", "0", "100"},
	)

	source, _, err := New(nil, DefaultConfig()).Clean(context.Background(), table)
	require.NoError(t, err)
	require.Equal(t, 2, source.Len())

	require.NotNil(t, source.Records[0].Yield)
	assert.InDelta(t, 10.0, *source.Records[0].Yield, 1e-6)
	assert.Nil(t, source.Records[1].Yield, "zero area must not derive a yield")
}

func TestClean_InputTableNotMutated(t *testing.T) {
	table := newRawTable(
		[]string{"  punjab", "amritsar", "2020", "kharif", "rice", "10", "100"},
	)

	_, _, err := New(nil, DefaultConfig()).Clean(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "  punjab", table.Rows[0][0], "cleaning must work on a copy")
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"punjab", "Punjab"},
		{"UTTAR PRADESH", "Uttar Pradesh"},
		{"tamil nadu", "Tamil Nadu"},
		{"cotton(lint)", "Cotton(Lint)"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, titleCase(tt.in))
		})
	}
}

func TestStatsHelpers(t *testing.T) {
	assert.InDelta(t, 2.0, median([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 2.5, median([]float64{1, 2, 3, 4}), 1e-9)
	assert.InDelta(t, 1.75, quantile([]float64{1, 2, 3, 4}, 0.25), 1e-9)
	assert.InDelta(t, 3.25, quantile([]float64{1, 2, 3, 4}, 0.75), 1e-9)

	m, ok := mode([]string{"Rice", "Wheat", "Rice", ""})
	require.True(t, ok)
	assert.Equal(t, "Rice", m)

	_, ok = mode([]string{"", ""})
	assert.False(t, ok)
}
