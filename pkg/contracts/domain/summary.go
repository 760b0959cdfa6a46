package domain

// Summary precision: every aggregated floating value is rounded to this
// many decimal places before leaving the aggregator, so downstream
// consumers can compare values byte for byte.
const SummaryPrecision = 3

// StateSummary is the per-state rollup of the source table. Yield statistics
// are nil when the group has no usable yield values; StdYield is nil for
// single-member groups, where a standard deviation is undefined.
type StateSummary struct {
	State           string   `json:"state"`
	TotalArea       float64  `json:"total_area"`
	MeanArea        float64  `json:"mean_area"`
	TotalProduction float64  `json:"total_production"`
	MeanProduction  float64  `json:"mean_production"`
	MeanYield       *float64 `json:"mean_yield"`
	StdYield        *float64 `json:"std_yield"`
	CropCount       int      `json:"crop_count"`
}

// CropSummary is the per-crop rollup of the source table.
type CropSummary struct {
	Crop            string   `json:"crop"`
	TotalArea       float64  `json:"total_area"`
	MeanArea        float64  `json:"mean_area"`
	TotalProduction float64  `json:"total_production"`
	MeanProduction  float64  `json:"mean_production"`
	MeanYield       *float64 `json:"mean_yield"`
	MaxYield        *float64 `json:"max_yield"`
	StateCount      int      `json:"state_count"`
}

// YearSummary is the per-year trend rollup of the source table.
type YearSummary struct {
	Year            int      `json:"year"`
	TotalArea       float64  `json:"total_area"`
	TotalProduction float64  `json:"total_production"`
	MeanYield       *float64 `json:"mean_yield"`
}

// Summaries bundles the three summary tables of one run.
type Summaries struct {
	States []StateSummary `json:"states"`
	Crops  []CropSummary  `json:"crops"`
	Years  []YearSummary  `json:"years"`
}
