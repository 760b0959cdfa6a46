package domain

import "time"

// CleaningReport is the structured result of the cleaning stage. It replaces
// ad-hoc progress printing: the caller decides whether it ends up in a log
// line, the model document, or an API response.
type CleaningReport struct {
	RowsIn            int            `json:"rows_in"`
	RowsOut           int            `json:"rows_out"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	CategoricalFills  map[string]int `json:"categorical_fills,omitempty"` // column -> cells filled with mode/Unknown
	NumericFills      map[string]int `json:"numeric_fills,omitempty"`     // column -> cells filled with median
	RowsDropped       map[string]int `json:"rows_dropped,omitempty"`      // column -> rows dropped for missing values
	Substitutions     map[string]int `json:"substitutions,omitempty"`     // column -> cells rewritten to a canonical value
	NegativesFixed    map[string]int `json:"negatives_fixed,omitempty"`   // column -> negative cells converted to absolute value
	Outliers          map[string]int `json:"outliers,omitempty"`          // column -> IQR outliers detected (never removed)
}

// NewCleaningReport returns a report with every counter map allocated.
func NewCleaningReport() *CleaningReport {
	return &CleaningReport{
		CategoricalFills: make(map[string]int),
		NumericFills:     make(map[string]int),
		RowsDropped:      make(map[string]int),
		Substitutions:    make(map[string]int),
		NegativesFixed:   make(map[string]int),
		Outliers:         make(map[string]int),
	}
}

// StarReport records how the star-schema build degraded, per the error
// policy: a missing dimension column or an unmatched join key never aborts
// the build, it is counted here instead.
type StarReport struct {
	MissingColumns []string       `json:"missing_columns,omitempty"` // axes whose source column was absent
	JoinMismatches map[string]int `json:"join_mismatches,omitempty"` // axis -> fact rows with a nil surrogate key
	FactRows       int            `json:"fact_rows"`
	DimensionSizes map[string]int `json:"dimension_sizes,omitempty"` // dimension table name -> entry count
}

// NewStarReport returns a report with the counter maps allocated.
func NewStarReport() *StarReport {
	return &StarReport{
		JoinMismatches: make(map[string]int),
		DimensionSizes: make(map[string]int),
	}
}

// TotalMismatches sums the join mismatches across all axes.
func (r *StarReport) TotalMismatches() int {
	total := 0
	for _, n := range r.JoinMismatches {
		total += n
	}
	return total
}

// SummaryReport records summary-aggregation degradations: groups that were
// empty (and therefore omitted) and rows that carried a blank group key.
type SummaryReport struct {
	StateGroups        int `json:"state_groups"`
	CropGroups         int `json:"crop_groups"`
	YearGroups         int `json:"year_groups"`
	EmptyGroupsOmitted int `json:"empty_groups_omitted"`
	BlankKeyRows       int `json:"blank_key_rows"`
}

// TableInfo describes one exported artifact: its name, row count, and exact
// column order. Downstream consumers use it to discover the model without
// re-scanning the data files.
type TableInfo struct {
	Name     string   `json:"name"`
	RowCount int      `json:"row_count"`
	Columns  []string `json:"columns"`
}

// ModelDoc is the machine-readable schema description emitted alongside the
// artifacts, including the degradation counters from every stage.
type ModelDoc struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Source      string          `json:"source,omitempty"`
	Tables      []TableInfo     `json:"tables"`
	Cleaning    *CleaningReport `json:"cleaning,omitempty"`
	Star        *StarReport     `json:"star,omitempty"`
	Summaries   *SummaryReport  `json:"summaries,omitempty"`
}

// Table returns the info entry for the named table, or nil.
func (d *ModelDoc) Table(name string) *TableInfo {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i]
		}
	}
	return nil
}
