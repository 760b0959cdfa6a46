package dataset

import (
	"strings"

	"agriprep/pkg/contracts/domain"
)

// columnAliases maps lowercased raw header names to the canonical column
// names of the source contract. Published copies of the dataset disagree on
// header spelling, so everything funnels through this table at load time.
var columnAliases = map[string]string{
	"state_name":      domain.ColState,
	"state":           domain.ColState,
	"district_name":   domain.ColDistrict,
	"district":        domain.ColDistrict,
	"crop_year":       domain.ColYear,
	"year":            domain.ColYear,
	"season":          domain.ColSeason,
	"crop":            domain.ColCrop,
	"area_hectares":   domain.ColArea,
	"area":            domain.ColArea,
	"production_tonnes": domain.ColProduction,
	"production":      domain.ColProduction,
	"temperature_avg": domain.ColTemperature,
	"temp_avg":        domain.ColTemperature,
	"temperature":     domain.ColTemperature,
	"rainfall_mm":     domain.ColRainfall,
	"rainfall":        domain.ColRainfall,
	"annual_rainfall": domain.ColRainfall,
	"yield_per_hectare": domain.ColYield,
	"yield":           domain.ColYield,
}

// CanonicalColumn resolves a raw header to its canonical name. Headers with
// no alias entry are returned trimmed but otherwise unchanged, so unknown
// extra columns pass through rather than disappearing.
func CanonicalColumn(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	if canonical, ok := columnAliases[key]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// NormalizeColumns rewrites the table header in place to canonical column
// names. When two raw headers collapse onto the same canonical name the
// first wins and later ones keep their raw name.
func NormalizeColumns(t *Table) {
	seen := make(map[string]bool, len(t.Columns))
	for i, raw := range t.Columns {
		canonical := CanonicalColumn(raw)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		t.Columns[i] = canonical
	}
}

// MissingRequired returns the canonical required columns the table lacks.
func MissingRequired(t *Table) []string {
	var missing []string
	for _, col := range domain.RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}
