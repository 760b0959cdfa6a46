// Package domain contains the shared domain types for the agriprep data
// preparation pipeline. These types are the single source of truth for the
// agricultural dataset's logical schema: every loader, cleaner, builder,
// exporter, and API handler works in terms of them.
package domain

import (
	"math"
	"strings"
)

// Canonical column names of the source table contract. Loaders normalize
// whatever aliases the raw file carries into these before anything
// downstream sees the table.
const (
	ColState       = "State_Name"
	ColDistrict    = "District_Name"
	ColYear        = "Crop_Year"
	ColSeason      = "Season"
	ColCrop        = "Crop"
	ColArea        = "Area_Hectares"
	ColProduction  = "Production_Tonnes"
	ColTemperature = "Temperature_Avg"
	ColRainfall    = "Rainfall_MM"
	ColYield       = "Yield_Per_Hectare"
)

// RequiredColumns are the columns a source table must carry to be usable.
// Temperature and rainfall are optional environmental measures.
var RequiredColumns = []string{
	ColState, ColDistrict, ColYear, ColSeason, ColCrop, ColArea, ColProduction,
}

// Season is the growing season of an observation.
type Season string

const (
	SeasonKharif    Season = "Kharif"
	SeasonRabi      Season = "Rabi"
	SeasonSummer    Season = "Summer"
	SeasonWholeYear Season = "Whole Year"
	SeasonAutumn    Season = "Autumn"
	SeasonWinter    Season = "Winter"
	SeasonUnknown   Season = "Unknown"
)

// KnownSeasons lists every season the dataset is known to carry.
var KnownSeasons = []Season{
	SeasonKharif, SeasonRabi, SeasonSummer, SeasonWholeYear,
	SeasonAutumn, SeasonWinter,
}

// CanonicalSeason maps a raw season cell to its canonical value. Unmatched
// values fall back to SeasonUnknown rather than failing the row.
func CanonicalSeason(raw string) Season {
	normalized := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	switch normalized {
	case "kharif":
		return SeasonKharif
	case "rabi":
		return SeasonRabi
	case "summer":
		return SeasonSummer
	case "whole year", "wholeyear", "whole-year":
		return SeasonWholeYear
	case "autumn":
		return SeasonAutumn
	case "winter":
		return SeasonWinter
	default:
		return SeasonUnknown
	}
}

// SourceRecord is one cleaned observation of the agricultural dataset:
// a crop grown in a district during a season of a year, with the area
// planted and production harvested. Yield is derived, never parsed.
//
// Invariants, guaranteed by the cleaning stage:
//   - Area and Production are non-negative.
//   - Yield is Production/Area when Area > 0, nil when Area == 0.
//   - State, District, Crop are trimmed and title-cased.
type SourceRecord struct {
	State       string   `json:"state"`
	District    string   `json:"district"`
	Year        int      `json:"year"`
	Season      Season   `json:"season"`
	Crop        string   `json:"crop"`
	Area        float64  `json:"area"`
	Production  float64  `json:"production"`
	Yield       *float64 `json:"yield"`
	Temperature *float64 `json:"temperature,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
}

// ComputeYield derives production per hectare. It returns nil for a zero
// area so that division by zero never produces Inf in the fact table, and
// nil for non-finite inputs.
func ComputeYield(production, area float64) *float64 {
	if area == 0 {
		return nil
	}
	y := production / area
	if math.IsInf(y, 0) || math.IsNaN(y) {
		return nil
	}
	return &y
}

// SourceTable is the cleaned, typed source dataset handed to the star
// schema and summary builders. Columns records which canonical columns the
// raw source actually carried, so builders can distinguish "column absent"
// from "column present but empty".
type SourceTable struct {
	Records    []SourceRecord `json:"records"`
	Columns    []string       `json:"columns"`
	Provenance string         `json:"provenance,omitempty"`
}

// HasColumn reports whether the source carried the named canonical column.
func (t *SourceTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (t *SourceTable) Len() int {
	return len(t.Records)
}
