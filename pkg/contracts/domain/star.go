package domain

// Axis identifies one of the four dimension axes of the star schema.
type Axis string

const (
	AxisState  Axis = "state"
	AxisCrop   Axis = "crop"
	AxisSeason Axis = "season"
	AxisYear   Axis = "year"
)

// AllAxes lists the dimension axes in their canonical build order.
var AllAxes = []Axis{AxisState, AxisCrop, AxisSeason, AxisYear}

// Column returns the canonical source column the axis is built from.
func (a Axis) Column() string {
	switch a {
	case AxisState:
		return ColState
	case AxisCrop:
		return ColCrop
	case AxisSeason:
		return ColSeason
	case AxisYear:
		return ColYear
	default:
		return ""
	}
}

// TableName returns the artifact name of the axis's dimension table.
func (a Axis) TableName() string {
	switch a {
	case AxisState:
		return "dim_states"
	case AxisCrop:
		return "dim_crops"
	case AxisSeason:
		return "dim_seasons"
	case AxisYear:
		return "dim_dates"
	default:
		return ""
	}
}

// DimensionEntry is one row of a dimension table: a surrogate key and the
// natural key it stands for. Surrogate IDs are dense, 1-based, and assigned
// by order of first appearance in the source table. Decade and
// IsCurrentYear are populated for the year axis only.
type DimensionEntry struct {
	SurrogateID   int    `json:"surrogate_id"`
	NaturalKey    string `json:"natural_key"`
	Decade        string `json:"decade,omitempty"`
	IsCurrentYear bool   `json:"is_current_year,omitempty"`
}

// Dimension is one complete dimension table plus a lookup index from
// natural key to surrogate ID for the fact join.
type Dimension struct {
	Axis    Axis             `json:"axis"`
	Entries []DimensionEntry `json:"entries"`

	index map[string]int
}

// NewDimension builds a Dimension from already-ordered entries.
func NewDimension(axis Axis, entries []DimensionEntry) *Dimension {
	d := &Dimension{Axis: axis, Entries: entries, index: make(map[string]int, len(entries))}
	for _, e := range entries {
		d.index[e.NaturalKey] = e.SurrogateID
	}
	return d
}

// Lookup resolves a natural key to its surrogate ID. The second return is
// false when the key has no entry, which callers treat as a join mismatch,
// not an error.
func (d *Dimension) Lookup(naturalKey string) (int, bool) {
	id, ok := d.index[naturalKey]
	return id, ok
}

// Len returns the number of dimension entries.
func (d *Dimension) Len() int {
	return len(d.Entries)
}

// Dimensions bundles the four dimension tables of one build.
type Dimensions struct {
	States  *Dimension `json:"states"`
	Crops   *Dimension `json:"crops"`
	Seasons *Dimension `json:"seasons"`
	Dates   *Dimension `json:"dates"`
}

// ByAxis returns the dimension for the given axis.
func (d *Dimensions) ByAxis(axis Axis) *Dimension {
	switch axis {
	case AxisState:
		return d.States
	case AxisCrop:
		return d.Crops
	case AxisSeason:
		return d.Seasons
	case AxisYear:
		return d.Dates
	default:
		return nil
	}
}

// FactRow is one row of the central fact table: the four surrogate keys
// plus the measures of a single SourceRecord. Surrogate key pointers are
// nil when the source row had no matching dimension entry (the left join
// keeps the row either way). FactRow is a projection of its source batch;
// it has no identity or lifecycle of its own.
type FactRow struct {
	StateID     *int     `json:"state_id"`
	CropID      *int     `json:"crop_id"`
	SeasonID    *int     `json:"season_id"`
	DateID      *int     `json:"date_id"`
	District    string   `json:"district"`
	Area        float64  `json:"area"`
	Production  float64  `json:"production"`
	Yield       *float64 `json:"yield"`
	Temperature *float64 `json:"temperature,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
}

// FactTable is the fact rows of one build together with the column
// presence of their source, which export uses to decide whether the
// environmental columns appear in the artifact.
type FactTable struct {
	Rows           []FactRow `json:"rows"`
	HasTemperature bool      `json:"has_temperature"`
	HasRainfall    bool      `json:"has_rainfall"`
}

// Len returns the number of fact rows.
func (f *FactTable) Len() int {
	return len(f.Rows)
}
