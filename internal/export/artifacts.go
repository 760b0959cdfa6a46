package export

import (
	"fmt"
	"strconv"
	"time"

	"agriprep/internal/config"
	"agriprep/internal/summary"
	"agriprep/pkg/contracts/domain"
)

// Artifacts bundles everything a single pipeline run produces.
type Artifacts struct {
	Source     *domain.SourceTable
	Dimensions *domain.Dimensions
	Fact       *domain.FactTable
	Summaries  *summary.Result

	Cleaning  *domain.CleaningReport
	Star      *domain.StarReport
	SummaryRp *domain.SummaryReport
}

// RenderedTable is one artifact flattened to strings, ready for any
// row-oriented sink. Column order and names are part of the output
// contract: the model document is only schema-compatible if they are
// stable.
type RenderedTable struct {
	Name     string
	FileName string
	Headers  []string
	Rows     [][]string
}

// Render flattens every artifact into its contractual tabular form.
func Render(a *Artifacts) []RenderedTable {
	tables := []RenderedTable{
		dimensionTable(a.Dimensions.States, config.FileDimStates, "State_ID", "State_Name"),
		dimensionTable(a.Dimensions.Crops, config.FileDimCrops, "Crop_ID", "Crop_Name"),
		dimensionTable(a.Dimensions.Seasons, config.FileDimSeasons, "Season_ID", "Season_Name"),
		dateDimensionTable(a.Dimensions.Dates),
		factTable(a.Fact),
		stateSummaryTable(a.Summaries.States),
		cropSummaryTable(a.Summaries.Crops),
		yearlyTrendsTable(a.Summaries.Years),
		combinedTable(a.Source),
	}
	return tables
}

// BuildModelDoc assembles the schema description from the rendered tables
// and the stage reports.
func BuildModelDoc(a *Artifacts, tables []RenderedTable, generatedAt time.Time) *domain.ModelDoc {
	doc := &domain.ModelDoc{
		GeneratedAt: generatedAt,
		Cleaning:    a.Cleaning,
		Star:        a.Star,
		Summaries:   a.SummaryRp,
	}
	if a.Source != nil {
		doc.Source = a.Source.Provenance
	}
	for _, t := range tables {
		doc.Tables = append(doc.Tables, domain.TableInfo{
			Name:     t.Name,
			RowCount: len(t.Rows),
			Columns:  append([]string(nil), t.Headers...),
		})
	}
	return doc
}

func dimensionTable(dim *domain.Dimension, fileName, idHeader, keyHeader string) RenderedTable {
	t := RenderedTable{
		Name:     dim.Axis.TableName(),
		FileName: fileName,
		Headers:  []string{idHeader, keyHeader},
	}
	for _, e := range dim.Entries {
		t.Rows = append(t.Rows, []string{strconv.Itoa(e.SurrogateID), e.NaturalKey})
	}
	return t
}

func dateDimensionTable(dim *domain.Dimension) RenderedTable {
	t := RenderedTable{
		Name:     dim.Axis.TableName(),
		FileName: config.FileDimDates,
		Headers:  []string{"Date_ID", "Year", "Decade", "Is_Current_Year"},
	}
	for _, e := range dim.Entries {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(e.SurrogateID),
			e.NaturalKey,
			e.Decade,
			strconv.FormatBool(e.IsCurrentYear),
		})
	}
	return t
}

func factTable(fact *domain.FactTable) RenderedTable {
	headers := []string{
		"State_ID", "Crop_ID", "Season_ID", "Date_ID", "District_Name",
		"Area_Hectares", "Production_Tonnes", "Yield_Per_Hectare",
	}
	if fact.HasTemperature {
		headers = append(headers, "Temperature_Avg")
	}
	if fact.HasRainfall {
		headers = append(headers, "Rainfall_MM")
	}

	t := RenderedTable{Name: "fact_agriculture", FileName: config.FileFact, Headers: headers}
	for _, row := range fact.Rows {
		cells := []string{
			formatID(row.StateID),
			formatID(row.CropID),
			formatID(row.SeasonID),
			formatID(row.DateID),
			row.District,
			formatFloat(row.Area),
			formatFloat(row.Production),
			formatFloatPtr(row.Yield),
		}
		if fact.HasTemperature {
			cells = append(cells, formatFloatPtr(row.Temperature))
		}
		if fact.HasRainfall {
			cells = append(cells, formatFloatPtr(row.Rainfall))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func stateSummaryTable(states []domain.StateSummary) RenderedTable {
	t := RenderedTable{
		Name:     "state_summary",
		FileName: config.FileStateSummary,
		Headers: []string{
			"State_Name", "Total_Area", "Mean_Area", "Total_Production",
			"Mean_Production", "Mean_Yield", "Std_Yield", "Crop_Count",
		},
	}
	for _, s := range states {
		t.Rows = append(t.Rows, []string{
			s.State,
			formatFloat(s.TotalArea),
			formatFloat(s.MeanArea),
			formatFloat(s.TotalProduction),
			formatFloat(s.MeanProduction),
			formatFloatPtr(s.MeanYield),
			formatFloatPtr(s.StdYield),
			strconv.Itoa(s.CropCount),
		})
	}
	return t
}

func cropSummaryTable(crops []domain.CropSummary) RenderedTable {
	t := RenderedTable{
		Name:     "crop_summary",
		FileName: config.FileCropSummary,
		Headers: []string{
			"Crop_Name", "Total_Area", "Mean_Area", "Total_Production",
			"Mean_Production", "Mean_Yield", "Max_Yield", "State_Count",
		},
	}
	for _, c := range crops {
		t.Rows = append(t.Rows, []string{
			c.Crop,
			formatFloat(c.TotalArea),
			formatFloat(c.MeanArea),
			formatFloat(c.TotalProduction),
			formatFloat(c.MeanProduction),
			formatFloatPtr(c.MeanYield),
			formatFloatPtr(c.MaxYield),
			strconv.Itoa(c.StateCount),
		})
	}
	return t
}

func yearlyTrendsTable(years []domain.YearSummary) RenderedTable {
	t := RenderedTable{
		Name:     "yearly_trends",
		FileName: config.FileYearlyTrends,
		Headers:  []string{"Year", "Total_Area", "Total_Production", "Mean_Yield"},
	}
	for _, y := range years {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(y.Year),
			formatFloat(y.TotalArea),
			formatFloat(y.TotalProduction),
			formatFloatPtr(y.MeanYield),
		})
	}
	return t
}

// combinedTable renders the full cleaned dataset with the derived yield,
// the single flat file some consumers load instead of the star schema.
func combinedTable(source *domain.SourceTable) RenderedTable {
	headers := append([]string(nil), source.Columns...)
	headers = append(headers, domain.ColYield)

	t := RenderedTable{
		Name:     "agriculture_data_powerbi",
		FileName: config.FileCombined,
		Headers:  headers,
	}
	for _, r := range source.Records {
		var cells []string
		for _, col := range source.Columns {
			switch col {
			case domain.ColState:
				cells = append(cells, r.State)
			case domain.ColDistrict:
				cells = append(cells, r.District)
			case domain.ColYear:
				cells = append(cells, strconv.Itoa(r.Year))
			case domain.ColSeason:
				cells = append(cells, string(r.Season))
			case domain.ColCrop:
				cells = append(cells, r.Crop)
			case domain.ColArea:
				cells = append(cells, formatFloat(r.Area))
			case domain.ColProduction:
				cells = append(cells, formatFloat(r.Production))
			case domain.ColTemperature:
				cells = append(cells, formatFloatPtr(r.Temperature))
			case domain.ColRainfall:
				cells = append(cells, formatFloatPtr(r.Rainfall))
			default:
				cells = append(cells, "")
			}
		}
		cells = append(cells, formatFloatPtr(r.Yield))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// formatFloat renders a measure with the documented fixed three-decimal
// precision.
func formatFloat(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// formatFloatPtr renders an optional measure; nil stays an empty cell.
func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// formatID renders an optional surrogate key; a join mismatch stays an
// empty cell.
func formatID(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
