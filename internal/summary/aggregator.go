package summary

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"agriprep/pkg/contracts/domain"
)

// BlankKeyLabel is the group label used for rows whose grouping key is
// blank. Cleaning fills missing categoricals with "Unknown", so a blank key
// only appears when the column itself was absent; either way blank rows
// form their own labeled group and are never silently dropped.
const BlankKeyLabel = "(blank)"

// Aggregator computes the summary rollups from the cleaned source table.
// It reads the source directly, not the fact table, so it has no dependency
// on the dimension build.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an aggregator.
func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger.With(slog.String("component", "summary"))}
}

// Result bundles the three independent rollups of one run.
type Result struct {
	States []domain.StateSummary `json:"states"`
	Crops  []domain.CropSummary  `json:"crops"`
	Years  []domain.YearSummary  `json:"years"`
}

// Aggregate computes all three rollups and the degradation report.
func (a *Aggregator) Aggregate(ctx context.Context, source *domain.SourceTable) (*Result, *domain.SummaryReport, error) {
	report := &domain.SummaryReport{}
	result := &Result{
		States: a.ByState(source, report),
		Crops:  a.ByCrop(source, report),
		Years:  a.ByYear(source, report),
	}
	report.StateGroups = len(result.States)
	report.CropGroups = len(result.Crops)
	report.YearGroups = len(result.Years)

	a.logger.InfoContext(ctx, "summaries computed",
		slog.Int("state_groups", report.StateGroups),
		slog.Int("crop_groups", report.CropGroups),
		slog.Int("year_groups", report.YearGroups),
		slog.Int("blank_key_rows", report.BlankKeyRows))

	return result, report, nil
}

// ByState groups by state: total/mean area, total/mean production,
// mean/standard deviation of yield, and the count of distinct crops grown.
func (a *Aggregator) ByState(source *domain.SourceTable, report *domain.SummaryReport) []domain.StateSummary {
	groups := make(map[string][]domain.SourceRecord)
	for _, r := range source.Records {
		key := r.State
		if key == "" {
			key = BlankKeyLabel
			report.BlankKeyRows++
		}
		groups[key] = append(groups[key], r)
	}

	summaries := make([]domain.StateSummary, 0, len(groups))
	for key, records := range groups {
		if len(records) == 0 {
			report.EmptyGroupsOmitted++
			continue
		}
		areas, productions, yields := measures(records)
		crops := make(map[string]bool)
		for _, r := range records {
			crops[r.Crop] = true
		}
		summaries = append(summaries, domain.StateSummary{
			State:           key,
			TotalArea:       round3(sum(areas)),
			MeanArea:        round3(mean(areas)),
			TotalProduction: round3(sum(productions)),
			MeanProduction:  round3(mean(productions)),
			MeanYield:       roundPtr(meanOf(yields)),
			StdYield:        roundPtr(sampleStd(yields)),
			CropCount:       len(crops),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].State < summaries[j].State
	})
	return summaries
}

// ByCrop groups by crop: total/mean area, total/mean production, mean/max
// yield, and the count of distinct states growing the crop.
func (a *Aggregator) ByCrop(source *domain.SourceTable, report *domain.SummaryReport) []domain.CropSummary {
	groups := make(map[string][]domain.SourceRecord)
	for _, r := range source.Records {
		key := r.Crop
		if key == "" {
			key = BlankKeyLabel
			report.BlankKeyRows++
		}
		groups[key] = append(groups[key], r)
	}

	summaries := make([]domain.CropSummary, 0, len(groups))
	for key, records := range groups {
		if len(records) == 0 {
			report.EmptyGroupsOmitted++
			continue
		}
		areas, productions, yields := measures(records)
		states := make(map[string]bool)
		for _, r := range records {
			states[r.State] = true
		}
		summaries = append(summaries, domain.CropSummary{
			Crop:            key,
			TotalArea:       round3(sum(areas)),
			MeanArea:        round3(mean(areas)),
			TotalProduction: round3(sum(productions)),
			MeanProduction:  round3(mean(productions)),
			MeanYield:       roundPtr(meanOf(yields)),
			MaxYield:        roundPtr(maxOf(yields)),
			StateCount:      len(states),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Crop < summaries[j].Crop
	})
	return summaries
}

// ByYear groups by year: total area, total production, mean yield. No
// distinct-count columns.
func (a *Aggregator) ByYear(source *domain.SourceTable, report *domain.SummaryReport) []domain.YearSummary {
	groups := make(map[int][]domain.SourceRecord)
	for _, r := range source.Records {
		groups[r.Year] = append(groups[r.Year], r)
	}

	summaries := make([]domain.YearSummary, 0, len(groups))
	for year, records := range groups {
		if len(records) == 0 {
			report.EmptyGroupsOmitted++
			continue
		}
		areas, productions, yields := measures(records)
		summaries = append(summaries, domain.YearSummary{
			Year:            year,
			TotalArea:       round3(sum(areas)),
			TotalProduction: round3(sum(productions)),
			MeanYield:       roundPtr(meanOf(yields)),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Year < summaries[j].Year
	})
	return summaries
}

// measures splits a group's records into the aggregate inputs. Nil yields
// are excluded: a yield that is undefined must not distort the mean.
func measures(records []domain.SourceRecord) (areas, productions, yields []float64) {
	for _, r := range records {
		areas = append(areas, r.Area)
		productions = append(productions, r.Production)
		if r.Yield != nil {
			yields = append(yields, *r.Yield)
		}
	}
	return areas, productions, yields
}

func sum(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return sum(vs) / float64(len(vs))
}

// meanOf returns nil for an empty slice instead of a zero mean.
func meanOf(vs []float64) *float64 {
	if len(vs) == 0 {
		return nil
	}
	m := mean(vs)
	return &m
}

// maxOf returns nil for an empty slice.
func maxOf(vs []float64) *float64 {
	if len(vs) == 0 {
		return nil
	}
	max := vs[0]
	for _, v := range vs[1:] {
		if v > max {
			max = v
		}
	}
	return &max
}

// sampleStd returns the sample standard deviation (n-1 denominator), or nil
// for groups with fewer than two values, where a standard deviation is
// undefined rather than zero.
func sampleStd(vs []float64) *float64 {
	if len(vs) < 2 {
		return nil
	}
	m := mean(vs)
	var ss float64
	for _, v := range vs {
		d := v - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(vs)-1))
	return &sd
}

// round3 rounds to the documented three-decimal presentation precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round3(*v)
	return &r
}
