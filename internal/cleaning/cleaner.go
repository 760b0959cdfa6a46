package cleaning

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"agriprep/internal/dataset"
	"agriprep/pkg/contracts/domain"
)

// categoricalColumns are the text columns subject to trim/title-case and
// mode filling.
var categoricalColumns = []string{
	domain.ColState, domain.ColDistrict, domain.ColSeason, domain.ColCrop,
}

// numericColumns are the columns subject to the median-fill/drop policy and
// the negative-value fix.
var numericColumns = []string{
	domain.ColYear, domain.ColArea, domain.ColProduction,
	domain.ColTemperature, domain.ColRainfall,
}

// Cleaner applies the cleaning pipeline to a raw table.
type Cleaner struct {
	logger *slog.Logger
	cfg    Config
}

// New creates a cleaner with the given policy.
func New(logger *slog.Logger, cfg Config) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaning")),
		cfg:    cfg.normalize(),
	}
}

// Clean runs the full cleaning pipeline over a raw table and returns the
// typed source table plus a report of everything that was changed. The
// input table is not modified, so cleaning the same table twice yields
// identical output.
func (c *Cleaner) Clean(ctx context.Context, t *dataset.Table) (*domain.SourceTable, *domain.CleaningReport, error) {
	report := domain.NewCleaningReport()
	report.RowsIn = t.Len()

	work := cloneTable(t)

	c.normalizeCategoricals(work, report)
	c.fillCategoricals(work, report)
	work = c.resolveNumericMissing(work, report)
	c.fixNegatives(work, report)
	work = dedupe(work, report)

	source := c.typedTable(work)
	c.detectOutliers(source, report)
	report.RowsOut = source.Len()

	c.logger.InfoContext(ctx, "cleaning complete",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("duplicates_removed", report.DuplicatesRemoved))

	return source, report, nil
}

// normalizeCategoricals trims and title-cases the text columns, blanks the
// literal missing markers, canonicalizes seasons, and applies the crop
// alias substitutions.
func (c *Cleaner) normalizeCategoricals(t *dataset.Table, report *domain.CleaningReport) {
	for _, col := range categoricalColumns {
		if !t.HasColumn(col) {
			continue
		}
		for row := 0; row < t.Len(); row++ {
			raw := strings.TrimSpace(t.Cell(row, col))
			if isMissingMarker(raw) {
				t.SetCell(row, col, "")
				continue
			}
			value := titleCase(raw)
			switch col {
			case domain.ColSeason:
				canonical := string(domain.CanonicalSeason(raw))
				if canonical != value {
					report.Substitutions[col]++
				}
				value = canonical
			case domain.ColCrop:
				if alias, ok := c.cfg.CropAliases[value]; ok && alias != value {
					report.Substitutions[col]++
					value = alias
				}
			}
			t.SetCell(row, col, value)
		}
	}
}

// fillCategoricals replaces blank categorical cells with the column mode,
// falling back to the literal "Unknown" when the column has no mode at all.
func (c *Cleaner) fillCategoricals(t *dataset.Table, report *domain.CleaningReport) {
	for _, col := range categoricalColumns {
		if !t.HasColumn(col) {
			continue
		}
		fill, ok := mode(t.Column(col))
		if !ok {
			fill = "Unknown"
		}
		for row := 0; row < t.Len(); row++ {
			if t.Cell(row, col) == "" {
				t.SetCell(row, col, fill)
				report.CategoricalFills[col]++
			}
		}
	}
}

// resolveNumericMissing applies the single missing-value policy to each
// numeric column: fill with the median when the column's missing ratio is
// at most the threshold (boundary inclusive), drop the affected rows above
// it.
func (c *Cleaner) resolveNumericMissing(t *dataset.Table, report *domain.CleaningReport) *dataset.Table {
	const boundaryTolerance = 1e-9

	for _, col := range numericColumns {
		if !t.HasColumn(col) || t.Len() == 0 {
			continue
		}

		var present []float64
		missing := 0
		for row := 0; row < t.Len(); row++ {
			if v, ok := parseNumeric(t.Cell(row, col)); ok {
				present = append(present, v)
			} else {
				missing++
			}
		}
		if missing == 0 {
			continue
		}

		ratio := float64(missing) / float64(t.Len())
		if ratio <= c.cfg.MissingRatioThreshold+boundaryTolerance && len(present) > 0 {
			fill := formatNumeric(col, median(present))
			for row := 0; row < t.Len(); row++ {
				if _, ok := parseNumeric(t.Cell(row, col)); !ok {
					t.SetCell(row, col, fill)
					report.NumericFills[col]++
				}
			}
			continue
		}

		before := t.Len()
		src, column := t, col
		t = src.Filter(func(row int) bool {
			_, ok := parseNumeric(src.Cell(row, column))
			return ok
		})
		report.RowsDropped[col] += before - t.Len()
	}
	return t
}

// fixNegatives converts negative numeric cells to their absolute value.
// Negative areas and productions are recording artefacts, not data to drop.
func (c *Cleaner) fixNegatives(t *dataset.Table, report *domain.CleaningReport) {
	for _, col := range numericColumns {
		if !t.HasColumn(col) {
			continue
		}
		for row := 0; row < t.Len(); row++ {
			v, ok := parseNumeric(t.Cell(row, col))
			if !ok || v >= 0 {
				continue
			}
			t.SetCell(row, col, formatNumeric(col, math.Abs(v)))
			report.NegativesFixed[col]++
		}
	}
}

// dedupe removes exact duplicate rows, keeping the first occurrence.
func dedupe(t *dataset.Table, report *domain.CleaningReport) *dataset.Table {
	seen := make(map[string]bool, t.Len())
	out := t.Filter(func(row int) bool {
		key := rowKey(t, row)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	report.DuplicatesRemoved = t.Len() - out.Len()
	return out
}

// typedTable parses the cleaned string table into SourceRecords and derives
// yield.
func (c *Cleaner) typedTable(t *dataset.Table) *domain.SourceTable {
	var columns []string
	for _, col := range append(append([]string{}, domain.RequiredColumns...), domain.ColTemperature, domain.ColRainfall) {
		if t.HasColumn(col) {
			columns = append(columns, col)
		}
	}

	source := &domain.SourceTable{
		Columns:    columns,
		Provenance: t.Provenance,
		Records:    make([]domain.SourceRecord, 0, t.Len()),
	}

	for row := 0; row < t.Len(); row++ {
		record := domain.SourceRecord{
			State:    t.Cell(row, domain.ColState),
			District: t.Cell(row, domain.ColDistrict),
			Season:   domain.CanonicalSeason(t.Cell(row, domain.ColSeason)),
			Crop:     t.Cell(row, domain.ColCrop),
		}
		if v, ok := parseNumeric(t.Cell(row, domain.ColYear)); ok {
			record.Year = int(math.Round(v))
		}
		if v, ok := parseNumeric(t.Cell(row, domain.ColArea)); ok {
			record.Area = v
		}
		if v, ok := parseNumeric(t.Cell(row, domain.ColProduction)); ok {
			record.Production = v
		}
		if t.HasColumn(domain.ColTemperature) {
			if v, ok := parseNumeric(t.Cell(row, domain.ColTemperature)); ok {
				record.Temperature = &v
			}
		}
		if t.HasColumn(domain.ColRainfall) {
			if v, ok := parseNumeric(t.Cell(row, domain.ColRainfall)); ok {
				record.Rainfall = &v
			}
		}
		record.Yield = domain.ComputeYield(record.Production, record.Area)
		source.Records = append(source.Records, record)
	}
	return source
}

// detectOutliers counts values outside the IQR bounds for the measure
// columns. Outliers are reported, never removed: extreme harvests are
// domain variation, not noise.
func (c *Cleaner) detectOutliers(source *domain.SourceTable, report *domain.CleaningReport) {
	measures := map[string][]float64{
		domain.ColArea:       nil,
		domain.ColProduction: nil,
		domain.ColYield:      nil,
	}
	for _, r := range source.Records {
		measures[domain.ColArea] = append(measures[domain.ColArea], r.Area)
		measures[domain.ColProduction] = append(measures[domain.ColProduction], r.Production)
		if r.Yield != nil {
			measures[domain.ColYield] = append(measures[domain.ColYield], *r.Yield)
		}
	}

	for col, values := range measures {
		if len(values) < 4 {
			continue
		}
		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		lower := q1 - c.cfg.IQRMultiplier*iqr
		upper := q3 + c.cfg.IQRMultiplier*iqr

		count := 0
		for _, v := range values {
			if v < lower || v > upper {
				count++
			}
		}
		if count > 0 {
			report.Outliers[col] = count
		}
	}
}

// parseNumeric parses a cell as a float. Blank cells and missing markers
// are not numbers.
func parseNumeric(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if isMissingMarker(cell) {
		return 0, false
	}
	cell = strings.ReplaceAll(cell, ",", "")
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// formatNumeric renders a fill value back into a cell. Years stay integral.
func formatNumeric(col string, v float64) string {
	if col == domain.ColYear {
		return strconv.Itoa(int(math.Round(v)))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// isMissingMarker reports whether a trimmed cell is one of the literal
// strings the raw dataset uses for missing values.
func isMissingMarker(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "nan", "na", "n/a", "null", "none":
		return true
	default:
		return false
	}
}

// titleCase uppercases the first letter of every word and lowercases the
// rest, the same convention the raw dataset's text columns were published
// with.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

func cloneTable(t *dataset.Table) *dataset.Table {
	clone := &dataset.Table{
		Columns:    append([]string(nil), t.Columns...),
		Rows:       make([][]string, len(t.Rows)),
		Provenance: t.Provenance,
	}
	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		copy(cells, row)
		clone.Rows[i] = cells
	}
	return clone
}

func rowKey(t *dataset.Table, row int) string {
	cells := make([]string, t.Width())
	for i, col := range t.Columns {
		cells[i] = t.Cell(row, col)
	}
	return strings.Join(cells, "\x1f")
}
