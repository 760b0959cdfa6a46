package cleaning

// Config holds the cleaning stage's tunable policies.
type Config struct {
	// MissingRatioThreshold governs numeric columns: missing ratio at most
	// the threshold fills blanks with the column median, above it drops the
	// affected rows. The boundary is inclusive. The original system carried
	// two contradictory threshold directions; this single knob replaces
	// both.
	MissingRatioThreshold float64

	// IQRMultiplier scales the interquartile range for outlier detection.
	IQRMultiplier float64

	// CropAliases rewrites crop names to canonical spellings after
	// title-casing. Keys and values are title-cased strings.
	CropAliases map[string]string
}

// DefaultConfig returns the cleaning policy the original dataset was
// published with: 20% missing threshold, the 1.5×IQR rule, and the known
// crop spelling variants.
func DefaultConfig() Config {
	return Config{
		MissingRatioThreshold: 0.20,
		IQRMultiplier:         1.5,
		CropAliases: map[string]string{
			"Sugar Cane":   "Sugarcane",
			"Corn":         "Maize",
			"Cotton(Lint)": "Cotton",
			"Paddy":        "Rice",
		},
	}
}

// normalize fills zero values with defaults so a partially populated Config
// behaves sensibly.
func (c Config) normalize() Config {
	if c.MissingRatioThreshold == 0 {
		c.MissingRatioThreshold = 0.20
	}
	if c.IQRMultiplier == 0 {
		c.IQRMultiplier = 1.5
	}
	if c.CropAliases == nil {
		c.CropAliases = DefaultConfig().CropAliases
	}
	return c
}
