// Package cleaning turns a raw string table into the typed, validated
// source table the star-schema and summary builders consume. It normalizes
// categorical text, fills or drops missing values under a single documented
// threshold policy, removes exact duplicates, converts negative measures to
// absolute values, derives yield, and detects (but never removes) IQR
// outliers. Every action is counted in a CleaningReport.
package cleaning
