// Package summary computes the pre-aggregated rollups of the cleaned source
// table: per state, per crop, and per year. Aggregates are rounded to a
// fixed three decimal places so the downstream visualization layer can
// compare values byte for byte, and groups are emitted sorted by key for
// deterministic output.
package summary
