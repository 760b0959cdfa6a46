// Package dataset provides the in-memory tabular model the preparation
// pipeline passes between stages, together with the CSV/XLSX readers and the
// column-alias normalization that turns whatever headers a raw file carries
// into the canonical source contract.
package dataset
