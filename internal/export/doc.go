// Package export serializes the pipeline outputs for the visualization
// layer: CSV artifacts with a UTF-8 BOM and fixed three-decimal floats,
// optional XLSX/Parquet/SQLite sinks, and the data_model_info.json document
// describing every table. Sinks are independent; one failing does not stop
// the others, and all failures are aggregated into one error.
package export
