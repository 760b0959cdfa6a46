package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSink writes every rendered artifact as a CSV file with a UTF-8 BOM,
// which keeps spreadsheet tools from mangling non-ASCII district names.
type CSVSink struct {
	outputDir string
	logger    *slog.Logger
}

// NewCSVSink creates the CSV sink.
func NewCSVSink(logger *slog.Logger, outputDir string) *CSVSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSink{
		outputDir: outputDir,
		logger:    logger.With(slog.String("sink", "csv")),
	}
}

// Name implements Sink.
func (s *CSVSink) Name() string { return "csv" }

// Write implements Sink.
func (s *CSVSink) Write(ctx context.Context, bundle *Bundle) error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, table := range bundle.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(s.outputDir, table.FileName)
		if err := writeCSVFile(path, table); err != nil {
			return fmt.Errorf("write %s: %w", table.FileName, err)
		}
		s.logger.DebugContext(ctx, "artifact written",
			slog.String("file", table.FileName),
			slog.Int("rows", len(table.Rows)))
	}
	return nil
}

func writeCSVFile(path string, table RenderedTable) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
