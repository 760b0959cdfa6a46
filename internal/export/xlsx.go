package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"agriprep/internal/config"
)

// XLSXSink writes all artifacts into a single workbook, one sheet per
// table, for consumers who prefer Excel over loose CSVs.
type XLSXSink struct {
	outputDir string
	logger    *slog.Logger
}

// NewXLSXSink creates the workbook sink.
func NewXLSXSink(logger *slog.Logger, outputDir string) *XLSXSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXSink{
		outputDir: outputDir,
		logger:    logger.With(slog.String("sink", "xlsx")),
	}
}

// Name implements Sink.
func (s *XLSXSink) Name() string { return "xlsx" }

// Write implements Sink.
func (s *XLSXSink) Write(ctx context.Context, bundle *Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range bundle.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Sheet names are capped at 31 characters by the format.
		sheet := table.Name
		if len(sheet) > 31 {
			sheet = sheet[:31]
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		if err := writeSheetRow(f, sheet, 1, table.Headers); err != nil {
			return err
		}
		for r, row := range table.Rows {
			if err := writeSheetRow(f, sheet, r+2, row); err != nil {
				return err
			}
		}
	}

	path := filepath.Join(s.outputDir, config.FileWorkbook)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	s.logger.InfoContext(ctx, "workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(bundle.Tables)))
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
