package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"agriprep/internal/config"
	"agriprep/pkg/contracts/domain"
)

// factParquetRow is the columnar projection of one fact row. Surrogate keys
// and the derived measures are optional: a nil stays null in the file
// instead of masquerading as zero.
type factParquetRow struct {
	StateID     *int64   `parquet:"name=state_id, type=INT64, repetitiontype=OPTIONAL"`
	CropID      *int64   `parquet:"name=crop_id, type=INT64, repetitiontype=OPTIONAL"`
	SeasonID    *int64   `parquet:"name=season_id, type=INT64, repetitiontype=OPTIONAL"`
	DateID      *int64   `parquet:"name=date_id, type=INT64, repetitiontype=OPTIONAL"`
	District    string   `parquet:"name=district_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Area        float64  `parquet:"name=area_hectares, type=DOUBLE"`
	Production  float64  `parquet:"name=production_tonnes, type=DOUBLE"`
	Yield       *float64 `parquet:"name=yield_per_hectare, type=DOUBLE, repetitiontype=OPTIONAL"`
	Temperature *float64 `parquet:"name=temperature_avg, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rainfall    *float64 `parquet:"name=rainfall_mm, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// ParquetSink writes the fact table as a Snappy-compressed Parquet file for
// SQL engines and columnar consumers.
type ParquetSink struct {
	outputDir string
	logger    *slog.Logger
}

// NewParquetSink creates the columnar sink.
func NewParquetSink(logger *slog.Logger, outputDir string) *ParquetSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParquetSink{
		outputDir: outputDir,
		logger:    logger.With(slog.String("sink", "parquet")),
	}
}

// Name implements Sink.
func (s *ParquetSink) Name() string { return "parquet" }

// Write implements Sink.
func (s *ParquetSink) Write(ctx context.Context, bundle *Bundle) error {
	path := filepath.Join(s.outputDir, config.FileFactParquet)

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(factParquetRow), 2)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range bundle.Artifacts.Fact.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := pw.Write(toParquetRow(row)); err != nil {
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet file: %w", err)
	}

	s.logger.InfoContext(ctx, "parquet fact table written",
		slog.String("path", path),
		slog.Int("rows", bundle.Artifacts.Fact.Len()))
	return nil
}

func toParquetRow(row domain.FactRow) factParquetRow {
	return factParquetRow{
		StateID:     toInt64(row.StateID),
		CropID:      toInt64(row.CropID),
		SeasonID:    toInt64(row.SeasonID),
		DateID:      toInt64(row.DateID),
		District:    row.District,
		Area:        row.Area,
		Production:  row.Production,
		Yield:       row.Yield,
		Temperature: row.Temperature,
		Rainfall:    row.Rainfall,
	}
}

func toInt64(v *int) *int64 {
	if v == nil {
		return nil
	}
	id := int64(*v)
	return &id
}
