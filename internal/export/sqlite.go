package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agriprep/internal/config"
	"agriprep/pkg/contracts/domain"
)

// Warehouse row models. Tables mirror the CSV artifacts so SQL consumers
// join on the same surrogate keys.

type dimStateRow struct {
	StateID   int    `gorm:"column:state_id;primaryKey"`
	StateName string `gorm:"column:state_name"`
}

func (dimStateRow) TableName() string { return "dim_states" }

type dimCropRow struct {
	CropID   int    `gorm:"column:crop_id;primaryKey"`
	CropName string `gorm:"column:crop_name"`
}

func (dimCropRow) TableName() string { return "dim_crops" }

type dimSeasonRow struct {
	SeasonID   int    `gorm:"column:season_id;primaryKey"`
	SeasonName string `gorm:"column:season_name"`
}

func (dimSeasonRow) TableName() string { return "dim_seasons" }

type dimDateRow struct {
	DateID        int    `gorm:"column:date_id;primaryKey"`
	Year          int    `gorm:"column:year"`
	Decade        string `gorm:"column:decade"`
	IsCurrentYear bool   `gorm:"column:is_current_year"`
}

func (dimDateRow) TableName() string { return "dim_dates" }

type factRow struct {
	ID          uint     `gorm:"column:id;primaryKey;autoIncrement"`
	StateID     *int     `gorm:"column:state_id"`
	CropID      *int     `gorm:"column:crop_id"`
	SeasonID    *int     `gorm:"column:season_id"`
	DateID      *int     `gorm:"column:date_id"`
	District    string   `gorm:"column:district_name"`
	Area        float64  `gorm:"column:area_hectares"`
	Production  float64  `gorm:"column:production_tonnes"`
	Yield       *float64 `gorm:"column:yield_per_hectare"`
	Temperature *float64 `gorm:"column:temperature_avg"`
	Rainfall    *float64 `gorm:"column:rainfall_mm"`
}

func (factRow) TableName() string { return "fact_agriculture" }

// SQLiteSink loads dimensions and the fact table into a SQLite warehouse
// file, recreated from scratch on every run.
type SQLiteSink struct {
	outputDir string
	batchSize int
	logger    *slog.Logger
}

// NewSQLiteSink creates the warehouse sink.
func NewSQLiteSink(logger *slog.Logger, outputDir string) *SQLiteSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteSink{
		outputDir: outputDir,
		batchSize: 500,
		logger:    logger.With(slog.String("sink", "sqlite")),
	}
}

// Name implements Sink.
func (s *SQLiteSink) Name() string { return "sqlite" }

// Write implements Sink.
func (s *SQLiteSink) Write(ctx context.Context, bundle *Bundle) error {
	path := filepath.Join(s.outputDir, config.FileWarehouse)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open warehouse %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("unwrap warehouse handle: %w", err)
	}
	defer sqlDB.Close()

	db = db.WithContext(ctx)

	models := []interface{}{
		&dimStateRow{}, &dimCropRow{}, &dimSeasonRow{}, &dimDateRow{}, &factRow{},
	}
	for _, model := range models {
		if err := db.Migrator().DropTable(model); err != nil {
			return fmt.Errorf("reset warehouse table: %w", err)
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("create warehouse schema: %w", err)
	}

	a := bundle.Artifacts
	if err := s.insertDimensions(db, a.Dimensions); err != nil {
		return err
	}

	facts := make([]factRow, 0, a.Fact.Len())
	for _, row := range a.Fact.Rows {
		facts = append(facts, factRow{
			StateID:     row.StateID,
			CropID:      row.CropID,
			SeasonID:    row.SeasonID,
			DateID:      row.DateID,
			District:    row.District,
			Area:        row.Area,
			Production:  row.Production,
			Yield:       row.Yield,
			Temperature: row.Temperature,
			Rainfall:    row.Rainfall,
		})
	}
	if len(facts) > 0 {
		if err := db.CreateInBatches(facts, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert fact rows: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "warehouse written",
		slog.String("path", path),
		slog.Int("fact_rows", len(facts)))
	return nil
}

func (s *SQLiteSink) insertDimensions(db *gorm.DB, dims *domain.Dimensions) error {
	var states []dimStateRow
	for _, e := range dims.States.Entries {
		states = append(states, dimStateRow{StateID: e.SurrogateID, StateName: e.NaturalKey})
	}
	var crops []dimCropRow
	for _, e := range dims.Crops.Entries {
		crops = append(crops, dimCropRow{CropID: e.SurrogateID, CropName: e.NaturalKey})
	}
	var seasons []dimSeasonRow
	for _, e := range dims.Seasons.Entries {
		seasons = append(seasons, dimSeasonRow{SeasonID: e.SurrogateID, SeasonName: e.NaturalKey})
	}
	var dates []dimDateRow
	for _, e := range dims.Dates.Entries {
		year, _ := strconv.Atoi(e.NaturalKey)
		dates = append(dates, dimDateRow{
			DateID:        e.SurrogateID,
			Year:          year,
			Decade:        e.Decade,
			IsCurrentYear: e.IsCurrentYear,
		})
	}

	if len(states) > 0 {
		if err := db.CreateInBatches(states, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert dim_states: %w", err)
		}
	}
	if len(crops) > 0 {
		if err := db.CreateInBatches(crops, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert dim_crops: %w", err)
		}
	}
	if len(seasons) > 0 {
		if err := db.CreateInBatches(seasons, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert dim_seasons: %w", err)
		}
	}
	if len(dates) > 0 {
		if err := db.CreateInBatches(dates, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert dim_dates: %w", err)
		}
	}
	return nil
}
