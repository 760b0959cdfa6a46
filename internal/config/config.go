package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the prefix of all configuration environment variables.
const envPrefix = "AGRIPREP"

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RunTimeout      time.Duration `yaml:"run_timeout" envconfig:"RUN_TIMEOUT" default:"30m"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/agriprep.log"`
	Debug    bool   `yaml:"debug" envconfig:"DEBUG" default:"false"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"powerbi_data" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs" validate:"required"`
}

// SourceConfig configures the source table providers.
type SourceConfig struct {
	// FilePatterns are the glob patterns the file provider matches against
	// the data directory, newest match wins.
	FilePatterns []string `yaml:"file_patterns" envconfig:"FILE_PATTERNS" default:"*.csv,*.xlsx"`
	// URLs are the candidate download locations tried in order by the HTTP
	// provider when no local file exists.
	URLs []string `yaml:"urls" envconfig:"URLS"`
	// RequestTimeout bounds each individual download attempt.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s" validate:"gt=0"`
	// RequestsPerSecond paces attempts against the mirrors.
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" default:"1" validate:"gt=0"`
	// MaxBodyBytes rejects payloads beyond this size.
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" default:"268435456"`
}

// CleaningConfig configures the cleaning stage.
type CleaningConfig struct {
	// MissingRatioThreshold is the single missing-value policy knob for
	// numeric columns: a column whose missing ratio is at most the
	// threshold has its blanks filled with the column median, above it the
	// affected rows are dropped. The boundary is inclusive: exactly the
	// threshold still fills.
	MissingRatioThreshold float64 `yaml:"missing_ratio_threshold" envconfig:"MISSING_RATIO_THRESHOLD" default:"0.20" validate:"gte=0,lte=1"`
	// IQRMultiplier scales the interquartile range when flagging outliers.
	IQRMultiplier float64 `yaml:"iqr_multiplier" envconfig:"IQR_MULTIPLIER" default:"1.5" validate:"gt=0"`
}

// ExportConfig selects which sinks run beyond the always-on CSV artifacts.
type ExportConfig struct {
	XLSX    bool `yaml:"xlsx" envconfig:"XLSX" default:"false"`
	Parquet bool `yaml:"parquet" envconfig:"PARQUET" default:"false"`
	SQLite  bool `yaml:"sqlite" envconfig:"SQLITE" default:"false"`
}

// WebSocketConfig contains WebSocket configuration.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load builds the configuration: .env bootstrap, YAML file if present, then
// environment variables on top, then validation and directory preparation.
func Load() (*Config, error) {
	// Missing .env is fine, a malformed one is not.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := findConfigFile(); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("prepare directories: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// EnsureDirectories creates the data, output, and logs directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutputDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// loadYAML overlays values from a YAML file onto cfg.
func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the first config file that exists among the
// conventional locations, or "".
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RunTimeout:      30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/agriprep.log",
		},
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "powerbi_data",
			LogsDir:   "logs",
		},
		Source: SourceConfig{
			FilePatterns:      []string{"*.csv", "*.xlsx"},
			URLs:              DefaultDatasetURLs(),
			RequestTimeout:    30 * time.Second,
			RequestsPerSecond: 1,
			MaxBodyBytes:      256 << 20,
		},
		Cleaning: CleaningConfig{
			MissingRatioThreshold: 0.20,
			IQRMultiplier:         1.5,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
