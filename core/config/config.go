package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YoungY620/ingest/core/logging"
	"github.com/YoungY620/ingest/ingestion"
	"github.com/YoungY620/ingest/trainer"
	"github.com/YoungY620/ingest/transform"
)

// IngestionConfig locates the source dataset and the split artifacts.
type IngestionConfig struct {
	Source    string  `yaml:"source" json:"source" env:"INGEST_SOURCE"`
	RawPath   string  `yaml:"raw_path" json:"raw_path" env:"INGEST_RAW_PATH"`
	TrainPath string  `yaml:"train_path" json:"train_path" env:"INGEST_TRAIN_PATH"`
	TestPath  string  `yaml:"test_path" json:"test_path" env:"INGEST_TEST_PATH"`
	Seed      int64   `yaml:"seed" json:"seed" env:"INGEST_SEED"`
	TestSize  float64 `yaml:"test_size" json:"test_size" env:"INGEST_TEST_SIZE"`
	Delimiter string  `yaml:"delimiter" json:"delimiter" env:"INGEST_DELIMITER"`
}

// TransformationConfig describes how the split tables become numeric arrays.
// Empty column lists are inferred from the training data.
type TransformationConfig struct {
	Target             string   `yaml:"target" json:"target" env:"INGEST_TARGET"`
	NumericColumns     []string `yaml:"numeric_columns" json:"numeric_columns" env:"INGEST_NUMERIC_COLUMNS"`
	CategoricalColumns []string `yaml:"categorical_columns" json:"categorical_columns" env:"INGEST_CATEGORICAL_COLUMNS"`
	PreprocessorPath   string   `yaml:"preprocessor_path" json:"preprocessor_path" env:"INGEST_PREPROCESSOR_PATH"`
}

// TrainerConfig controls model selection.
type TrainerConfig struct {
	ModelPath string    `yaml:"model_path" json:"model_path" env:"INGEST_MODEL_PATH"`
	MinScore  float64   `yaml:"min_score" json:"min_score" env:"INGEST_MIN_SCORE"`
	Alphas    []float64 `yaml:"alphas" json:"alphas" env:"INGEST_ALPHAS"`
}

// WatchConfig tunes the re-run trigger of the watch command.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" json:"debounce_ms" env:"INGEST_WATCH_DEBOUNCE_MS"`
	MaxWaitMs  int `yaml:"max_wait_ms" json:"max_wait_ms" env:"INGEST_WATCH_MAX_WAIT_MS"`
}

// OutputConfig locates the run bookkeeping files. Empty paths disable them.
type OutputConfig struct {
	MetricsTextfile string `yaml:"metrics_textfile" json:"metrics_textfile" env:"INGEST_METRICS_TEXTFILE"`
	HistoryPath     string `yaml:"history_path" json:"history_path" env:"INGEST_HISTORY_PATH"`
	StatusPath      string `yaml:"status_path" json:"status_path" env:"INGEST_STATUS_PATH"`
}

// Config holds runtime configuration for the pipeline.
type Config struct {
	LogLevel       string               `yaml:"log_level" json:"log_level" env:"INGEST_LOG_LEVEL"`
	Ingestion      IngestionConfig      `yaml:"ingestion" json:"ingestion"`
	Transformation TransformationConfig `yaml:"transformation" json:"transformation"`
	Trainer        TrainerConfig        `yaml:"trainer" json:"trainer"`
	Watch          WatchConfig          `yaml:"watch" json:"watch"`
	Output         OutputConfig         `yaml:"output" json:"output"`

	source string
}

// Default returns a baseline configuration matching the artifacts layout the
// downstream stages expect.
func Default() Config {
	ic := ingestion.DefaultConfig()
	tc := transform.DefaultConfig()
	mc := trainer.DefaultConfig()
	return Config{
		LogLevel: "info",
		Ingestion: IngestionConfig{
			Source:    ic.SourcePath,
			RawPath:   ic.RawPath,
			TrainPath: ic.TrainPath,
			TestPath:  ic.TestPath,
			Seed:      ic.Seed,
			TestSize:  ic.TestSize,
			Delimiter: string(ic.Delimiter),
		},
		Transformation: TransformationConfig{
			Target:           tc.TargetColumn,
			PreprocessorPath: tc.PreprocessorPath,
		},
		Trainer: TrainerConfig{
			ModelPath: mc.ModelPath,
			MinScore:  mc.MinScore,
			Alphas:    mc.Alphas,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
			MaxWaitMs:  5000,
		},
		Output: OutputConfig{
			MetricsTextfile: filepath.Join("artifacts", "metrics.prom"),
			HistoryPath:     filepath.Join("artifacts", ".history"),
			StatusPath:      filepath.Join("artifacts", "status.json"),
		},
	}
}

// Load reads configuration from a YAML file, then applies INGEST_* environment
// overrides. Missing files fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config: parse %q: %w", path, err)
			}
		}
		cfg.source = path
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	return &cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file without overriding the
// ones already set. An empty path loads ".env" when present.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load env file %q: %w", path, err)
	}
	return nil
}

// Source returns the file the configuration was loaded from, if any.
func (c *Config) Source() string { return c.source }

// ApplyOverrides mutates the configuration with values supplied via CLI flags.
func (c *Config) ApplyOverrides(source, logLevel string) {
	if source != "" {
		c.Ingestion.Source = source
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Validate checks the configuration against the embedded JSON schema.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	result := validateSchema(c)
	if !result.Valid {
		return fmt.Errorf("config: invalid configuration:\n%s", FormatValidationErrors(result))
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// Splitter converts the ingestion section into the splitter configuration.
func (c *Config) Splitter() ingestion.Config {
	return ingestion.Config{
		SourcePath: c.Ingestion.Source,
		RawPath:    c.Ingestion.RawPath,
		TrainPath:  c.Ingestion.TrainPath,
		TestPath:   c.Ingestion.TestPath,
		Seed:       c.Ingestion.Seed,
		TestSize:   c.Ingestion.TestSize,
		Delimiter:  c.delimiter(),
	}
}

// Transformer converts the transformation section.
func (c *Config) Transformer() transform.Config {
	return transform.Config{
		TargetColumn:       c.Transformation.Target,
		NumericColumns:     c.Transformation.NumericColumns,
		CategoricalColumns: c.Transformation.CategoricalColumns,
		PreprocessorPath:   c.Transformation.PreprocessorPath,
		Delimiter:          c.delimiter(),
	}
}

// ModelTrainer converts the trainer section.
func (c *Config) ModelTrainer() trainer.Config {
	return trainer.Config{
		ModelPath: c.Trainer.ModelPath,
		MinScore:  c.Trainer.MinScore,
		Alphas:    c.Trainer.Alphas,
	}
}

func (c *Config) delimiter() rune {
	for _, r := range c.Ingestion.Delimiter {
		return r
	}
	return ','
}

// PrettyYAML renders the configuration as YAML for diagnostics.
func (c Config) PrettyYAML() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", c)
	}
	return string(out)
}
