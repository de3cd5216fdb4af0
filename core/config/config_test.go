package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungY620/ingest/core/logging"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("notebook", "data", "stud.csv"), cfg.Ingestion.Source)
	assert.Equal(t, filepath.Join("artifacts", "train.csv"), cfg.Ingestion.TrainPath)
	assert.Equal(t, filepath.Join("artifacts", "test.csv"), cfg.Ingestion.TestPath)
	assert.Equal(t, filepath.Join("artifacts", "data.csv"), cfg.Ingestion.RawPath)
	assert.Equal(t, int64(42), cfg.Ingestion.Seed)
	assert.Equal(t, 0.2, cfg.Ingestion.TestSize)
	assert.Equal(t, "math_score", cfg.Transformation.Target)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level: debug
ingestion:
  source: data/in.tsv
  train_path: out/train.tsv
  seed: 7
  delimiter: "\t"
transformation:
  target: score
  categorical_columns: [group]
trainer:
  min_score: 0.3
  alphas: [0.5, 2]
`), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, cfgPath, cfg.Source())
	assert.Equal(t, logging.LevelDebug, cfg.Level())
	assert.Equal(t, "data/in.tsv", cfg.Ingestion.Source)
	// Unset keys keep their defaults.
	assert.Equal(t, filepath.Join("artifacts", "test.csv"), cfg.Ingestion.TestPath)

	sc := cfg.Splitter()
	assert.Equal(t, '\t', sc.Delimiter)
	assert.Equal(t, int64(7), sc.Seed)
	assert.Equal(t, "out/train.tsv", sc.TrainPath)

	tc := cfg.Transformer()
	assert.Equal(t, "score", tc.TargetColumn)
	assert.Equal(t, []string{"group"}, tc.CategoricalColumns)
	assert.Equal(t, '\t', tc.Delimiter)

	mc := cfg.ModelTrainer()
	assert.Equal(t, 0.3, mc.MinScore)
	assert.Equal(t, []float64{0.5, 2}, mc.Alphas)
}

func TestLoadParseError(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ingestion: [unclosed"), 0o644))

	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("INGEST_SOURCE", "env/source.csv")
	t.Setenv("INGEST_SEED", "99")
	t.Setenv("INGEST_TEST_SIZE", "0.25")
	t.Setenv("INGEST_ALPHAS", "1,3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env/source.csv", cfg.Ingestion.Source)
	assert.Equal(t, int64(99), cfg.Ingestion.Seed)
	assert.Equal(t, 0.25, cfg.Ingestion.TestSize)
	assert.Equal(t, []float64{1, 3}, cfg.Trainer.Alphas)
	// Variables that are not set leave the defaults alone.
	assert.Equal(t, filepath.Join("artifacts", "train.csv"), cfg.Ingestion.TrainPath)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "pipeline.env")
	require.NoError(t, os.WriteFile(envPath, []byte("INGEST_TARGET=reading_score\n"), 0o644))
	t.Setenv("INGEST_TARGET", "")
	require.NoError(t, os.Unsetenv("INGEST_TARGET"))

	require.NoError(t, LoadEnvFile(envPath))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "reading_score", cfg.Transformation.Target)

	assert.Error(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides("", "")
	assert.Equal(t, Default().Ingestion.Source, cfg.Ingestion.Source)

	cfg.ApplyOverrides("other.csv", "error")
	assert.Equal(t, "other.csv", cfg.Ingestion.Source)
	assert.Equal(t, logging.LevelError, cfg.Level())
}

func TestValidateRejects(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"test size zero", func(c *Config) { c.Ingestion.TestSize = 0 }},
		{"test size one", func(c *Config) { c.Ingestion.TestSize = 1 }},
		{"long delimiter", func(c *Config) { c.Ingestion.Delimiter = ";;" }},
		{"quote delimiter", func(c *Config) { c.Ingestion.Delimiter = `"` }},
		{"empty train path", func(c *Config) { c.Ingestion.TrainPath = "" }},
		{"no alphas", func(c *Config) { c.Trainer.Alphas = []float64{} }},
		{"negative alpha", func(c *Config) { c.Trainer.Alphas = []float64{-1} }},
		{"empty target", func(c *Config) { c.Transformation.Target = "" }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -1 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPrettyYAML(t *testing.T) {
	out := Default().PrettyYAML()
	assert.Contains(t, out, "train_path: artifacts/train.csv")
	assert.Contains(t, out, "seed: 42")
}
