// Package transform converts the train/test tables produced by ingestion into
// numeric arrays ready for model fitting.
package transform

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/YoungY620/ingest/core/logging"
	"github.com/YoungY620/ingest/dataset"
)

// Config selects the target and feature columns. When both column lists are
// empty they are inferred from the training table; otherwise only the listed
// columns are used.
type Config struct {
	TargetColumn       string
	NumericColumns     []string
	CategoricalColumns []string
	PreprocessorPath   string // empty skips persisting the fitted preprocessor
	Delimiter          rune
}

func DefaultConfig() Config {
	return Config{
		TargetColumn:     "math_score",
		PreprocessorPath: filepath.Join("artifacts", "preprocessor.json"),
		Delimiter:        dataset.DefaultDelimiter,
	}
}

type Transformer struct {
	cfg Config
	log logging.Printer
}

func New(cfg Config, log logging.Printer) *Transformer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Transformer{cfg: cfg, log: log}
}

// Run fits the preprocessor on the train table and applies it to both tables.
// It returns the encoded arrays (target in the last column) and the path the
// preprocessor was saved to.
func (t *Transformer) Run(trainPath, testPath string) (train, test *mat.Dense, preprocessorPath string, err error) {
	trainDF, err := dataset.Read(trainPath, t.cfg.Delimiter)
	if err != nil {
		return nil, nil, "", fmt.Errorf("transform: read train %q: %w", trainPath, err)
	}
	testDF, err := dataset.Read(testPath, t.cfg.Delimiter)
	if err != nil {
		return nil, nil, "", fmt.Errorf("transform: read test %q: %w", testPath, err)
	}
	t.log.Infof("Read train and test data completed")

	t.log.Infof("Obtaining preprocessing object")
	p, err := Fit(trainDF, t.cfg)
	if err != nil {
		return nil, nil, "", fmt.Errorf("transform: fit: %w", err)
	}
	t.log.Debugf("numeric columns: %d, categorical columns: %d, features: %d", len(p.Numeric), len(p.Categorical), p.Features())

	t.log.Infof("Applying preprocessing object on training dataframe and testing dataframe")
	if train, err = p.Transform(trainDF); err != nil {
		return nil, nil, "", fmt.Errorf("transform: train: %w", err)
	}
	if test, err = p.Transform(testDF); err != nil {
		return nil, nil, "", fmt.Errorf("transform: test: %w", err)
	}

	if t.cfg.PreprocessorPath != "" {
		if err := p.Save(t.cfg.PreprocessorPath); err != nil {
			return nil, nil, "", fmt.Errorf("transform: save preprocessor %q: %w", t.cfg.PreprocessorPath, err)
		}
		t.log.Infof("Saved preprocessing object")
	}
	return train, test, t.cfg.PreprocessorPath, nil
}
