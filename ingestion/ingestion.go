// Package ingestion loads the raw dataset, keeps an unmodified copy of it and
// splits it into train and test artifacts for the downstream stages.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/YoungY620/ingest/core/logging"
	"github.com/YoungY620/ingest/dataset"
)

// Config holds the file locations and split parameters of one ingestion run.
type Config struct {
	SourcePath string
	RawPath    string
	TrainPath  string
	TestPath   string
	Seed       int64
	TestSize   float64
	Delimiter  rune
}

// DefaultConfig mirrors the layout the downstream stages expect.
func DefaultConfig() Config {
	return Config{
		SourcePath: filepath.Join("notebook", "data", "stud.csv"),
		RawPath:    filepath.Join("artifacts", "data.csv"),
		TrainPath:  filepath.Join("artifacts", "train.csv"),
		TestPath:   filepath.Join("artifacts", "test.csv"),
		Seed:       42,
		TestSize:   0.2,
		Delimiter:  dataset.DefaultDelimiter,
	}
}

// Logger receives milestone messages.
type Logger interface {
	Log(level logging.Level, message string)
}

// Splitter runs the ingestion step. Concurrent runs against the same output
// paths race on the files.
type Splitter struct {
	cfg Config
	log Logger
}

// New creates a Splitter. cfg is copied and never changes afterwards; a nil
// log discards messages.
func New(cfg Config, log Logger) *Splitter {
	if log == nil {
		log = logging.NewNop()
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = dataset.DefaultDelimiter
	}
	return &Splitter{cfg: cfg, log: log}
}

// Config returns the configuration the Splitter was built with.
func (s *Splitter) Config() Config { return s.cfg }

// Run reads the source, writes the raw copy and the train/test partitions,
// and returns the train and test paths. Existing files are overwritten.
func (s *Splitter) Run() (trainPath, testPath string, err error) {
	s.log.Log(logging.LevelInfo, "Entered the data ingestion component")
	defer func() {
		if err != nil {
			s.log.Log(logging.LevelError, err.Error())
		}
	}()

	df, err := dataset.Read(s.cfg.SourcePath, s.cfg.Delimiter)
	if err != nil {
		return "", "", wrap(KindSourceUnreadable, "read source", s.cfg.SourcePath, err)
	}
	s.log.Log(logging.LevelInfo, fmt.Sprintf("Read the dataset as dataframe (%d rows, %d columns)", df.Nrow(), df.Ncol()))

	if err := s.ensureDirs(); err != nil {
		return "", "", err
	}

	if err := dataset.Write(s.cfg.RawPath, df, s.cfg.Delimiter); err != nil {
		return "", "", wrap(KindWrite, "write raw", s.cfg.RawPath, err)
	}
	s.log.Log(logging.LevelInfo, "Created artifacts and files")

	s.log.Log(logging.LevelInfo, "Train test split initiated")
	trainRows, testRows, err := TrainTestSplit(df.Nrow(), s.cfg.TestSize, s.cfg.Seed)
	if err != nil {
		return "", "", wrap(KindSplit, "split", "", err)
	}
	train, err := dataset.Subset(df, trainRows)
	if err != nil {
		return "", "", wrap(KindSplit, "select train rows", "", err)
	}
	test, err := dataset.Subset(df, testRows)
	if err != nil {
		return "", "", wrap(KindSplit, "select test rows", "", err)
	}

	if err := dataset.Write(s.cfg.TrainPath, train, s.cfg.Delimiter); err != nil {
		return "", "", wrap(KindWrite, "write train", s.cfg.TrainPath, err)
	}
	if err := dataset.Write(s.cfg.TestPath, test, s.cfg.Delimiter); err != nil {
		return "", "", wrap(KindWrite, "write test", s.cfg.TestPath, err)
	}
	s.log.Log(logging.LevelInfo, fmt.Sprintf("Ingestion of the data is completed (train=%d, test=%d)", len(trainRows), len(testRows)))

	return s.cfg.TrainPath, s.cfg.TestPath, nil
}

// ensureDirs creates the parent directory of every output path.
func (s *Splitter) ensureDirs() error {
	seen := make(map[string]struct{}, 3)
	for _, p := range []string{s.cfg.RawPath, s.cfg.TrainPath, s.cfg.TestPath} {
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return wrap(KindDirCreate, "create directory", dir, err)
		}
	}
	return nil
}
