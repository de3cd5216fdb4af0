// Package pipeline chains ingestion, transformation and training into one run
// and keeps the run bookkeeping (status file, history, metrics).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YoungY620/ingest/core/config"
	"github.com/YoungY620/ingest/core/logging"
	"github.com/YoungY620/ingest/ingestion"
	"github.com/YoungY620/ingest/internal"
	"github.com/YoungY620/ingest/metrics"
	"github.com/YoungY620/ingest/trainer"
	"github.com/YoungY620/ingest/transform"
)

const (
	StageIngestion      = "ingestion"
	StageTransformation = "transformation"
	StageTrainer        = "trainer"
)

// StageError reports which stage of which run failed.
type StageError struct {
	Stage string
	RunID string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("run %s: %s stage: %v", e.RunID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result summarises a successful run.
type Result struct {
	RunID            string
	TrainPath        string
	TestPath         string
	PreprocessorPath string
	ModelPath        string
	TrainRows        int
	TestRows         int
	Model            string
	Score            float64
	Duration         time.Duration
}

type Pipeline struct {
	cfg     *config.Config
	log     logging.Printer
	metrics *metrics.Recorder
	history *internal.HistoryLogger
	source  string
	newID   func() string
}

type Option func(*Pipeline)

// WithHistorySource tags history entries, e.g. "run" or "watch".
func WithHistorySource(src string) Option {
	return func(p *Pipeline) { p.source = src }
}

// WithRunID replaces the random run identifier generator.
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// New opens the history file configured in cfg. Call Close when done.
func New(cfg *config.Config, log logging.Printer, opts ...Option) (*Pipeline, error) {
	if log == nil {
		log = logging.NewNop()
	}
	p := &Pipeline{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		source:  "run",
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	if path := cfg.Output.HistoryPath; path != "" {
		h, err := internal.NewHistoryLogger(path, p.source)
		if err != nil {
			return nil, err
		}
		p.history = h
	}
	return p, nil
}

func (p *Pipeline) Close() error {
	return p.history.Close()
}

// Run executes every stage in order and stops at the first failure, which is
// returned as a *StageError.
func (p *Pipeline) Run(ctx context.Context) (res Result, err error) {
	res.RunID = p.newID()
	start := time.Now()

	p.setStatus(Status{Status: StateRunning, RunID: res.RunID})
	p.history.Log(internal.HistoryEntry{Type: "start", RunID: res.RunID, Message: p.cfg.Ingestion.Source})
	p.log.Infof("Run %s started, source=%s", res.RunID, p.cfg.Ingestion.Source)

	defer func() {
		res.Duration = time.Since(start)
		idle := Status{Status: StateIdle, RunID: res.RunID}
		if err != nil {
			p.metrics.RunFailed()
			idle.LastError = err.Error()
		} else {
			p.metrics.RunSucceeded(res.Score, time.Now())
			p.history.Log(internal.HistoryEntry{
				Type: "finish", RunID: res.RunID, Duration: res.Duration.String(),
				Result: map[string]any{"model": res.Model, "r2": res.Score},
			})
		}
		p.setStatus(idle)
		p.writeMetrics()
	}()

	err = p.stage(ctx, res.RunID, StageIngestion, func() (any, error) {
		s := ingestion.New(p.cfg.Splitter(), p.log.WithComponent(StageIngestion))
		var err error
		res.TrainPath, res.TestPath, err = s.Run()
		return map[string]string{"train": res.TrainPath, "test": res.TestPath}, err
	})
	if err != nil {
		return res, err
	}

	var trainArr, testArr *mat.Dense
	err = p.stage(ctx, res.RunID, StageTransformation, func() (any, error) {
		t := transform.New(p.cfg.Transformer(), p.log.WithComponent(StageTransformation))
		var err error
		trainArr, testArr, res.PreprocessorPath, err = t.Run(res.TrainPath, res.TestPath)
		if err != nil {
			return nil, err
		}
		res.TrainRows, _ = trainArr.Dims()
		res.TestRows, _ = testArr.Dims()
		p.metrics.SetRows(res.TrainRows, res.TestRows)
		return map[string]int{"train_rows": res.TrainRows, "test_rows": res.TestRows}, nil
	})
	if err != nil {
		return res, err
	}

	err = p.stage(ctx, res.RunID, StageTrainer, func() (any, error) {
		tr := trainer.New(p.cfg.ModelTrainer(), p.log.WithComponent(StageTrainer))
		out, err := tr.Run(trainArr, testArr)
		if err != nil {
			return nil, err
		}
		res.Model, res.Score, res.ModelPath = out.Model.Name, out.Score, out.ModelPath
		return map[string]any{"model": res.Model, "r2": res.Score}, nil
	})
	if err != nil {
		return res, err
	}

	p.log.Infof("Run %s completed in %s: %s r2=%.4f", res.RunID, time.Since(start).Round(time.Millisecond), res.Model, res.Score)
	return res, nil
}

func (p *Pipeline) stage(ctx context.Context, runID, name string, fn func() (any, error)) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, RunID: runID, Err: err}
	}
	started := time.Now()
	result, err := fn()
	took := time.Since(started)
	p.metrics.ObserveStage(name, took)
	if err != nil {
		p.history.LogError(runID, name, err)
		return &StageError{Stage: name, RunID: runID, Err: err}
	}
	p.history.LogStage(runID, name, took, result)
	return nil
}

func (p *Pipeline) setStatus(s Status) {
	if p.cfg.Output.StatusPath == "" {
		return
	}
	if err := SetStatus(p.cfg.Output.StatusPath, s); err != nil {
		p.log.Warnf("Failed to write status: %v", err)
	}
}

func (p *Pipeline) writeMetrics() {
	if p.cfg.Output.MetricsTextfile == "" {
		return
	}
	if err := p.metrics.WriteTextfile(p.cfg.Output.MetricsTextfile); err != nil {
		p.log.Warnf("Failed to write metrics: %v", err)
	}
}

// FailedStage returns the stage named by a *StageError in err's chain.
func FailedStage(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
