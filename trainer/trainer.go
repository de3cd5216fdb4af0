// Package trainer fits candidate regression models on the transformed arrays
// and keeps the one that scores best on the test split.
package trainer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YoungY620/ingest/core/logging"
)

// ErrNoAcceptableModel is returned when no candidate reaches Config.MinScore.
var ErrNoAcceptableModel = errors.New("trainer: no acceptable model found")

// Config controls which candidates are fitted and how the winner is kept.
type Config struct {
	ModelPath string    // empty skips persisting the best model
	MinScore  float64   // minimum test R² of the best candidate
	Alphas    []float64 // ridge penalties, one candidate each
}

func DefaultConfig() Config {
	return Config{
		ModelPath: filepath.Join("artifacts", "model.json"),
		MinScore:  0.6,
		Alphas:    []float64{0.01, 0.1, 1, 10},
	}
}

// Candidate records the test score of one fitted model.
type Candidate struct {
	Name  string
	Score float64
}

// Result describes the selected model.
type Result struct {
	Model      *Model
	Score      float64
	Candidates []Candidate
	ModelPath  string
}

type Trainer struct {
	cfg Config
	log logging.Printer
}

func New(cfg Config, log logging.Printer) *Trainer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Trainer{cfg: cfg, log: log}
}

// Run splits features from the target (last column) in both arrays, fits
// every candidate on train and selects the best R² on test.
func (t *Trainer) Run(train, test *mat.Dense) (Result, error) {
	t.log.Infof("Split training and test input data")
	xTrain, yTrain, err := splitTarget(train)
	if err != nil {
		return Result{}, fmt.Errorf("trainer: train array: %w", err)
	}
	xTest, yTest, err := splitTarget(test)
	if err != nil {
		return Result{}, fmt.Errorf("trainer: test array: %w", err)
	}
	_, trainCols := xTrain.Dims()
	if _, testCols := xTest.Dims(); testCols != trainCols {
		return Result{}, fmt.Errorf("trainer: train has %d features, test has %d", trainCols, testCols)
	}
	if len(t.cfg.Alphas) == 0 {
		return Result{}, errors.New("trainer: no candidate models configured")
	}

	var (
		best       *Model
		bestScore  = math.Inf(-1)
		candidates []Candidate
	)
	for _, alpha := range t.cfg.Alphas {
		m, err := FitRidge(xTrain, yTrain, alpha)
		if err != nil {
			t.log.Warnf("ridge(alpha=%g) failed: %v", alpha, err)
			continue
		}
		score := stat.RSquaredFrom(m.Predict(xTest), yTest, nil)
		t.log.Debugf("%s: test r2=%.4f", m.Name, score)
		candidates = append(candidates, Candidate{Name: m.Name, Score: score})
		if score > bestScore {
			best, bestScore = m, score
		}
	}

	if best == nil || bestScore < t.cfg.MinScore {
		return Result{Candidates: candidates}, fmt.Errorf("%w: best r2 %.4f below %.4f", ErrNoAcceptableModel, bestScore, t.cfg.MinScore)
	}
	t.log.Infof("Best model found on both training and testing dataset: %s (r2=%.4f)", best.Name, bestScore)

	res := Result{Model: best, Score: bestScore, Candidates: candidates}
	if t.cfg.ModelPath != "" {
		if err := best.Save(t.cfg.ModelPath); err != nil {
			return res, fmt.Errorf("trainer: save model %q: %w", t.cfg.ModelPath, err)
		}
		res.ModelPath = t.cfg.ModelPath
	}
	return res, nil
}

func splitTarget(a *mat.Dense) (*mat.Dense, []float64, error) {
	if a == nil {
		return nil, nil, errors.New("nil array")
	}
	r, c := a.Dims()
	if r == 0 || c < 2 {
		return nil, nil, fmt.Errorf("need at least one row and two columns, got %dx%d", r, c)
	}
	x := mat.DenseCopyOf(a.Slice(0, r, 0, c-1))
	return x, mat.Col(nil, c-1, a), nil
}

// Model is a fitted linear model: y = Intercept + Weights·x.
type Model struct {
	Name      string    `json:"name"`
	Alpha     float64   `json:"alpha"`
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
}

// FitRidge solves (XcᵀXc + αI)w = Xcᵀyc on centred data, so the intercept is
// not penalised.
func FitRidge(x mat.Matrix, y []float64, alpha float64) (*Model, error) {
	r, c := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("%d rows but %d targets", r, len(y))
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("alpha must be positive, got %g", alpha)
	}

	means := make([]float64, c)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	yMean := stat.Mean(y, nil)

	xc := mat.NewDense(r, c, nil)
	xc.Apply(func(_, j int, v float64) float64 { return v - means[j] }, x)
	yc := mat.NewVecDense(r, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, xc.T())
	for i := 0; i < c; i++ {
		gram.SetSym(i, i, gram.At(i, i)+alpha)
	}
	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, errors.New("normal equations are not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return nil, err
	}

	m := &Model{
		Name:    "ridge(alpha=" + strconv.FormatFloat(alpha, 'g', -1, 64) + ")",
		Alpha:   alpha,
		Weights: make([]float64, c),
	}
	m.Intercept = yMean
	for j := range m.Weights {
		m.Weights[j] = w.AtVec(j)
		m.Intercept -= m.Weights[j] * means[j]
	}
	return m, nil
}

// Predict returns one prediction per row of x.
func (m *Model) Predict(x mat.Matrix) []float64 {
	r, _ := x.Dims()
	var pred mat.VecDense
	pred.MulVec(x, mat.NewVecDense(len(m.Weights), m.Weights))
	out := make([]float64, r)
	for i := range out {
		out[i] = pred.AtVec(i) + m.Intercept
	}
	return out
}

// Save writes the model as JSON, creating parent directories.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadModel reads a model written by Save.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return &m, nil
}
