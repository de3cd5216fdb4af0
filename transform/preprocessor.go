package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YoungY620/ingest/dataset"
)

// NumericColumn holds the statistics learned for a numeric feature.
type NumericColumn struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// CategoricalColumn holds the vocabulary learned for a categorical feature.
// Scales[i] is the training standard deviation of the Categories[i] indicator.
type CategoricalColumn struct {
	Name       string    `json:"name"`
	Mode       string    `json:"mode"`
	Categories []string  `json:"categories"`
	Scales     []float64 `json:"scales"`
}

// Preprocessor turns a table into a numeric matrix whose last column is the
// target. It is fitted on the training split only.
type Preprocessor struct {
	Target      string              `json:"target"`
	Numeric     []NumericColumn     `json:"numeric"`
	Categorical []CategoricalColumn `json:"categorical"`
}

func isMissing(v string) bool {
	return v == "" || v == "NA" || v == "NaN"
}

// Fit learns imputation values, scaling and vocabularies from df. Columns are
// addressed by their data frame names, so blank or repeated header cells are
// known by the names gota generated for them.
func Fit(df dataset.Table, cfg Config) (*Preprocessor, error) {
	names := df.Names()
	if !contains(names, cfg.TargetColumn) {
		return nil, fmt.Errorf("target column %q not found", cfg.TargetColumn)
	}

	numeric, categorical := cfg.NumericColumns, cfg.CategoricalColumns
	if len(numeric) == 0 && len(categorical) == 0 {
		numeric, categorical = inferColumns(df, cfg.TargetColumn)
	}

	p := &Preprocessor{Target: cfg.TargetColumn}
	for _, name := range numeric {
		values, err := column(df, name)
		if err != nil {
			return nil, err
		}
		nc, err := fitNumeric(name, values)
		if err != nil {
			return nil, err
		}
		p.Numeric = append(p.Numeric, nc)
	}
	for _, name := range categorical {
		values, err := column(df, name)
		if err != nil {
			return nil, err
		}
		p.Categorical = append(p.Categorical, fitCategorical(name, values))
	}
	if p.Features() == 0 {
		return nil, fmt.Errorf("no feature columns besides target %q", cfg.TargetColumn)
	}
	return p, nil
}

// inferColumns treats a column as numeric when every present value parses as
// a float, and as categorical otherwise.
func inferColumns(df dataset.Table, target string) (numeric, categorical []string) {
	for _, name := range df.Names() {
		if name == target {
			continue
		}
		values := df.Col(name).Records()
		seen, parsed := 0, 0
		for _, v := range values {
			if isMissing(v) {
				continue
			}
			seen++
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				parsed++
			}
		}
		if seen > 0 && seen == parsed {
			numeric = append(numeric, name)
		} else {
			categorical = append(categorical, name)
		}
	}
	return numeric, categorical
}

func fitNumeric(name string, values []string) (NumericColumn, error) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if isMissing(v) {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return NumericColumn{}, fmt.Errorf("column %q: %w", name, err)
		}
		present = append(present, f)
	}
	nc := NumericColumn{Name: name, Median: median(present)}

	imputed := make([]float64, len(values))
	for i, v := range values {
		if isMissing(v) {
			imputed[i] = nc.Median
			continue
		}
		imputed[i], _ = strconv.ParseFloat(v, 64)
	}
	mean, variance := stat.PopMeanVariance(imputed, nil)
	nc.Mean = mean
	nc.Std = nonZero(math.Sqrt(variance))
	return nc, nil
}

func fitCategorical(name string, values []string) CategoricalColumn {
	counts := make(map[string]int)
	for _, v := range values {
		if !isMissing(v) {
			counts[v]++
		}
	}
	cc := CategoricalColumn{Name: name, Mode: mode(counts)}

	if _, ok := counts[cc.Mode]; !ok {
		counts[cc.Mode] = 0
	}
	for _, v := range values {
		if isMissing(v) {
			counts[cc.Mode]++
		}
	}
	for c := range counts {
		cc.Categories = append(cc.Categories, c)
	}
	sort.Strings(cc.Categories)

	n := float64(len(values))
	cc.Scales = make([]float64, len(cc.Categories))
	for i, c := range cc.Categories {
		// Population std of a 0/1 indicator with frequency p.
		p := float64(counts[c]) / n
		cc.Scales[i] = nonZero(math.Sqrt(p * (1 - p)))
	}
	return cc
}

// Features reports the number of feature columns Transform produces.
func (p *Preprocessor) Features() int {
	n := len(p.Numeric)
	for _, c := range p.Categorical {
		n += len(c.Categories)
	}
	return n
}

// Transform encodes df as a matrix of Features()+1 columns, target last.
// Categories unseen during Fit encode as all zeros.
func (p *Preprocessor) Transform(df dataset.Table) (*mat.Dense, error) {
	rows, width := df.Nrow(), p.Features()+1
	if rows == 0 {
		return nil, fmt.Errorf("no rows to transform")
	}
	out := mat.NewDense(rows, width, nil)

	offset := 0
	for _, nc := range p.Numeric {
		values, err := column(df, nc.Name)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			f := nc.Median
			if !isMissing(v) {
				if f, err = strconv.ParseFloat(v, 64); err != nil {
					return nil, fmt.Errorf("column %q row %d: %w", nc.Name, i, err)
				}
			}
			out.Set(i, offset, (f-nc.Mean)/nc.Std)
		}
		offset++
	}

	for _, cc := range p.Categorical {
		values, err := column(df, cc.Name)
		if err != nil {
			return nil, err
		}
		index := make(map[string]int, len(cc.Categories))
		for j, c := range cc.Categories {
			index[c] = j
		}
		for i, v := range values {
			if isMissing(v) {
				v = cc.Mode
			}
			if j, ok := index[v]; ok {
				out.Set(i, offset+j, 1/cc.Scales[j])
			}
		}
		offset += len(cc.Categories)
	}

	targets, err := column(df, p.Target)
	if err != nil {
		return nil, err
	}
	for i, v := range targets {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			return nil, fmt.Errorf("target %q row %d: value %q is not numeric", p.Target, i, v)
		}
		out.Set(i, offset, f)
	}
	return out, nil
}

// Save writes the preprocessor as JSON, creating parent directories.
func (p *Preprocessor) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadPreprocessor reads a preprocessor written by Save.
func LoadPreprocessor(path string) (*Preprocessor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Preprocessor
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return &p, nil
}

func column(df dataset.Table, name string) ([]string, error) {
	if !contains(df.Names(), name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return df.Col(name).Records(), nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// median averages the two middle values for even lengths; gonum's empirical
// quantile would pick the lower one.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// mode returns the most frequent value, the smallest one on ties.
func mode(counts map[string]int) string {
	best, bestCount := "", -1
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}

func nonZero(std float64) float64 {
	if std == 0 || math.IsNaN(std) {
		return 1
	}
	return std
}
