// Package metrics records pipeline measurements in a Prometheus registry and
// exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ingest"

// Recorder owns a private registry so several pipelines (and tests) never
// collide on the default one.
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	stageDuration *prometheus.GaugeVec
	rows          *prometheus.GaugeVec
	score         prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of the last execution of each stage.",
		}, []string{"stage"}),
		rows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows",
			Help:      "Rows written to each split by the last ingestion.",
		}, []string{"split"}),
		score: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_r2_score",
			Help:      "Test R² of the last selected model.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (r *Recorder) ObserveStage(stage string, took time.Duration) {
	r.stageDuration.WithLabelValues(stage).Set(took.Seconds())
}

func (r *Recorder) SetRows(train, test int) {
	r.rows.WithLabelValues("train").Set(float64(train))
	r.rows.WithLabelValues("test").Set(float64(test))
}

func (r *Recorder) RunSucceeded(score float64, at time.Time) {
	r.runs.WithLabelValues("success").Inc()
	r.score.Set(score)
	r.lastSuccess.Set(float64(at.Unix()))
}

func (r *Recorder) RunFailed() {
	r.runs.WithLabelValues("failure").Inc()
}

// WriteTextfile atomically writes the current values to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: create directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %q: %w", path, err)
	}
	return nil
}
