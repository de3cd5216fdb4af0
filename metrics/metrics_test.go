package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderValues(t *testing.T) {
	r := New()
	r.SetRows(8, 2)
	r.ObserveStage("ingestion", 250*time.Millisecond)
	r.RunSucceeded(0.87, time.Unix(1700000000, 0))
	r.RunFailed()
	r.RunFailed()

	assert.Equal(t, 8.0, testutil.ToFloat64(r.rows.WithLabelValues("train")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rows.WithLabelValues("test")))
	assert.Equal(t, 0.25, testutil.ToFloat64(r.stageDuration.WithLabelValues("ingestion")))
	assert.Equal(t, 0.87, testutil.ToFloat64(r.score))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("failure")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastSuccess))
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RunFailed()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.runs.WithLabelValues("failure")))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.SetRows(4, 1)
	path := filepath.Join(t.TempDir(), "out", "metrics.prom")

	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ingest_rows{split="train"} 4`)
	assert.Contains(t, string(data), "# TYPE ingest_rows gauge")
}
