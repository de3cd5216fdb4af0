package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungY620/ingest/pipeline"
)

func TestSetStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "status.json")

	require.NoError(t, pipeline.SetStatus(path, pipeline.Status{Status: pipeline.StateRunning, RunID: "r1"}))
	s := pipeline.GetStatus(path)
	assert.Equal(t, pipeline.StateRunning, s.Status)
	assert.Equal(t, "r1", s.RunID)
	assert.NotNil(t, s.Since)

	require.NoError(t, pipeline.SetStatus(path, pipeline.Status{Status: pipeline.StateIdle, RunID: "r1", LastError: "boom"}))
	s = pipeline.GetStatus(path)
	assert.Equal(t, pipeline.StateIdle, s.Status)
	assert.Nil(t, s.Since)
	assert.Equal(t, "boom", s.LastError)
}

func TestGetStatusFallsBackToIdle(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, pipeline.StateIdle, pipeline.GetStatus(filepath.Join(dir, "none.json")).Status)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	assert.Equal(t, pipeline.StateIdle, pipeline.GetStatus(bad).Status)
}
