package internal_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungY620/ingest/internal"
)

func TestNewHistoryLogger(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), "artifacts", ".history")

	logger, err := internal.NewHistoryLogger(historyPath, "run")
	if err != nil {
		t.Fatalf("Failed to create history logger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(historyPath); os.IsNotExist(err) {
		t.Error("History file was not created")
	}
}

func TestHistoryLogger_Log(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), ".history")
	logger, err := internal.NewHistoryLogger(historyPath, "run")
	require.NoError(t, err)

	logger.Log(internal.HistoryEntry{Type: "start", RunID: "r1"})
	logger.LogStage("r1", "ingestion", 1500*time.Millisecond, map[string]int{"train": 8})
	logger.LogInfo("watching %s", "data")
	logger.LogError("r1", "trainer", nil)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(historyPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)

	var entry internal.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, int64(2), entry.Seq)
	assert.Equal(t, "run", entry.Source)
	assert.Equal(t, "stage", entry.Type)
	assert.Equal(t, "ingestion", entry.Stage)
	assert.Equal(t, "1.5s", entry.Duration)
	assert.NotEmpty(t, entry.Timestamp)
}

func TestHistoryLogger_Appends(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), ".history")

	for i := 0; i < 2; i++ {
		logger, err := internal.NewHistoryLogger(historyPath, "run")
		require.NoError(t, err)
		logger.LogInfo("pass %d", i)
		require.NoError(t, logger.Close())
	}

	entries, err := internal.ReadHistory(historyPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "pass 0", entries[0].Message)
	assert.Equal(t, "pass 1", entries[1].Message)
}

func TestHistoryLogger_NilSafe(t *testing.T) {
	var logger *internal.HistoryLogger

	assert.NotPanics(t, func() {
		logger.Log(internal.HistoryEntry{Type: "info"})
		logger.LogInfo("test")
		logger.LogStage("r", "s", time.Second, nil)
		logger.LogError("r", "s", nil)
		_ = logger.Close()
	})
}

func TestHistoryLogger_ErrorWithErr(t *testing.T) {
	historyPath := filepath.Join(t.TempDir(), ".history")
	logger, err := internal.NewHistoryLogger(historyPath, "run")
	require.NoError(t, err)

	logger.LogError("r2", "ingestion", os.ErrNotExist)
	require.NoError(t, logger.Close())

	entries, err := internal.ReadHistory(historyPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file does not exist", entries[0].Error)
	assert.Equal(t, "r2", entries[0].RunID)
}

func TestReadHistoryMissing(t *testing.T) {
	_, err := internal.ReadHistory(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
